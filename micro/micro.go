package micro

import (
	"math/rand"

	log "bitbucket.org/aisee/minilog"
	"github.com/aiseeq/s2l/lib/point"
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/api"
	"github.com/aiseeq/s2l/protocol/enums/ability"
	"github.com/aiseeq/s2l/protocol/enums/terran"

	"github.com/AoHRuthless/AIur/bot"
)

// Attack target modes, the variant of the attack action.
const (
	TargetStructure = iota
	TargetClosestUnit
	TargetEnemyStart
)

const BaseWaveSize = 14

var B *bot.Bot

// Waves are the formed attack groups, kept across steps until they are spent.
var Waves []Wave

func Init(b *bot.Bot) {
	B = b
	Waves = nil
}

// Wave is a set of unit tags sent out together.
type Wave scl.TagsMap

// WaveSize is the number of idle army units needed to form a wave.
func WaveSize(minutes float64) float64 {
	return BaseWaveSize + minutes
}

// FormWave returns a wave of the idle candidates once there are enough of
// them. Units already in a wave are not counted.
func FormWave(waves []Wave, idle []api.UnitTag, size float64) (Wave, bool) {
	free := make([]api.UnitTag, 0, len(idle))
	for _, tag := range idle {
		if !InWave(waves, tag) {
			free = append(free, tag)
		}
	}
	if len(free) == 0 || float64(len(free)) < size {
		return nil, false
	}
	w := Wave{}
	for _, tag := range free {
		w[tag] = true
	}
	return w, true
}

func InWave(waves []Wave, tag api.UnitTag) bool {
	for _, w := range waves {
		if w[tag] {
			return true
		}
	}
	return false
}

// Prune forgets dead units and drops emptied waves.
func Prune(waves []Wave, alive func(api.UnitTag) bool) []Wave {
	kept := waves[:0]
	for _, w := range waves {
		for tag := range w {
			if !alive(tag) {
				delete(w, tag)
			}
		}
		if len(w) > 0 {
			kept = append(kept, w)
		}
	}
	return kept
}

func army() scl.Units {
	var us scl.Units
	for _, g := range bot.Army {
		us = append(us, B.Groups.Get(g).Units...)
	}
	return us
}

// PrepareWaves forms a new wave from the idle army when it is big enough.
func PrepareWaves() {
	us := army()
	Waves = Prune(Waves, func(tag api.UnitTag) bool { return us.ByTag(tag) != nil })

	var idle []api.UnitTag
	for _, u := range us.Filter(scl.Idle) {
		idle = append(idle, u.Tag)
	}
	if w, ok := FormWave(Waves, idle, WaveSize(B.Minutes())); ok {
		Waves = append(Waves, w)
		log.Debugf("%d: Wave of %d units formed", B.Loop, len(w))
	}
}

func randomTownhall() *scl.Unit {
	ccs := bot.Townhalls()
	if ccs.Empty() {
		return nil
	}
	return ccs[rand.Intn(ccs.Len())]
}

// Target picks the attack position for a variant. ok is false when the
// variant has nothing to aim at.
func Target(variant int) (point.Point, bool) {
	switch variant {
	case TargetStructure:
		structures := B.Enemies.All.Filter(scl.Structure)
		if structures.Empty() {
			return 0, false
		}
		return structures[rand.Intn(structures.Len())].Point(), true
	case TargetClosestUnit:
		cc := randomTownhall()
		if cc == nil || B.Enemies.All.Empty() {
			return 0, false
		}
		return B.Enemies.All.ClosestTo(cc).Point(), true
	case TargetEnemyStart:
		return B.Locs.EnemyStart, true
	}
	return 0, false
}

// Attack sends every wave with idle units to the target of variant. Waves
// that have no idle units left are released.
func Attack(variant int) error {
	target, ok := Target(variant)
	if !ok {
		return nil
	}
	us := army()
	kept := Waves[:0]
	for _, w := range Waves {
		var alive scl.Units
		for tag := range w {
			if u := us.ByTag(tag); u != nil {
				alive.Add(u)
			}
		}
		if alive.Empty() || alive.Filter(scl.Idle).Empty() {
			continue
		}
		for _, u := range alive {
			u.CommandPos(ability.Attack, target)
		}
		kept = append(kept, w)
	}
	Waves = kept
	return nil
}

// LastStand throws workers and bio at the enemy once no townhall is left.
func LastStand() bool {
	if bot.Townhalls().Exists() {
		return false
	}
	target := B.Locs.EnemyStart
	if structures := B.Enemies.All.Filter(scl.Structure); structures.Exists() {
		target = structures[rand.Intn(structures.Len())].Point()
	}
	for _, u := range B.Units.My.OfType(terran.SCV, terran.Marine, terran.Marauder) {
		u.CommandPos(ability.Attack, target)
	}
	return true
}
