package roles

import (
	"math/rand"
	"sort"

	log "bitbucket.org/aisee/minilog"
	"github.com/aiseeq/s2l/lib/point"
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/api"
	"github.com/aiseeq/s2l/protocol/enums/ability"
	"github.com/aiseeq/s2l/protocol/enums/terran"

	"github.com/AoHRuthless/AIur/bot"
)

// ScoutSpread is how far around its target a scout wanders.
const ScoutSpread = 10

var B *bot.Bot

// scouts maps a scouting worker to its location
var scouts map[api.UnitTag]point.Point

func Init(b *bot.Bot) {
	B = b
	scouts = map[api.UnitTag]point.Point{}
}

func BuildingsCheck() {
	builders := B.Groups.Get(bot.Builders).Units
	buildings := B.Groups.Get(bot.UnderConstruction).Units
	enemies := B.Enemies.Visible.Filter(scl.DpsGt5)
	addonsTypes := append(B.U.UnitAliases.For(terran.Reactor), B.U.UnitAliases.For(terran.TechLab)...)
	for _, building := range buildings {
		if building.BuildProgress == 1 {
			B.Groups.Add(bot.Buildings, building) // And remove from current group
			continue
		}

		// Cancel building if it will be destroyed soon
		if building.HPS*2.5 > building.Hits {
			building.Command(ability.Cancel_BuildInProgress)
			continue
		}

		// Find SCV to continue work if disrupted
		if building.FindAssignedBuilder(builders) == nil &&
			enemies.CanAttack(building, 0).Empty() &&
			!addonsTypes.Contain(building.UnitType) {
			scv := bot.GetSCV(building, bot.Builders, 45)
			if scv != nil && B.Enemies.Visible.CanAttack(scv, 0.5).Empty() {
				scv.CommandTag(ability.Smart, building.Tag)
			}
		}
	}
}

func Build() {
	enemies := B.Enemies.Visible.Filter(scl.DpsGt5)
	for _, u := range B.Groups.Get(bot.Builders).Units {
		if enemies.CanAttack(u, 2).Exists() || u.Hits < 21 {
			u.Command(ability.Halt_TerranBuild)
			u.CommandQueue(ability.Stop_Stop)
		}
	}

	// Move idle or misused builders into miners
	idleBuilder := B.Groups.Get(bot.Builders).Units.First(func(unit *scl.Unit) bool {
		return unit.IsIdle() || unit.IsGathering() || unit.IsReturning() || (unit.IsMoving() && unit.TargetTag() != 0)
	})
	if idleBuilder != nil {
		B.Groups.Add(bot.Miners, idleBuilder)
	}
}

func Mine() {
	enemies := B.Enemies.Visible.Filter(scl.DpsGt5)
	miners := B.Groups.Get(bot.Miners).Units
	ccs := bot.Townhalls().Filter(func(unit *scl.Unit) bool {
		return unit.IsReady() && enemies.CanAttack(unit, 0).Sum(scl.CmpGroundDPS) < 30
	})
	B.HandleMiners(miners, ccs, enemies, 0.5, B.Locs.MyStart-B.Locs.MyStartMinVec*3, nil)

	for _, mule := range B.Groups.Get(bot.Mules).Units.Filter(scl.Idle) {
		if mf := B.Units.Minerals.All().ClosestTo(mule); mf != nil {
			mule.CommandTag(ability.Smart, mf.Tag)
		}
	}
}

// ScoutTargets orders locations by distance to the enemy start, closest first.
func ScoutTargets(locs point.Points, enemyStart point.Point) point.Points {
	ps := append(point.Points{}, locs...)
	sort.SliceStable(ps, func(i, j int) bool {
		return (ps[i] - enemyStart).Len() < (ps[j] - enemyStart).Len()
	})
	return ps
}

// Jitter moves p by up to spread in both axes and keeps it on a w x h map.
func Jitter(p point.Point, spread int, w, h int, rng *rand.Rand) point.Point {
	x := real(p) + float64(rng.Intn(2*spread)-spread)
	y := imag(p) + float64(rng.Intn(2*spread)-spread)
	x = clamp(x, 0, float64(w))
	y = clamp(y, 0, float64(h))
	return point.Point(complex(x, y))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NextScoutTarget returns the first target nobody is scouting.
func NextScoutTarget(targets point.Points, active map[api.UnitTag]point.Point) (point.Point, bool) {
	for _, t := range targets {
		taken := false
		for _, p := range active {
			if p == t {
				taken = true
				break
			}
		}
		if !taken {
			return t, true
		}
	}
	return 0, false
}

// Scout keeps one worker scouting expansions, nearest to the enemy first.
func Scout() error {
	alive := B.Groups.Get(bot.Scouts).Units
	for tag := range scouts {
		if alive.ByTag(tag) == nil {
			delete(scouts, tag)
		}
	}

	if len(scouts) == 0 {
		targets := ScoutTargets(B.Locs.MyExps, B.Locs.EnemyStart)
		if target, ok := NextScoutTarget(targets, scouts); ok {
			if scv := bot.GetSCV(target, bot.Scouts, 45); scv != nil {
				scouts[scv.Tag] = target
				log.Debugf("%d: Scouting %v", B.Loop, target)
			}
		}
	}

	rng := rand.New(rand.NewSource(int64(B.Loop)))
	for tag, target := range scouts {
		if scv := B.Groups.Get(bot.Scouts).Units.ByTag(tag); scv != nil {
			scv.CommandPos(ability.Move, Jitter(target, ScoutSpread, B.MapWidth, B.MapHeight, rng))
		}
	}
	return nil
}
