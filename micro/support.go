package micro

import (
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/enums/ability"
	"github.com/aiseeq/s2l/protocol/enums/buff"

	"github.com/AoHRuthless/AIur/bot"
)

// StimThreshold is the enemy hit points in range that make bio use stim.
const StimThreshold = 200

// Stim is run every step. Bio in a fight stims once the research is done.
func Stim() {
	if !B.Upgrades[ability.Research_Stimpack] {
		return
	}
	enemies := B.Enemies.Visible.Filter(scl.DpsGt5)
	if enemies.Empty() {
		return
	}
	for _, u := range B.Groups.Get(bot.Marines).Units {
		if u.HasAbility(ability.Effect_Stim_Marine) && !u.HasBuff(buff.Stimpack) &&
			u.Hits > u.HitsMax/2 && enemies.CanAttack(u, 2).Sum(scl.CmpHits) >= StimThreshold {
			u.Command(ability.Effect_Stim_Marine)
		}
	}
	for _, u := range B.Groups.Get(bot.Marauders).Units {
		if u.HasAbility(ability.Effect_Stim_Marauder) && !u.HasBuff(buff.StimpackMarauder) &&
			u.Hits > u.HitsMax/2 && enemies.CanAttack(u, 2).Sum(scl.CmpHits) >= StimThreshold {
			u.Command(ability.Effect_Stim_Marauder)
		}
	}
}

// Escort keeps medivacs of a wave with its bio: heal the closest injured unit,
// otherwise follow the unit nearest to the enemy.
func Escort() {
	bio := append(scl.Units{}, B.Groups.Get(bot.Marines).Units...)
	bio = append(bio, B.Groups.Get(bot.Marauders).Units...)
	if bio.Empty() {
		return
	}
	injured := bio.Filter(func(unit *scl.Unit) bool { return unit.Hits < unit.HitsMax })
	front := bio.ClosestTo(B.Locs.EnemyStart)

	for _, u := range B.Groups.Get(bot.Medivacs).Units {
		if !InWave(Waves, u.Tag) {
			continue
		}
		patient := injured.CloserThan(float64(u.Radius)+4, u).Min(scl.CmpHits)
		if patient != nil && u.Energy >= 5 && u.HasAbility(ability.Effect_Heal) {
			u.CommandTag(ability.Effect_Heal, patient.Tag)
			continue
		}
		if front.IsFurtherThan(4, u) {
			u.CommandTag(ability.Move, front.Tag)
		}
	}
}
