package macro

import (
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/enums/ability"
	"github.com/aiseeq/s2l/protocol/enums/terran"

	"github.com/AoHRuthless/AIur/bot"
)

// Mules is run every step: orbitals drop MULEs on the richest mineral field
// of the closest base.
func Mules() {
	for _, cc := range B.Units.My[terran.OrbitalCommand].Filter(scl.Ready) {
		if cc.Energy < 50 {
			continue
		}
		ccs := bot.Townhalls().Filter(scl.Ready)
		ccs.OrderByDistanceTo(cc, false)
		for _, target := range ccs {
			homeMineral := B.Units.Minerals.All().CloserThan(scl.ResourceSpreadDistance, target).
				Filter(func(unit *scl.Unit) bool { return unit.MineralContents > 400 }).
				Max(func(unit *scl.Unit) float64 { return float64(unit.MineralContents) })
			if homeMineral != nil {
				cc.CommandTag(ability.Effect_CalldownMULE, homeMineral.Tag)
				break
			}
		}
	}
}
