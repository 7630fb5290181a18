package macro

import (
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/api"
	"github.com/aiseeq/s2l/protocol/enums/ability"
	"github.com/aiseeq/s2l/protocol/enums/terran"
)

// BioResearch is the tech lab research order.
var BioResearch = []api.AbilityID{
	ability.Research_CombatShield,
	ability.Research_Stimpack,
	ability.Research_ConcussiveShells,
}

// NextResearch returns the first research of order that is neither done nor
// running and that the building offers.
func NextResearch(order []api.AbilityID, done func(api.AbilityID) bool, offered func(api.AbilityID) bool) (api.AbilityID, bool) {
	for _, a := range order {
		if done(a) || !offered(a) {
			continue
		}
		return a, true
	}
	return 0, false
}

// Research starts the next bio upgrade on an idle barracks tech lab.
func Research() error {
	lab := B.Units.My[terran.BarracksTechLab].First(scl.Ready, scl.Idle)
	if lab == nil {
		return ErrNotReady
	}
	done := func(a api.AbilityID) bool {
		return B.Upgrades[a] || B.PendingAliases(a) > 0
	}
	a, ok := NextResearch(BioResearch, done, lab.HasIrrAbility)
	if !ok {
		return ErrLimit
	}
	if !B.CanBuy(a) {
		return ErrCannotAfford
	}
	lab.Command(a)
	B.DeductResources(a)
	return nil
}
