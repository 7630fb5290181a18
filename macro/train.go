package macro

import (
	log "bitbucket.org/aisee/minilog"
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/api"
	"github.com/aiseeq/s2l/protocol/enums/ability"
	"github.com/aiseeq/s2l/protocol/enums/terran"

	"github.com/AoHRuthless/AIur/bot"
)

func OrderTrain(factory *scl.Unit, aid api.AbilityID, usedFactories scl.TagsMap) {
	factory.Command(aid)
	B.DeductResources(aid)
	if usedFactories != nil {
		usedFactories[factory.Tag] = true
	}
	log.Debugf("%d: Training %v", B.Loop, B.U.Types[B.U.AbilityUnit[aid]].Name)
}

func GetFactory(id api.UnitTypeID, needTechlab bool, usedFactories scl.TagsMap) *scl.Unit {
	factory := B.Units.My[id].First(func(unit *scl.Unit) bool {
		return unit.IsReady() && unit.IsUnused() && (!needTechlab || unit.HasTechlab()) && !usedFactories[unit.Tag]
	})
	if factory == nil {
		return nil
	}
	if factory.HasReactor() && B.U.UnitsOrders[factory.Tag].Loop+B.FramesPerOrder <= B.Loop {
		// Second order for the reactor slot is ignored unless it is spammed
		factory.SpamCmds = true
	}
	return factory
}

// WorkerLimit is the worker count a base layout can use, capped at MaxWorkers.
func WorkerLimit(townhalls, refineries int) int {
	return scl.MinInt(22*townhalls+3*refineries, MaxWorkers)
}

// train queues aid on every free production building of type id while money lasts.
func train(id api.UnitTypeID, needTechlab bool, aid api.AbilityID) error {
	used := scl.TagsMap{}
	return settle(repeat(func() error {
		if !B.CanBuy(aid) {
			return ErrCannotAfford
		}
		factory := GetFactory(id, needTechlab, used)
		if factory == nil {
			return ErrNotReady
		}
		OrderTrain(factory, aid, used)
		return nil
	}))
}

// TrainWorkers queues an SCV in every idle townhall.
func TrainWorkers() error {
	ccs := bot.Townhalls().Filter(scl.Ready, scl.Idle)
	if ccs.Empty() {
		return ErrNotReady
	}
	refs := B.Units.My.OfType(B.U.UnitAliases.For(terran.Refinery)...).Filter(scl.Ready)
	workers := B.Units.My[terran.SCV].Len() + B.Pending(ability.Train_SCV)
	limit := WorkerLimit(bot.Townhalls().Len(), refs.Len())
	for _, cc := range ccs {
		if workers >= limit {
			return ErrLimit
		}
		if !B.CanBuy(ability.Train_SCV) {
			return ErrCannotAfford
		}
		OrderTrain(cc, ability.Train_SCV, nil)
		workers++
	}
	return nil
}

func TrainMarines() error {
	return train(terran.Barracks, false, ability.Train_Marine)
}

func TrainMarauders() error {
	return train(terran.Barracks, true, ability.Train_Marauder)
}

func TrainHellions() error {
	return train(terran.Factory, false, ability.Train_Hellion)
}

func TrainMedivacs() error {
	return train(terran.Starport, false, ability.Train_Medivac)
}
