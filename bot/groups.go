package bot

import (
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/enums/terran"
)

const (
	Miners scl.GroupID = iota + 1
	Builders
	Scouts
	Marines
	Marauders
	Hellions
	Medivacs
	Mules
	UnderConstruction
	Buildings
	MaxGroup
)

// Army lists the groups that form attack waves.
var Army = []scl.GroupID{Marines, Marauders, Medivacs, Hellions}

func OnUnitCreated(unit *scl.Unit) {
	if unit.UnitType == terran.SCV {
		B.Groups.Add(Miners, unit)
		return
	}
	if unit.UnitType == terran.Marine {
		B.Groups.Add(Marines, unit)
		return
	}
	if unit.UnitType == terran.Marauder {
		B.Groups.Add(Marauders, unit)
		return
	}
	if unit.UnitType == terran.Hellion || unit.UnitType == terran.HellionTank {
		B.Groups.Add(Hellions, unit)
		return
	}
	if unit.UnitType == terran.Medivac {
		B.Groups.Add(Medivacs, unit)
		return
	}
	if unit.UnitType == terran.MULE {
		B.Groups.Add(Mules, unit)
		return
	}
	if unit.IsStructure() && unit.BuildProgress < 1 {
		B.Groups.Add(UnderConstruction, unit)
		return
	}
	if unit.IsStructure() {
		B.Groups.Add(Buildings, unit)
	}
}
