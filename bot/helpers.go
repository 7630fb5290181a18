package bot

import (
	"github.com/aiseeq/s2l/lib/point"
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/enums/terran"

	"github.com/AoHRuthless/AIur/minimap"
)

// Pass assignGroup = 0 to skip group assignement
func GetSCV(ptr point.Pointer, assignGroup scl.GroupID, minHits float64) *scl.Unit {
	miners := B.Groups.Get(Miners).Units
	scv := miners.Filter(func(unit *scl.Unit) bool {
		// Not carrying anything and not assigned to mine gas
		return unit.Hits >= minHits && len(unit.BuffIds) == 0 && B.Miners.GasForMiner[unit.Tag] == 0
	}).ClosestTo(ptr)
	if scv == nil {
		scv = miners.Filter(func(unit *scl.Unit) bool {
			// If only gas miners left, then ok
			return unit.Hits >= minHits && len(unit.BuffIds) == 0
		}).ClosestTo(ptr)
	}

	if scv != nil && assignGroup != 0 {
		B.Groups.Add(assignGroup, scv)
	}
	return scv
}

func Townhalls() scl.Units {
	return B.Units.My.OfType(terran.CommandCenter, terran.OrbitalCommand, terran.PlanetaryFortress)
}

func Depots() scl.Units {
	return B.Units.My.OfType(terran.SupplyDepot, terran.SupplyDepotLowered)
}

// Snapshot collects what the mini-map shows: own ready units, every known enemy
// and the resource bars.
func Snapshot() *minimap.Snapshot {
	s := &minimap.Snapshot{
		Width:      B.MapWidth,
		Height:     B.MapHeight,
		Minerals:   B.Minerals,
		Vespene:    B.Vespene,
		SupplyLeft: B.FoodLeft,
		SupplyCap:  B.FoodCap,
		Workers:    B.Units.My[terran.SCV].Len(),
	}
	if s.Width == 0 || s.Height == 0 {
		s.Width, s.Height = minimap.InputWidth, minimap.InputHeight
	}
	for _, u := range B.Units.MyAll.Filter(scl.Ready) {
		s.Own = append(s.Own, blip(u))
	}
	for _, u := range B.Enemies.All {
		s.Enemy = append(s.Enemy, blip(u))
	}
	return s
}

func blip(u *scl.Unit) minimap.Blip {
	return minimap.Blip{X: float64(u.Pos.X), Y: float64(u.Pos.Y), Radius: float64(u.Radius)}
}
