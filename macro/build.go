package macro

import (
	"errors"
	"fmt"
	"math/rand"

	log "bitbucket.org/aisee/minilog"
	"github.com/aiseeq/s2l/lib/point"
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/api"
	"github.com/aiseeq/s2l/protocol/enums/ability"
	"github.com/aiseeq/s2l/protocol/enums/terran"

	"github.com/AoHRuthless/AIur/bot"
)

func OrderBuild(scv *scl.Unit, pos point.Point, aid api.AbilityID) {
	scv.CommandPos(aid, pos)
	B.DeductResources(aid)
	log.Debugf("%d: Building %v @ %v", B.Loop, B.U.Types[B.U.AbilityUnit[aid]].Name, pos)
}

// BuildNear places a building on the closest free spot around near.
func BuildNear(aid api.AbilityID, near point.Point) (point.Point, error) {
	size, ok := BuildingsSizes[aid]
	if !ok {
		log.Alertf("Can't find size for %v", B.U.Types[B.U.AbilityUnit[aid]].Name)
		return 0, ErrNoPosition
	}
	if !B.CanBuy(aid) {
		return 0, ErrCannotAfford
	}

	pos := B.FindClosestPos(near, size, 0, 2, 2, scl.IsBuildable, scl.IsPathable)
	if pos == 0 {
		return 0, fmt.Errorf("%w for %v near %v", ErrNoPosition, B.U.Types[B.U.AbilityUnit[aid]].Name, near)
	}
	if B.RequestPathing(B.Locs.MyStart, pos) == 0 {
		return 0, fmt.Errorf("%w: no path to %v", ErrNoPosition, pos)
	}

	scv := bot.GetSCV(pos, bot.Builders, BuilderMinHits)
	if scv == nil {
		return 0, ErrNoBuilder
	}
	OrderBuild(scv, pos, aid)
	return pos, nil
}

func randomUnit(us scl.Units) *scl.Unit {
	if us.Empty() {
		return nil
	}
	return us[rand.Intn(us.Len())]
}

// ManageSupply builds a depot next to a random townhall, toward the map center.
func ManageSupply() error {
	if !NeedSupply(B.FoodLeft, B.FoodCap, B.Pending(ability.Build_SupplyDepot)) {
		return ErrLimit
	}
	cc := randomUnit(bot.Townhalls().Filter(scl.Ready))
	if cc == nil {
		return ErrNotReady
	}
	_, err := BuildNear(ability.Build_SupplyDepot, cc.Towards(B.Locs.MapCenter, 5))
	return err
}

// buildNearDepot builds aid next to a random ready depot.
func buildNearDepot(aid api.AbilityID) error {
	depot := randomUnit(bot.Depots().Filter(scl.Ready))
	if depot == nil {
		return ErrNotReady
	}
	_, err := BuildNear(aid, depot.Point())
	return err
}

func ManageBarracks() error {
	if B.Units.My.OfType(B.U.UnitAliases.For(terran.Barracks)...).Len() >= MaxBarracks {
		return ErrLimit
	}
	return buildNearDepot(ability.Build_Barracks)
}

func ManageFactories() error {
	if B.Units.My[terran.Barracks].First(scl.Ready) == nil {
		return ErrNotReady
	}
	if B.Units.My.OfType(B.U.UnitAliases.For(terran.Factory)...).Len() >= MaxFactories {
		return ErrLimit
	}
	return buildNearDepot(ability.Build_Factory)
}

func ManageStarports() error {
	if B.Units.My[terran.Barracks].First(scl.Ready) == nil ||
		B.Units.My[terran.Factory].First(scl.Ready) == nil {
		return ErrNotReady
	}
	if B.Units.My.OfType(B.U.UnitAliases.For(terran.Starport)...).Len() >= MaxStarports {
		return ErrLimit
	}
	return buildNearDepot(ability.Build_Starport)
}

// BuildRefinery starts a refinery on the first free geyser close to cc. Geysers
// in taken are skipped and the chosen one is added to it.
func BuildRefinery(cc *scl.Unit, taken scl.TagsMap) error {
	if !B.CanBuy(ability.Build_Refinery) {
		return ErrCannotAfford
	}
	builders := B.Groups.Get(bot.Builders).Units
	geyser := B.Units.Geysers.All().CloserThan(GeyserRange, cc).First(func(unit *scl.Unit) bool {
		return !taken[unit.Tag] &&
			B.Units.My.OfType(B.U.UnitAliases.For(terran.Refinery)...).CloserThan(2, unit).Empty() &&
			unit.FindAssignedBuilder(builders) == nil
	})
	if geyser == nil {
		return ErrNoPosition
	}
	scv := bot.GetSCV(geyser, bot.Builders, BuilderMinHits)
	if scv == nil {
		return ErrNoBuilder
	}
	scv.CommandTag(ability.Build_Refinery, geyser.Tag)
	B.DeductResources(ability.Build_Refinery)
	taken[geyser.Tag] = true
	log.Debugf("%d: Building Refinery", B.Loop)
	return nil
}

// ManageRefineries starts refineries on every free geyser near each ready
// townhall while money and builders last.
func ManageRefineries() error {
	taken := scl.TagsMap{}
	built := 0
	var err error
	for _, cc := range bot.Townhalls().Filter(scl.Ready) {
		var n int
		n, err = repeat(func() error { return BuildRefinery(cc, taken) })
		built += n
		if errors.Is(err, ErrCannotAfford) || errors.Is(err, ErrNoBuilder) {
			break
		}
	}
	return settle(built, err)
}

// AdjustRefineryAssignment tops up the miners of a random refinery.
func AdjustRefineryAssignment() error {
	ref := randomUnit(B.Units.My.OfType(B.U.UnitAliases.For(terran.Refinery)...).Filter(scl.Ready))
	if ref == nil {
		return ErrNotReady
	}
	B.RedistributeWorkersToRefineryIfNeeded(ref, B.Groups.Get(bot.Miners).Units, 3)
	return nil
}

func barracksAddon(aid api.AbilityID) error {
	rax := randomUnit(B.Units.My[terran.Barracks].Filter(scl.Ready, scl.NoAddon, scl.Idle))
	if rax == nil {
		return ErrNotReady
	}
	if !B.CanBuy(aid) {
		return ErrCannotAfford
	}
	rax.Command(aid)
	B.DeductResources(aid)
	return nil
}

func BarracksTechLab() error {
	return barracksAddon(ability.Build_TechLab_Barracks)
}

func BarracksReactor() error {
	return barracksAddon(ability.Build_Reactor_Barracks)
}

// UpgradeCC morphs every idle command center into an orbital while affordable.
func UpgradeCC() error {
	if B.Units.My[terran.Barracks].First(scl.Ready) == nil {
		return ErrNotReady
	}
	ccs := B.Units.My[terran.CommandCenter].Filter(scl.Ready, scl.Idle)
	if ccs.Empty() {
		return ErrNotReady
	}
	for _, cc := range ccs {
		if !B.CanBuy(ability.Morph_OrbitalCommand) {
			return ErrCannotAfford
		}
		cc.Command(ability.Morph_OrbitalCommand)
		B.DeductResources(ability.Morph_OrbitalCommand)
	}
	return nil
}

// Expand builds a command center on the closest free expansion.
func Expand() error {
	if !B.CanBuy(ability.Build_CommandCenter) {
		return ErrCannotAfford
	}
	if B.Pending(ability.Build_CommandCenter) > 0 {
		return ErrLimit
	}
	taken := func(pos point.Point) bool {
		return bot.Townhalls().CloserThan(4, pos).Exists() ||
			B.Enemies.All.Filter(scl.Structure).CloserThan(8, pos).Exists()
	}
	pos, ok := ClosestExpansion(B.Locs.MyStart, B.Locs.MyExps, taken, ExpandRange)
	if !ok {
		return ErrNoPosition
	}
	if !B.IsPosOk(pos, scl.S5x5, 0, scl.IsBuildable) {
		return fmt.Errorf("%w: expansion %v is blocked", ErrNoPosition, pos)
	}
	scv := bot.GetSCV(pos, bot.Builders, BuilderMinHits)
	if scv == nil {
		return ErrNoBuilder
	}
	OrderBuild(scv, pos, ability.Build_CommandCenter)
	return nil
}
