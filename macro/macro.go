package macro

import (
	"errors"

	"github.com/aiseeq/s2l/lib/point"
	"github.com/aiseeq/s2l/lib/scl"
	"github.com/aiseeq/s2l/protocol/api"
	"github.com/aiseeq/s2l/protocol/enums/ability"
	"github.com/aiseeq/s2l/protocol/enums/terran"

	"github.com/AoHRuthless/AIur/bot"
)

var (
	ErrCannotAfford = errors.New("can't afford")
	ErrNoBuilder    = errors.New("no builder")
	ErrNoPosition   = errors.New("no position")
	ErrNotReady     = errors.New("prerequisites are not ready")
	ErrLimit        = errors.New("limit reached")
)

// Tuning
const (
	SupplyReserve    = 10 // build depots when free supply drops below
	MaxPendingDepots = 2
	MaxSupply        = 200
	MaxBarracks      = 5
	MaxFactories     = 2
	MaxStarports     = 2
	MaxWorkers       = 70
	GeyserRange      = 20.0
	ExpandRange      = 100.0
	BuilderMinHits   = 45
)

var B *bot.Bot

func Init(b *bot.Bot) {
	B = b
}

var BuildingsSizes = map[api.AbilityID]scl.BuildingSize{
	ability.Build_CommandCenter: scl.S5x5,
	ability.Build_SupplyDepot:   scl.S2x2,
	ability.Build_Barracks:      scl.S5x3,
	ability.Build_Refinery:      scl.S3x3,
	ability.Build_Factory:       scl.S5x3,
	ability.Build_Starport:      scl.S5x3,
}

// repeat calls step until it fails. It returns how many calls went through and
// the error that stopped it.
func repeat(step func() error) (int, error) {
	for n := 0; ; n++ {
		if err := step(); err != nil {
			return n, err
		}
	}
}

// settle hides the stopping error once at least one order was issued.
func settle(n int, err error) error {
	if n > 0 {
		return nil
	}
	return err
}

// NeedSupply tells if another depot should be started.
func NeedSupply(foodLeft, foodCap, pending int) bool {
	return foodLeft < SupplyReserve && pending < MaxPendingDepots && foodCap < MaxSupply
}

// ClosestExpansion returns the expansion closest to start that is not taken and
// lies within maxDist of it.
func ClosestExpansion(start point.Point, exps point.Points, taken func(point.Point) bool,
	maxDist float64) (point.Point, bool) {
	var best point.Point
	bestDist := maxDist
	found := false
	for _, pos := range exps {
		dist := (pos - start).Len()
		if dist > bestDist || (taken != nil && taken(pos)) {
			continue
		}
		best, bestDist, found = pos, dist, true
	}
	return best, found
}

// LowerDepots is run every step, not as a chosen action.
func LowerDepots() {
	for _, depot := range B.Units.My[terran.SupplyDepot].Filter(scl.Ready) {
		depot.Command(ability.Morph_SupplyDepot_Lower)
	}
}
