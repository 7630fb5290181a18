package tests

import (
	"sort"

	log "bitbucket.org/aisee/minilog"
	"github.com/aiseeq/s2l/protocol/api"
	"github.com/aiseeq/s2l/protocol/enums/protoss"
	"github.com/aiseeq/s2l/protocol/enums/terran"
	"github.com/aiseeq/s2l/protocol/enums/zerg"

	"github.com/AoHRuthless/AIur/bot"
)

// Scenario spawns units through debug commands at the start of a game.
type Scenario func(myId, enemyId api.PlayerID, b *bot.Bot)

var Scenarios = map[string]Scenario{
	"marines":    MarinesVsZerglings,
	"wave":       WaveTest,
	"escort":     EscortTest,
	"production": ProductionTest,
	"laststand":  LastStandTest,
}

func MarinesVsZerglings(myId, enemyId api.PlayerID, b *bot.Bot) {
	b.DebugAddUnits(zerg.Zergling, enemyId, b.Locs.MyStart.Towards(b.Locs.MapCenter, 12), 8)
	b.DebugAddUnits(terran.Marine, myId, b.Locs.MyStart.Towards(b.Locs.MapCenter, 4), 6)
	b.DebugSend()
}

// WaveTest gives enough idle army for a wave right away.
func WaveTest(myId, enemyId api.PlayerID, b *bot.Bot) {
	b.DebugAddUnits(terran.Marine, myId, b.Locs.MyStart.Towards(b.Locs.MapCenter, 6), 10)
	b.DebugAddUnits(terran.Marauder, myId, b.Locs.MyStart.Towards(b.Locs.MapCenter, 6), 4)
	b.DebugAddUnits(protoss.Zealot, enemyId, b.Locs.EnemyStart.Towards(b.Locs.MapCenter, 6), 4)
	b.DebugSend()
}

func EscortTest(myId, enemyId api.PlayerID, b *bot.Bot) {
	b.DebugAddUnits(terran.Marine, myId, b.Locs.EnemyStart.Towards(b.Locs.MapCenter, 14), 12)
	b.DebugAddUnits(terran.Medivac, myId, b.Locs.EnemyStart.Towards(b.Locs.MapCenter, 16), 2)
	b.DebugAddUnits(protoss.Stalker, enemyId, b.Locs.EnemyStart.Towards(b.Locs.MapCenter, 6), 3)
	b.DebugSend()
	b.Actions.MoveCamera(b.Locs.EnemyStart.Towards(b.Locs.MapCenter, 10))
}

// ProductionTest unlocks the whole tech tree to exercise the extra actions.
func ProductionTest(myId, enemyId api.PlayerID, b *bot.Bot) {
	b.DebugAddUnits(terran.SupplyDepot, myId, b.Locs.MyStart.Towards(b.Locs.MapCenter, -8), 1)
	b.DebugAddUnits(terran.Barracks, myId, b.Locs.MyStart.Towards(b.Locs.MapCenter, 8), 1)
	b.DebugAddUnits(terran.Factory, myId, b.Locs.MyStart.Towards(b.Locs.MapCenter, 14), 1)
	b.DebugAddUnits(terran.Starport, myId, b.Locs.MyStart.Towards(b.Locs.MapCenter, 20), 1)
	b.DebugSend()
}

// LastStandTest razes the main base.
func LastStandTest(myId, enemyId api.PlayerID, b *bot.Bot) {
	b.DebugAddUnits(zerg.Ultralisk, enemyId, b.Locs.MyStart.Towards(b.Locs.MapCenter, 6), 4)
	b.DebugAddUnits(terran.Marine, myId, b.Locs.MyStart.Towards(b.Locs.MapCenter, -4), 4)
	b.DebugSend()
}

func Names() []string {
	names := make([]string, 0, len(Scenarios))
	for name := range Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run starts the named scenario.
func Run(name string, b *bot.Bot) bool {
	s, ok := Scenarios[name]
	if !ok {
		log.Warning("Unknown scenario ", name, ", known: ", Names())
		return false
	}
	myId := b.Obs.PlayerCommon.PlayerId
	enemyId := 3 - myId
	s(myId, enemyId, b)
	log.Info("Scenario ", name)
	return true
}
