package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	log "bitbucket.org/aisee/minilog"
	"github.com/aiseeq/s2l/protocol/api"
	"github.com/aiseeq/s2l/protocol/client"

	"github.com/AoHRuthless/AIur/agent"
	"github.com/AoHRuthless/AIur/bot"
	"github.com/AoHRuthless/AIur/config"
	"github.com/AoHRuthless/AIur/dqn"
	"github.com/AoHRuthless/AIur/minimap"
	"github.com/AoHRuthless/AIur/policy"
)

var races = []api.Race{api.Race_Terran, api.Race_Zerg, api.Race_Protoss}

// Stats counts games and wins per map and race.
type Stats map[string]map[api.Race][2]int

func (s Stats) Add(mapName string, race api.Race, won bool) {
	if s[mapName] == nil {
		s[mapName] = map[api.Race][2]int{}
	}
	c := s[mapName][race]
	c[0]++
	if won {
		c[1]++
	}
	s[mapName][race] = c
}

// WinRate is the share of won games in percents, -1 when nothing was played.
func (s Stats) WinRate(mapName string, race api.Race) int {
	c := s[mapName][race]
	if c[0] == 0 {
		return -1
	}
	return c[1] * 100 / c[0]
}

func (s Stats) Print(maps []string) {
	fmt.Printf("%24s", "")
	for _, r := range races {
		fmt.Printf(" %8s", r)
	}
	fmt.Println()
	for _, m := range maps {
		fmt.Printf("%24s", m)
		for _, r := range races {
			if rate := s.WinRate(m, r); rate >= 0 {
				fmt.Printf(" %7d%%", rate)
			} else {
				fmt.Printf(" %8s", "-")
			}
		}
		fmt.Println()
	}
}

func greedyChooser(cfg *config.Config, slots int, rng *rand.Rand) policy.Chooser {
	if cfg.Policy == "onnx" {
		chooser, err := policy.NewOnnxChooser(cfg.OnnxModel, slots, rng)
		if err != nil {
			log.Fatal(err)
		}
		return chooser
	}
	dc := dqn.DefaultConfig(minimap.InputHeight, minimap.InputWidth)
	learner, err := dqn.NewAgent(slots, dc)
	if err != nil {
		log.Fatal(err)
	}
	if err := learner.Load(cfg.Weights); err != nil {
		log.Fatal(err)
	}
	learner.Epsilon = 0
	return learner
}

func main() {
	cfg := config.Load()
	rounds := flag.Int("rounds", 1, "games per map and race")
	flag.StringVar(&cfg.Policy, "policy", cfg.Policy, "dqn or onnx")
	flag.Parse()

	log.SetConsoleLevel(log.L_info)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	difficulty, err := config.ParseDifficulty(cfg.Difficulty)
	if err != nil {
		log.Fatal(err)
	}

	var sel *policy.Selector
	table := agent.NewActions(func(int) error {
		sel.Standby(bot.B.Seconds())
		return nil
	})
	if err := agent.EnableExtras(table, cfg.ExtraAction); err != nil {
		log.Fatal(err)
	}
	sel = policy.NewSelector(table, greedyChooser(cfg, table.Len(), rng), rng)
	a := &agent.Agent{
		Selector: sel,
		Trainer:  agent.NewTrainer(nil),
		Height:   minimap.InputHeight,
		Width:    minimap.InputWidth,
	}

	maps := client.MapsProBotsSeason2
	stats := Stats{}
	var game *client.GameConfig
	myBot := client.NewParticipant(api.Race_Terran, "AIur")
	cpu := client.NewComputer(api.Race_Random, difficulty, api.AIBuild_RandomBuild)
	for round := 1; round <= *rounds; round++ {
		for _, mapName := range maps {
			for _, race := range races {
				cpu.Race = race
				if game == nil {
					client.SetMap(mapName + ".SC2Map")
					game = client.LaunchAndJoin(myBot, cpu)
				} else {
					game.StartGame(mapName + ".SC2Map")
				}

				out := a.Play(game.Client, false, nil)
				a.Trainer.Finish(out.Victory())
				stats.Add(mapName, race, out.Victory())

				fmt.Printf("Round %2d\n", round)
				stats.Print(maps)
			}
		}
	}
}
