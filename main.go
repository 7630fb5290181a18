package main

import (
	"context"
	"flag"
	"math/rand"
	"path/filepath"
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
	"github.com/AoHRuthless/AIur/store"
	"github.com/AoHRuthless/AIur/tests"
	"github.com/AoHRuthless/AIur/viewer"
)

const name = "AIur"

func openStore(cfg *config.Config) (store.Multi, func()) {
	stores := store.Multi{&store.FileStore{Path: cfg.Results}}
	if cfg.RedisURL == "" {
		return stores, func() {}
	}
	rs, err := store.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Warning(err)
		return stores, func() {}
	}
	return append(stores, rs), func() { _ = rs.Close() }
}

// newPolicy returns the chooser for cfg.Policy and the learner behind it, nil
// when the policy does not learn.
func newPolicy(cfg *config.Config, slots int, epsilon float64, rng *rand.Rand) (policy.Chooser, *dqn.Agent) {
	switch cfg.Policy {
	case "onnx":
		chooser, err := policy.NewOnnxChooser(cfg.OnnxModel, slots, rng)
		if err != nil {
			log.Fatal(err)
		}
		return chooser, nil
	case "random":
		return &policy.Uniform{Slots: slots, Rng: rng}, nil
	}

	dc := dqn.DefaultConfig(minimap.InputHeight, minimap.InputWidth)
	dc.Epsilon = epsilon
	dc.Seed = rng.Int63()
	learner, err := dqn.NewAgent(slots, dc)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Load {
		if err := learner.Load(cfg.Weights); err != nil {
			log.Warning(err)
		}
	}
	return learner, learner
}

func run() {
	cfg := config.Load()
	flag.IntVar(&cfg.Episodes, "episodes", cfg.Episodes, "number of games to train on")
	flag.StringVar(&cfg.Map, "map", cfg.Map, "map name without extension")
	flag.StringVar(&cfg.Policy, "policy", cfg.Policy, "dqn, onnx or random")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug logging")
	flag.Parse()

	if cfg.Debug {
		log.SetConsoleLevel(log.L_debug)
	} else {
		log.SetConsoleLevel(log.L_info)
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ctx := context.Background()

	race, err := config.ParseRace(cfg.Race)
	if err != nil {
		log.Fatal(err)
	}
	difficulty, err := config.ParseDifficulty(cfg.Difficulty)
	if err != nil {
		log.Fatal(err)
	}

	progressPath := filepath.Join(cfg.TrainDir, "progress.json")
	progress := bot.LoadProgress(progressPath, bot.Progress{Epsilon: cfg.Epsilon})

	var hub *viewer.Hub
	if cfg.ViewerAddr != "" {
		hub = viewer.NewHub()
		srv := hub.ListenAndServe(cfg.ViewerAddr)
		defer srv.Close()
		log.Infof("Mini-map viewer on http://%s", cfg.ViewerAddr)
	}
	results, closeStore := openStore(cfg)
	defer closeStore()

	var sel *policy.Selector
	table := agent.NewActions(func(int) error {
		sel.Standby(bot.B.Seconds())
		return nil
	})
	if err := agent.EnableExtras(table, cfg.ExtraAction); err != nil {
		log.Fatal(err)
	}
	chooser, learner := newPolicy(cfg, table.Len(), progress.Epsilon, rng)
	sel = policy.NewSelector(table, chooser, rng)
	a := &agent.Agent{
		Selector:     sel,
		Trainer:      agent.NewTrainer(learner),
		Hub:          hub,
		Height:       minimap.InputHeight,
		Width:        minimap.InputWidth,
		PublishEvery: 4,
	}
	if cfg.Record {
		a.Trainer.Recorder = &agent.Recorder{Dir: filepath.Join(cfg.TrainDir, "episodes")}
	}
	log.Infof("%d action slots, policy %s", table.Len(), cfg.Policy)

	var onStart func(*bot.Bot)
	if cfg.Scenario != "" {
		onStart = func(b *bot.Bot) { tests.Run(cfg.Scenario, b) }
	}

	if cfg.Realtime {
		client.SetRealtime()
	}
	myBot := client.NewParticipant(api.Race_Terran, name)
	cpu := client.NewComputer(race, difficulty, api.AIBuild_RandomBuild)
	var game *client.GameConfig
	for episode := progress.Episode + 1; episode <= cfg.Episodes; episode++ {
		if game == nil {
			client.SetMap(cfg.Map + ".SC2Map")
			game = client.LaunchAndJoin(myBot, cpu)
		} else {
			game.StartGame(cfg.Map + ".SC2Map")
		}

		out := a.Play(game.Client, true, onStart)
		reward := a.Trainer.Finish(out.Victory())

		progress.Episode = episode
		if out.Victory() {
			progress.Wins++
		}
		if learner != nil {
			progress.Epsilon = learner.Epsilon
			if err := learner.Save(cfg.Weights); err != nil {
				log.Error(err)
			}
		}
		if err := bot.SaveProgress(progressPath, progress); err != nil {
			log.Error(err)
		}

		res := store.Result{
			Episode:  episode,
			Episodes: cfg.Episodes,
			Epsilon:  progress.Epsilon,
			Reward:   reward,
			Outcome:  out.Result.String(),
		}
		if err := results.Append(ctx, res); err != nil {
			log.Error(err)
		}
		log.Info(res)
	}
}

func main() {
	run()
}
