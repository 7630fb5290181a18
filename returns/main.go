package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	log "bitbucket.org/aisee/minilog"
	"gonum.org/v1/gonum/stat"

	"github.com/AoHRuthless/AIur/config"
	"github.com/AoHRuthless/AIur/minimap"
	"github.com/AoHRuthless/AIur/store"
)

func load(ctx context.Context, cfg *config.Config, fromRedis bool) ([]store.Result, error) {
	if !fromRedis {
		return (&store.FileStore{Path: cfg.Results}).List(ctx)
	}
	rs, err := store.NewRedisStore(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	return rs.List(ctx)
}

func main() {
	cfg := config.Load()
	window := flag.Int("window", 10, "rolling average window, episodes")
	fromRedis := flag.Bool("redis", false, "read results from AIUR_REDIS_URL")
	chart := flag.String("png", "", "write the rolling average chart to this file")
	flag.StringVar(&cfg.Results, "results", cfg.Results, "results log")
	flag.Parse()
	log.SetConsoleLevel(log.L_info)

	results, err := load(context.Background(), cfg, *fromRedis)
	if err != nil {
		log.Fatal(err)
	}
	if len(results) == 0 {
		log.Info("No results yet")
		return
	}

	rewards := store.Rewards(results)
	avg := store.RollingAverage(rewards, *window)
	wins := store.Wins(results)
	fmt.Printf("episodes: %d, wins: %d (%.1f%%), mean reward: %.2f\n",
		len(results), wins, float64(wins)*100/float64(len(results)), stat.Mean(rewards, nil))
	for i, r := range results {
		fmt.Printf("%5d %10.2f %10.2f %s\n", r.Episode, r.Reward, avg[i], r.Outcome)
	}

	if *chart != "" {
		data, err := minimap.EncodePNG(Chart(avg, 640, 320))
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*chart, data, 0644); err != nil {
			log.Fatal(err)
		}
	}
}
