package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds agent configuration loaded from environment variables.
type Config struct {
	Episodes    int
	Map         string
	Race        string
	Difficulty  string
	Realtime    bool
	TrainDir    string
	Weights     string
	Load        bool
	Epsilon     float64
	Results     string
	RedisURL    string
	ViewerAddr  string
	OnnxModel   string
	Policy      string
	ExtraAction []string
	Scenario    string
	Record      bool
	Debug       bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	trainDir := envOrDefault("AIUR_TRAIN_DIR", "training")
	return &Config{
		Episodes:    envInt("AIUR_EPISODES", 100),
		Map:         envOrDefault("AIUR_MAP", "RedshiftLE"),
		Race:        envOrDefault("AIUR_RACE", "protoss"),
		Difficulty:  envOrDefault("AIUR_DIFFICULTY", "mediumhard"),
		Realtime:    envBool("AIUR_REALTIME", false),
		TrainDir:    trainDir,
		Weights:     envOrDefault("AIUR_WEIGHTS", trainDir+"/terran-dqn.gob"),
		Load:        envBool("AIUR_LOAD", true),
		Epsilon:     envFloat("AIUR_EPSILON", 1.0),
		Results:     envOrDefault("AIUR_RESULTS", "results.log"),
		RedisURL:    os.Getenv("AIUR_REDIS_URL"),
		ViewerAddr:  os.Getenv("AIUR_VIEWER_ADDR"),
		OnnxModel:   envOrDefault("AIUR_ONNX_MODEL", trainDir+"/terran-policy.onnx"),
		Policy:      envOrDefault("AIUR_POLICY", "dqn"),
		ExtraAction: envList("AIUR_EXTRA_ACTIONS"),
		Scenario:    os.Getenv("AIUR_SCENARIO"),
		Record:      envBool("AIUR_RECORD", false),
		Debug:       envBool("AIUR_DEBUG", false),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envList(key string) []string {
	var list []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			list = append(list, s)
		}
	}
	return list
}
