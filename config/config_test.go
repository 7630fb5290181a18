package config

import (
	"testing"

	"github.com/aiseeq/s2l/protocol/api"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"AIUR_EPISODES", "AIUR_TRAIN_DIR", "AIUR_WEIGHTS", "AIUR_LOAD", "AIUR_EXTRA_ACTIONS", "AIUR_RECORD"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Episodes != 100 {
		t.Errorf("episodes = %d, want 100", cfg.Episodes)
	}
	if cfg.Weights != "training/terran-dqn.gob" {
		t.Errorf("weights = %q", cfg.Weights)
	}
	if !cfg.Load {
		t.Error("weights should be loaded by default")
	}
	if len(cfg.ExtraAction) != 0 {
		t.Errorf("extra actions = %v, want none", cfg.ExtraAction)
	}
	if cfg.Record {
		t.Error("recording should be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AIUR_EPISODES", "7")
	t.Setenv("AIUR_TRAIN_DIR", "/tmp/run")
	t.Setenv("AIUR_WEIGHTS", "")
	t.Setenv("AIUR_LOAD", "false")
	t.Setenv("AIUR_EPSILON", "0.25")
	t.Setenv("AIUR_EXTRA_ACTIONS", "manage_factories, train_hellions,,")
	t.Setenv("AIUR_RECORD", "true")

	cfg := Load()
	if cfg.Episodes != 7 {
		t.Errorf("episodes = %d, want 7", cfg.Episodes)
	}
	if cfg.Weights != "/tmp/run/terran-dqn.gob" {
		t.Errorf("weights = %q", cfg.Weights)
	}
	if cfg.Load {
		t.Error("load should be disabled")
	}
	if cfg.Epsilon != 0.25 {
		t.Errorf("epsilon = %v", cfg.Epsilon)
	}
	if len(cfg.ExtraAction) != 2 || cfg.ExtraAction[1] != "train_hellions" {
		t.Errorf("extra actions = %v", cfg.ExtraAction)
	}
	if !cfg.Record {
		t.Error("recording should be enabled")
	}
}

func TestParseRace(t *testing.T) {
	tests := []struct {
		in      string
		want    api.Race
		wantErr bool
	}{
		{"protoss", api.Race_Protoss, false},
		{"Zerg", api.Race_Zerg, false},
		{"RANDOM", api.Race_Random, false},
		{"norace", api.Race_NoRace, true},
		{"murloc", api.Race_NoRace, true},
	}
	for _, tt := range tests {
		got, err := ParseRace(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseRace(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	got, err := ParseDifficulty("mediumhard")
	if err != nil || got != api.Difficulty_MediumHard {
		t.Errorf("got %v, %v", got, err)
	}
	if _, err = ParseDifficulty("impossible"); err == nil {
		t.Error("expected an error")
	}
}
