package config

import (
	"fmt"
	"strings"

	"github.com/aiseeq/s2l/protocol/api"
)

// ParseRace accepts race names in any case: "protoss", "Zerg", "random".
func ParseRace(s string) (api.Race, error) {
	for name, v := range api.Race_value {
		if strings.EqualFold(name, s) && api.Race(v) != api.Race_NoRace {
			return api.Race(v), nil
		}
	}
	return api.Race_NoRace, fmt.Errorf("unknown race %q", s)
}

// ParseDifficulty accepts built-in AI levels in any case: "mediumhard", "CheatInsane".
func ParseDifficulty(s string) (api.Difficulty, error) {
	for name, v := range api.Difficulty_value {
		if strings.EqualFold(name, s) {
			return api.Difficulty(v), nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}
