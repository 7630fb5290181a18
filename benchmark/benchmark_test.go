package main

import (
	"testing"

	"github.com/aiseeq/s2l/protocol/api"
)

func TestStats(t *testing.T) {
	s := Stats{}
	if got := s.WinRate("Redshift", api.Race_Zerg); got != -1 {
		t.Errorf("empty stats: got %d, want -1", got)
	}
	s.Add("Redshift", api.Race_Zerg, true)
	s.Add("Redshift", api.Race_Zerg, false)
	s.Add("Redshift", api.Race_Zerg, true)
	s.Add("Redshift", api.Race_Protoss, false)
	if got := s.WinRate("Redshift", api.Race_Zerg); got != 66 {
		t.Errorf("zerg: got %d, want 66", got)
	}
	if got := s.WinRate("Redshift", api.Race_Protoss); got != 0 {
		t.Errorf("protoss: got %d, want 0", got)
	}
}
