package dqn

const (
	RewardScale    = 0.001
	TerminalReward = 1000.0
	ReplayEvery    = 32
	BatchSize      = 32
)

// Shaper turns the cumulative game score into per-step rewards.
type Shaper struct {
	Scale    float64
	Terminal float64
	last     float64
}

func NewShaper() *Shaper {
	return &Shaper{Scale: RewardScale, Terminal: TerminalReward}
}

// Step returns the scaled score gained since the previous call.
func (s *Shaper) Step(score float64) float64 {
	r := s.Scale * (score - s.last)
	s.last = score
	return r
}

// Final is the terminal reward for an episode outcome.
func (s *Shaper) Final(victory bool) float64 {
	if victory {
		return s.Terminal * s.Scale
	}
	return -s.Terminal * s.Scale
}

func (s *Shaper) Reset() { s.last = 0 }
