package dqn

import (
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	log "bitbucket.org/aisee/minilog"
	"github.com/aiseeq/helpers/pkg/file"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

type Config struct {
	Height, Width, Channels int

	Gamma        float64
	Epsilon      float64
	EpsilonMin   float64
	EpsilonDecay float64

	LearningRate float64
	MemorySize   int
	TargetSync   int // replays between target network updates, 0 disables
	Seed         int64
}

func DefaultConfig(h, w int) Config {
	return Config{
		Height:       h,
		Width:        w,
		Channels:     3,
		Gamma:        0.99,
		Epsilon:      1.0,
		EpsilonMin:   0.01,
		EpsilonDecay: 0.9998,
		LearningRate: 1e-4,
		MemorySize:   20000,
		TargetSync:   10,
		Seed:         1,
	}
}

// Agent is an epsilon-greedy deep Q-learner with experience replay and a
// target network.
type Agent struct {
	Config
	Actions int

	online *Network
	target *Network
	memory *Memory
	rng    *rand.Rand

	replays int
}

func NewAgent(actions int, cfg Config) (*Agent, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	online, err := NewNetwork(cfg.Height, cfg.Width, cfg.Channels, actions, cfg.LearningRate, rng)
	if err != nil {
		return nil, err
	}
	target, _ := NewNetwork(cfg.Height, cfg.Width, cfg.Channels, actions, cfg.LearningRate, rng)
	target.CopyFrom(online)
	return &Agent{
		Config:  cfg,
		Actions: actions,
		online:  online,
		target:  target,
		memory:  NewMemory(cfg.MemorySize),
		rng:     rng,
	}, nil
}

// Choose picks a random action with probability Epsilon, otherwise the one with
// the highest predicted value.
func (a *Agent) Choose(state *tensor.Dense) int {
	if a.rng.Float64() <= a.Epsilon {
		return a.rng.Intn(a.Actions)
	}
	q, err := a.online.Predict(state)
	if err != nil {
		log.Error(err)
		return a.rng.Intn(a.Actions)
	}
	return argmax(q)
}

// Q returns the online network's action values.
func (a *Agent) Q(state *tensor.Dense) ([]float32, error) {
	return a.online.Predict(state)
}

func argmax(q []float32) int {
	return floats.MaxIdx(widen(q))
}

func widen(q []float32) []float64 {
	out := make([]float64, len(q))
	for i, v := range q {
		out[i] = float64(v)
	}
	return out
}

func (a *Agent) Remember(t Transition) {
	a.memory.Add(t)
}

func (a *Agent) Memory() *Memory { return a.memory }

// TDTarget is the bootstrapped value of a transition.
func TDTarget(reward float64, done bool, nextQ []float32, gamma float64) float64 {
	if done || len(nextQ) == 0 {
		return reward
	}
	return reward + gamma*floats.Max(widen(nextQ))
}

// Replay trains the online network on a sample of remembered transitions and
// returns the mean loss. Epsilon decays once per call.
func (a *Agent) Replay(batch int) (float64, error) {
	sample := a.memory.Sample(batch, a.rng)
	if len(sample) == 0 {
		return 0, nil
	}

	states := make([]*tensor.Dense, len(sample))
	next := make([]*tensor.Dense, len(sample))
	actions := make([]int, len(sample))
	for i, t := range sample {
		states[i], actions[i], next[i] = t.State, t.Action, t.Next
		if t.Done || t.Next == nil {
			// placeholder row, its values are ignored
			next[i] = t.State
		}
	}
	nextQ, err := a.target.PredictBatch(next)
	if err != nil {
		return 0, err
	}
	targets := make([]float64, len(sample))
	for i, t := range sample {
		targets[i] = TDTarget(t.Reward, t.Done || t.Next == nil, nextQ[i], a.Gamma)
	}
	loss, err := a.online.Fit(states, actions, targets)
	if err != nil {
		return 0, err
	}

	if a.Epsilon > a.EpsilonMin {
		a.Epsilon = math.Max(a.EpsilonMin, a.Epsilon*a.EpsilonDecay)
	}
	a.replays++
	if a.TargetSync > 0 && a.replays%a.TargetSync == 0 {
		a.SyncTarget()
	}
	return loss, nil
}

// SyncTarget copies the online weights into the target network.
func (a *Agent) SyncTarget() {
	a.target.CopyFrom(a.online)
}

type checkpoint struct {
	Shapes  [][]int
	Weights [][]float32
	Epsilon float64
	Replays int
}

// Save writes the online weights and exploration state.
func (a *Agent) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("dqn: save: %w", err)
		}
	}
	cp := checkpoint{Epsilon: a.Epsilon, Replays: a.replays}
	for _, p := range a.online.params() {
		cp.Shapes = append(cp.Shapes, []int(p.Shape()))
		cp.Weights = append(cp.Weights, data(p))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dqn: save: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(cp); err != nil {
		f.Close()
		return fmt.Errorf("dqn: encode weights: %w", err)
	}
	return f.Close()
}

// Load restores weights saved by Save into both networks. Epsilon is restored too.
func (a *Agent) Load(path string) error {
	if !file.Exists(path) {
		return fmt.Errorf("dqn: load: %s: %w", path, os.ErrNotExist)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dqn: load: %w", err)
	}
	defer f.Close()

	var cp checkpoint
	if err := gob.NewDecoder(f).Decode(&cp); err != nil {
		return fmt.Errorf("dqn: decode weights: %w", err)
	}
	ps := a.online.params()
	if len(cp.Weights) != len(ps) || len(cp.Shapes) != len(ps) {
		return fmt.Errorf("%w: %d weight tensors and %d shapes, want %d", ErrShape, len(cp.Weights), len(cp.Shapes), len(ps))
	}
	for i, p := range ps {
		if len(cp.Weights[i]) != len(data(p)) {
			return fmt.Errorf("%w: tensor %d has shape %v, want %v", ErrShape, i, cp.Shapes[i], p.Shape())
		}
	}
	for i, p := range ps {
		copy(data(p), cp.Weights[i])
	}
	a.SyncTarget()
	a.Epsilon = cp.Epsilon
	a.replays = cp.Replays
	log.Infof("Loaded weights from %s, epsilon %.4f", path, a.Epsilon)
	return nil
}
