package dqn

import (
	"encoding/gob"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"gorgonia.org/tensor"
)

func state(h, w int, v uint8) *tensor.Dense {
	backing := make([]uint8, h*w*3)
	for i := range backing {
		backing[i] = v
	}
	return tensor.New(tensor.WithShape(h, w, 3), tensor.WithBacking(backing))
}

func testAgent(t *testing.T, actions int) *Agent {
	t.Helper()
	cfg := DefaultConfig(24, 24)
	cfg.LearningRate = 1e-2
	cfg.MemorySize = 16
	a, err := NewAgent(actions, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestNewNetworkTooSmall(t *testing.T) {
	if _, err := NewNetwork(8, 8, 3, 4, 1e-3, rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected error for an input that does not survive pooling")
	}
}

func TestPredictShape(t *testing.T) {
	a := testAgent(t, 5)
	q, err := a.Q(state(24, 24, 100))
	if err != nil {
		t.Fatal(err)
	}
	if len(q) != 5 {
		t.Errorf("len(q) = %d, want 5", len(q))
	}
	if _, err := a.Q(state(20, 24, 100)); !errors.Is(err, ErrShape) {
		t.Errorf("err = %v, want ErrShape", err)
	}
}

func TestMemoryEvictsOldest(t *testing.T) {
	m := NewMemory(3)
	for i := 0; i < 5; i++ {
		m.Add(Transition{Action: i})
	}
	if m.Len() != 3 || m.Cap() != 3 {
		t.Fatalf("len = %d, cap = %d, want 3", m.Len(), m.Cap())
	}
	for i, want := range []int{2, 3, 4} {
		if got := m.At(i).Action; got != want {
			t.Errorf("At(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestMemorySample(t *testing.T) {
	m := NewMemory(10)
	for i := 0; i < 6; i++ {
		m.Add(Transition{Action: i})
	}
	rng := rand.New(rand.NewSource(3))
	if got := m.Sample(32, rng); len(got) != 6 {
		t.Errorf("sample of small memory = %d entries, want all 6", len(got))
	}
	got := m.Sample(4, rng)
	seen := map[int]bool{}
	for _, tr := range got {
		if seen[tr.Action] {
			t.Errorf("action %d sampled twice", tr.Action)
		}
		seen[tr.Action] = true
	}
	if len(got) != 4 {
		t.Errorf("sample = %d entries, want 4", len(got))
	}
}

func TestTDTarget(t *testing.T) {
	tests := []struct {
		name   string
		reward float64
		done   bool
		next   []float32
		want   float64
	}{
		{"terminal", -1, true, []float32{5, 6}, -1},
		{"bootstrap", 1, false, []float32{2, 4, 3}, 1 + 0.5*4},
		{"no next", 2, false, nil, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TDTarget(tt.reward, tt.done, tt.next, 0.5); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChooseGreedyAndRandom(t *testing.T) {
	a := testAgent(t, 4)
	s := state(24, 24, 200)

	a.Epsilon = 0
	q, _ := a.Q(s)
	want := argmax(q)
	for i := 0; i < 10; i++ {
		if got := a.Choose(s); got != want {
			t.Fatalf("greedy choice = %d, want %d", got, want)
		}
	}

	a.Epsilon = 1
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		seen[a.Choose(s)] = true
	}
	if len(seen) != 4 {
		t.Errorf("random choices covered %d actions, want 4", len(seen))
	}
}

func TestReplayDecaysEpsilon(t *testing.T) {
	a := testAgent(t, 2)
	a.Epsilon = 0.0101
	if _, err := a.Replay(8); err != nil {
		t.Fatal(err)
	}
	if a.Epsilon != 0.0101 {
		t.Error("empty memory should not train or decay")
	}
	a.Remember(Transition{State: state(24, 24, 0), Action: 0, Reward: 1, Done: true})
	for i := 0; i < 100; i++ {
		if _, err := a.Replay(8); err != nil {
			t.Fatal(err)
		}
	}
	if a.Epsilon != a.EpsilonMin {
		t.Errorf("epsilon = %v, want floor %v", a.Epsilon, a.EpsilonMin)
	}
}

func TestReplayLearnsTerminalValues(t *testing.T) {
	a := testAgent(t, 2)
	dark, bright := state(24, 24, 0), state(24, 24, 255)
	a.Remember(Transition{State: dark, Action: 0, Reward: 1, Done: true})
	a.Remember(Transition{State: dark, Action: 1, Reward: -1, Done: true})
	a.Remember(Transition{State: bright, Action: 0, Reward: -1, Done: true})
	a.Remember(Transition{State: bright, Action: 1, Reward: 1, Done: true})

	first, err := a.Replay(4)
	if err != nil {
		t.Fatal(err)
	}
	var last float64
	for i := 0; i < 600; i++ {
		if last, err = a.Replay(4); err != nil {
			t.Fatal(err)
		}
	}
	if last >= first {
		t.Errorf("loss did not decrease: first %v, last %v", first, last)
	}

	a.Epsilon = 0
	if got := a.Choose(dark); got != 0 {
		t.Errorf("dark state action = %d, want 0", got)
	}
	if got := a.Choose(bright); got != 1 {
		t.Errorf("bright state action = %d, want 1", got)
	}
}

func TestSyncTarget(t *testing.T) {
	a := testAgent(t, 3)
	a.TargetSync = 0
	s := state(24, 24, 128)
	a.Remember(Transition{State: s, Action: 1, Reward: 5, Done: true})
	if _, err := a.Replay(1); err != nil {
		t.Fatal(err)
	}

	online, _ := a.online.Predict(s)
	target, _ := a.target.Predict(s)
	if online[1] == target[1] {
		t.Fatal("target should lag behind the online network before sync")
	}
	a.SyncTarget()
	target, _ = a.target.Predict(s)
	for i := range online {
		if online[i] != target[i] {
			t.Errorf("q[%d]: online %v, target %v", i, online[i], target[i])
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "weights.gob")
	a := testAgent(t, 3)
	a.Epsilon = 0.42
	if err := a.Save(path); err != nil {
		t.Fatal(err)
	}

	cfg := a.Config
	cfg.Seed = 99
	b, err := NewAgent(3, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Load(path); err != nil {
		t.Fatal(err)
	}
	if b.Epsilon != 0.42 {
		t.Errorf("epsilon = %v, want 0.42", b.Epsilon)
	}
	s := state(24, 24, 77)
	qa, _ := a.Q(s)
	qb, _ := b.Q(s)
	for i := range qa {
		if qa[i] != qb[i] {
			t.Errorf("q[%d]: saved %v, loaded %v", i, qa[i], qb[i])
		}
	}

	c, _ := NewAgent(4, cfg)
	if err := c.Load(path); !errors.Is(err, ErrShape) {
		t.Errorf("loading into a different action count: err = %v, want ErrShape", err)
	}
	if err := c.Load(filepath.Join(t.TempDir(), "missing.gob")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestShaper(t *testing.T) {
	s := &Shaper{Scale: 0.5, Terminal: 10}
	if r := s.Step(100); r != 50 {
		t.Errorf("first step = %v, want 50", r)
	}
	if r := s.Step(140); r != 20 {
		t.Errorf("second step = %v, want 20", r)
	}
	if s.Final(true) != 5 || s.Final(false) != -5 {
		t.Errorf("final = %v / %v", s.Final(true), s.Final(false))
	}
	s.Reset()
	if r := s.Step(10); r != 5 {
		t.Errorf("after reset = %v, want 5", r)
	}
}

func noise(h, w int, rng *rand.Rand) *tensor.Dense {
	backing := make([]uint8, h*w*3)
	for i := range backing {
		backing[i] = uint8(rng.Intn(256))
	}
	return tensor.New(tensor.WithShape(h, w, 3), tensor.WithBacking(backing))
}

func TestGradientsMatchFiniteDifferences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n, err := NewNetwork(24, 24, 3, 3, 1e-3, rng)
	if err != nil {
		t.Fatal(err)
	}
	states := []*tensor.Dense{noise(24, 24, rng), noise(24, 24, rng)}
	actions := []int{0, 2}
	q, err := n.PredictBatch(states)
	if err != nil {
		t.Fatal(err)
	}
	// inside the quadratic part of the Huber loss
	targets := []float64{float64(q[0][0]) + 0.3, float64(q[1][2]) - 0.4}

	loss := func() float64 {
		q, err := n.PredictBatch(states)
		if err != nil {
			t.Fatal(err)
		}
		var sum float64
		for i, a := range actions {
			sum += huber(float64(q[i][a]) - targets[i])
		}
		return sum / float64(len(actions))
	}

	_, gr, err := n.backprop(states, actions, targets)
	if err != nil {
		t.Fatal(err)
	}
	grads, err := gr.grads()
	gr.vm.Reset()
	if err != nil {
		t.Fatal(err)
	}

	const eps = 5e-3
	ps := n.params()
	for _, i := range []int{0, 2, 4} {
		w, g := data(ps[i]), grads[i]
		idx := make([]int, len(g))
		for j := range idx {
			idx[j] = j
		}
		sort.Slice(idx, func(a, b int) bool { return math.Abs(float64(g[idx[a]])) > math.Abs(float64(g[idx[b]])) })

		checked := 0
		for _, j := range idx[:5] {
			if math.Abs(float64(g[j])) < 1e-3 {
				break
			}
			orig := w[j]
			w[j] = orig + eps
			up := loss()
			w[j] = orig - eps
			down := loss()
			w[j] = orig

			num := (up - down) / (2 * eps)
			if diff := math.Abs(num - float64(g[j])); diff > 0.1*math.Abs(num)+2e-3 {
				t.Errorf("%s[%d]: gradient %v, finite difference %v", paramNames[i], j, g[j], num)
			}
			checked++
		}
		if checked == 0 {
			t.Errorf("%s: no gradient large enough to check", paramNames[i])
		}
	}
}

func TestLoadRejectsShortShapes(t *testing.T) {
	a := testAgent(t, 3)
	cp := checkpoint{Epsilon: 0.5}
	for _, p := range a.online.params() {
		cp.Weights = append(cp.Weights, data(p))
	}
	cp.Shapes = [][]int{{1}}

	path := filepath.Join(t.TempDir(), "short.gob")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := gob.NewEncoder(f).Encode(cp); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := a.Load(path); !errors.Is(err, ErrShape) {
		t.Errorf("err = %v, want ErrShape", err)
	}
}
