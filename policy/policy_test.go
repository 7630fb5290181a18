package policy

import (
	"errors"
	"math/rand"
	"testing"

	"gorgonia.org/tensor"
)

type fixed int

func (f fixed) Choose(*tensor.Dense) int { return int(f) }

func newState() *tensor.Dense {
	return tensor.New(tensor.WithShape(2, 2, 3), tensor.WithBacking(make([]uint8, 12)))
}

func TestTableSlots(t *testing.T) {
	tbl := NewTable(
		Action{Name: "no_op", Weight: 1},
		Action{Name: "attack", Weight: 3},
		Action{Name: "hellions", Weight: 0},
		Action{Name: "scout", Weight: 1},
	)
	if tbl.Len() != 5 {
		t.Fatalf("len = %d, want 5", tbl.Len())
	}
	want := []struct {
		name    string
		variant int
	}{{"no_op", 0}, {"attack", 0}, {"attack", 1}, {"attack", 2}, {"scout", 0}}
	for i, w := range want {
		a, v, ok := tbl.Slot(i)
		if !ok || a.Name != w.name || v != w.variant {
			t.Errorf("slot %d = %s/%d, want %s/%d", i, a.Name, v, w.name, w.variant)
		}
	}
	if _, _, ok := tbl.Slot(5); ok {
		t.Error("slot past the end should not exist")
	}

	if err := tbl.Enable("hellions", 2); err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 7 {
		t.Errorf("len after enable = %d, want 7", tbl.Len())
	}
	if names := tbl.Names(); names[4] != "hellions" || names[6] != "scout" {
		t.Errorf("names = %v", names)
	}
	if err := tbl.Enable("carriers", 1); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestSelectorGating(t *testing.T) {
	tbl := NewTable(Action{Name: "no_op", Weight: 1}, Action{Name: "train", Weight: 2})
	s := NewSelector(tbl, fixed(2), rand.New(rand.NewSource(1)))

	if got := s.Decide(10, nil); got != 0 {
		t.Errorf("without state = %d, want 0", got)
	}
	if got := s.Decide(10, newState()); got != 2 {
		t.Errorf("actionable = %d, want 2", got)
	}

	s.Standby(10)
	if s.NextActionable < 11 || s.NextActionable > 46 {
		t.Fatalf("next actionable = %v, want within 11..46", s.NextActionable)
	}
	if got := s.Decide(s.NextActionable, newState()); got != 0 {
		t.Errorf("at the standby boundary = %d, want 0", got)
	}
	if got := s.Decide(s.NextActionable+0.1, newState()); got != 2 {
		t.Errorf("after standby = %d, want 2", got)
	}
}

func TestSelectorExecute(t *testing.T) {
	var calls []int
	tbl := NewTable(
		Action{Name: "no_op", Weight: 1},
		Action{Name: "attack", Weight: 3, Do: func(v int) error {
			calls = append(calls, v)
			return errors.New("no target")
		}},
	)
	s := NewSelector(tbl, fixed(0), rand.New(rand.NewSource(1)))

	s.Execute(5, 0)
	s.Execute(5, 3)
	s.Execute(5, 42)
	s.NextActionable = 100
	s.Execute(50, 1)

	if len(calls) != 1 || calls[0] != 2 {
		t.Errorf("calls = %v, want [2]", calls)
	}
}

func TestUniform(t *testing.T) {
	u := &Uniform{Slots: 3, Rng: rand.New(rand.NewSource(7))}
	seen := map[int]bool{}
	for i := 0; i < 100; i++ {
		n := u.Choose(nil)
		if n < 0 || n >= 3 {
			t.Fatalf("slot %d out of range", n)
		}
		seen[n] = true
	}
	if len(seen) != 3 {
		t.Errorf("covered %d slots, want 3", len(seen))
	}
}

func TestOnnxMissingModel(t *testing.T) {
	if _, err := NewOnnxChooser("/nonexistent/policy.onnx", 4, rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestBatch(t *testing.T) {
	backing := make([]uint8, 12)
	backing[5] = 255
	in, err := batch(tensor.New(tensor.WithShape(2, 2, 3), tensor.WithBacking(backing)))
	if err != nil {
		t.Fatal(err)
	}
	shape := in.Shape()
	if len(shape) != 4 || shape[0] != 1 || shape[1] != 2 || shape[3] != 3 {
		t.Errorf("shape = %v", shape)
	}
	if d := in.Data().([]float32); d[5] != 1 || d[4] != 0 {
		t.Errorf("data = %v", d)
	}
	if _, err := batch(tensor.New(tensor.WithShape(12), tensor.WithBacking(backing))); err == nil {
		t.Error("expected error for flat state")
	}
}
