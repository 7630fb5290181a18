package dqn

import (
	"math/rand"

	"gorgonia.org/tensor"
)

// Transition is one remembered step.
type Transition struct {
	State  *tensor.Dense
	Action int
	Reward float64
	Next   *tensor.Dense
	Done   bool
}

// Memory is a bounded FIFO of transitions. When full the oldest entry is dropped.
type Memory struct {
	buf  []Transition
	head int
	size int
}

func NewMemory(capacity int) *Memory {
	if capacity < 1 {
		capacity = 1
	}
	return &Memory{buf: make([]Transition, capacity)}
}

func (m *Memory) Add(t Transition) {
	m.buf[(m.head+m.size)%len(m.buf)] = t
	if m.size < len(m.buf) {
		m.size++
	} else {
		m.head = (m.head + 1) % len(m.buf)
	}
}

func (m *Memory) Len() int { return m.size }

func (m *Memory) Cap() int { return len(m.buf) }

// At returns the i-th oldest transition.
func (m *Memory) At(i int) Transition {
	return m.buf[(m.head+i)%len(m.buf)]
}

// Sample returns every transition when there are at most n, otherwise n
// distinct transitions chosen at random.
func (m *Memory) Sample(n int, rng *rand.Rand) []Transition {
	if m.size <= n {
		all := make([]Transition, m.size)
		for i := range all {
			all[i] = m.At(i)
		}
		return all
	}
	out := make([]Transition, n)
	for i, idx := range rng.Perm(m.size)[:n] {
		out[i] = m.At(idx)
	}
	return out
}
