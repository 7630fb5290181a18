package agent

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorgonia.org/tensor"
)

// Pair is one decision: the rendered state and the slot played in it.
type Pair struct {
	Shape  []int
	Pixels []uint8
	Slot   int
}

// Recorder collects the decisions of an episode and keeps won episodes on disk
// as a dataset for supervised policies.
type Recorder struct {
	Dir   string
	pairs []Pair
}

func (r *Recorder) Add(state *tensor.Dense, slot int) {
	pixels, ok := state.Data().([]uint8)
	if !ok {
		return
	}
	r.pairs = append(r.pairs, Pair{
		Shape:  append([]int(nil), state.Shape()...),
		Pixels: append([]uint8(nil), pixels...),
		Slot:   slot,
	})
}

func (r *Recorder) Len() int { return len(r.pairs) }

func (r *Recorder) Reset() { r.pairs = nil }

// Save writes the episode to Dir/<unix time>.gob when it was won and returns the
// file path, or "" when nothing was written.
func (r *Recorder) Save(victory bool, now time.Time) (string, error) {
	if !victory || len(r.pairs) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return "", fmt.Errorf("recorder: %w", err)
	}
	path := filepath.Join(r.Dir, fmt.Sprintf("%d.gob", now.Unix()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("recorder: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(r.pairs); err != nil {
		f.Close()
		return "", fmt.Errorf("recorder: encode %s: %w", path, err)
	}
	return path, f.Close()
}

// LoadEpisode reads an episode written by Save.
func LoadEpisode(path string) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var pairs []Pair
	if err := gob.NewDecoder(f).Decode(&pairs); err != nil {
		return nil, fmt.Errorf("recorder: decode %s: %w", path, err)
	}
	return pairs, nil
}
