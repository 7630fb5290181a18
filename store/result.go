package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

const Victory = "Victory"

var ErrMalformed = errors.New("store: malformed result line")

// Result is the outcome of one training episode.
type Result struct {
	Episode  int
	Episodes int
	Epsilon  float64
	Reward   float64
	Outcome  string
}

// String formats the result as a log line:
// episode: 3/100, epsilon: 0.99, reward: 1520.0, result: Victory
func (r Result) String() string {
	return fmt.Sprintf("episode: %d/%d, epsilon: %.4f, reward: %.1f, result: %s",
		r.Episode, r.Episodes, r.Epsilon, r.Reward, r.Outcome)
}

func (r Result) Won() bool { return r.Outcome == Victory }

// ParseLine reads a line written by Result.String. Outcomes spelled
// "Result.Victory" are accepted too.
func ParseLine(line string) (Result, error) {
	var r Result
	fields := strings.Split(strings.TrimSpace(line), ", ")
	if len(fields) != 4 {
		return r, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	values := make(map[string]string, 4)
	for _, f := range fields {
		k, v, ok := strings.Cut(f, ": ")
		if !ok {
			return r, fmt.Errorf("%w: field %q", ErrMalformed, f)
		}
		values[k] = v
	}

	var err error
	ep, total, _ := strings.Cut(values["episode"], "/")
	if r.Episode, err = strconv.Atoi(ep); err != nil {
		return r, fmt.Errorf("%w: episode: %v", ErrMalformed, err)
	}
	if total != "" {
		if r.Episodes, err = strconv.Atoi(total); err != nil {
			return r, fmt.Errorf("%w: episodes: %v", ErrMalformed, err)
		}
	}
	if r.Epsilon, err = strconv.ParseFloat(values["epsilon"], 64); err != nil {
		return r, fmt.Errorf("%w: epsilon: %v", ErrMalformed, err)
	}
	if r.Reward, err = strconv.ParseFloat(values["reward"], 64); err != nil {
		return r, fmt.Errorf("%w: reward: %v", ErrMalformed, err)
	}
	r.Outcome = strings.TrimPrefix(values["result"], "Result.")
	if r.Outcome == "" {
		return r, fmt.Errorf("%w: missing result", ErrMalformed)
	}
	return r, nil
}

// RollingAverage smooths data with a trailing window. The first entries average
// over the values available so far, so the output has the same length.
func RollingAverage(data []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(data))
	for i := range data {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		out[i] = stat.Mean(data[lo:i+1], nil)
	}
	return out
}

func Rewards(results []Result) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.Reward
	}
	return out
}

func Wins(results []Result) int {
	var n int
	for _, r := range results {
		if r.Won() {
			n++
		}
	}
	return n
}
