package agent

import (
	"time"

	log "bitbucket.org/aisee/minilog"
	"gorgonia.org/tensor"

	"github.com/AoHRuthless/AIur/dqn"
)

// Trainer turns the stream of observed states and scores of one episode into
// remembered transitions and replays. Learner may be nil for play without
// learning, then only the return is tracked.
type Trainer struct {
	Learner     *dqn.Agent
	Shaper      *dqn.Shaper
	ReplayEvery int
	BatchSize   int

	Return   float64 // sum of shaped rewards this episode
	LastLoss float64

	Recorder *Recorder // optional, keeps won episodes

	prev, curr *tensor.Dense
	action     int
	steps      int
}

func NewTrainer(learner *dqn.Agent) *Trainer {
	return &Trainer{
		Learner:     learner,
		Shaper:      dqn.NewShaper(),
		ReplayEvery: dqn.ReplayEvery,
		BatchSize:   dqn.BatchSize,
	}
}

// Reset prepares for a new episode. Replay memory is kept.
func (t *Trainer) Reset() {
	t.Shaper.Reset()
	t.prev, t.curr = nil, nil
	t.action, t.steps = 0, 0
	t.Return, t.LastLoss = 0, 0
	if t.Recorder != nil {
		t.Recorder.Reset()
	}
}

// State is the latest observed state, nil before the first observation.
func (t *Trainer) State() *tensor.Dense { return t.curr }

func (t *Trainer) Steps() int { return t.steps }

// Observe records a new state and the cumulative score that led to it. The
// transition from the previous state is remembered with the action taken there.
func (t *Trainer) Observe(state *tensor.Dense, score float64) {
	t.prev, t.curr = t.curr, state
	reward := t.Shaper.Step(score)
	if t.prev == nil {
		return
	}
	t.Return += reward
	t.remember(reward, false)
	t.steps++
	if t.ReplayEvery > 0 && t.steps%t.ReplayEvery == 0 {
		t.replay()
	}
}

// Act records the slot chosen for the current state.
func (t *Trainer) Act(slot int) {
	t.action = slot
	if t.Recorder != nil && t.curr != nil {
		t.Recorder.Add(t.curr, slot)
	}
}

// Finish remembers the terminal transition, trains once more and returns the
// episode return.
func (t *Trainer) Finish(victory bool) float64 {
	reward := t.Shaper.Final(victory)
	t.Return += reward
	if t.curr != nil {
		t.prev = t.curr
		t.remember(reward, true)
		t.replay()
	}
	if t.Recorder != nil {
		path, err := t.Recorder.Save(victory, time.Now())
		if err != nil {
			log.Error(err)
		} else if path != "" {
			log.Infof("Saved %d decisions to %s", t.Recorder.Len(), path)
		}
	}
	return t.Return
}

func (t *Trainer) remember(reward float64, done bool) {
	if t.Learner == nil {
		return
	}
	t.Learner.Remember(dqn.Transition{
		State:  t.prev,
		Action: t.action,
		Reward: reward,
		Next:   t.curr,
		Done:   done,
	})
}

func (t *Trainer) replay() {
	if t.Learner == nil {
		return
	}
	loss, err := t.Learner.Replay(t.BatchSize)
	if err != nil {
		log.Error(err)
		return
	}
	t.LastLoss = loss
	log.Debugf("Replay: loss %.5f, epsilon %.4f", loss, t.Learner.Epsilon)
}
