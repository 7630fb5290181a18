package policy

import (
	"math/rand"

	log "bitbucket.org/aisee/minilog"
	"gorgonia.org/tensor"
)

// Chooser picks a slot for a state.
type Chooser interface {
	Choose(state *tensor.Dense) int
}

// Uniform picks slots at random.
type Uniform struct {
	Slots int
	Rng   *rand.Rand
}

func (u *Uniform) Choose(*tensor.Dense) int {
	return u.Rng.Intn(u.Slots)
}

// Selector gates decisions on game time and runs the chosen actions.
type Selector struct {
	Table          *Table
	Chooser        Chooser
	NextActionable float64 // game seconds
	rng            *rand.Rand
}

func NewSelector(table *Table, chooser Chooser, rng *rand.Rand) *Selector {
	return &Selector{Table: table, Chooser: chooser, rng: rng}
}

func (s *Selector) Actionable(now float64) bool {
	return now > s.NextActionable
}

// Decide returns the slot to play. Slot 0 is returned while on standby or
// before the first state exists.
func (s *Selector) Decide(now float64, state *tensor.Dense) int {
	if !s.Actionable(now) || state == nil {
		return 0
	}
	return s.Chooser.Choose(state)
}

// Standby defers further actions by 1 to 36 seconds.
func (s *Selector) Standby(now float64) {
	s.NextActionable = now + float64(1+s.rng.Intn(36))
}

// Execute runs the action behind slot if the selector is actionable. Errors
// are only logged.
func (s *Selector) Execute(now float64, slot int) {
	if !s.Actionable(now) {
		return
	}
	a, variant, ok := s.Table.Slot(slot)
	if !ok {
		log.Alertf("Slot %d out of range (%d slots)", slot, s.Table.Len())
		return
	}
	if a.Do == nil {
		return
	}
	if err := a.Do(variant); err != nil {
		log.Debugf("%s(%d): %v", a.Name, variant, err)
	}
}
