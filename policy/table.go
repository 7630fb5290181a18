package policy

import "fmt"

// Action is one discrete decision. Do receives the variant of the slot that
// selected it: the offset of that slot within the action's slots.
type Action struct {
	Name   string
	Weight int
	Do     func(variant int) error
}

type slot struct {
	action  int
	variant int
}

// Table maps network outputs (slots) to actions. An action with weight n takes
// n consecutive slots, so it is proportionally more likely under random play.
type Table struct {
	actions []Action
	slots   []slot
}

func NewTable(actions ...Action) *Table {
	t := &Table{actions: actions}
	t.rebuild()
	return t
}

func (t *Table) rebuild() {
	t.slots = t.slots[:0]
	for i, a := range t.actions {
		for v := 0; v < a.Weight; v++ {
			t.slots = append(t.slots, slot{action: i, variant: v})
		}
	}
}

// Enable gives a registered action a weight. Actions registered with weight 0
// take no slot until enabled.
func (t *Table) Enable(name string, weight int) error {
	for i := range t.actions {
		if t.actions[i].Name == name {
			t.actions[i].Weight = weight
			t.rebuild()
			return nil
		}
	}
	return fmt.Errorf("policy: unknown action %q", name)
}

// Len is the number of slots, i.e. the size of the network output.
func (t *Table) Len() int { return len(t.slots) }

// Slot returns the action and variant behind slot i.
func (t *Table) Slot(i int) (Action, int, bool) {
	if i < 0 || i >= len(t.slots) {
		return Action{}, 0, false
	}
	s := t.slots[i]
	return t.actions[s.action], s.variant, true
}

// Names lists the action of every slot, for logs.
func (t *Table) Names() []string {
	names := make([]string, len(t.slots))
	for i, s := range t.slots {
		names[i] = t.actions[s.action].Name
	}
	return names
}
