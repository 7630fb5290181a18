package agent

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AoHRuthless/AIur/macro"
	"github.com/AoHRuthless/AIur/micro"
	"github.com/AoHRuthless/AIur/policy"
	"github.com/AoHRuthless/AIur/roles"
)

const (
	NoOp                     = "no_op"
	Standby                  = "standby"
	Attack                   = "attack"
	ManageSupply             = "manage_supply"
	ManageRefineries         = "manage_refineries"
	ManageBarracks           = "manage_barracks"
	BarracksTechLabs         = "barracks_tech_labs"
	BarracksReactors         = "barracks_reactors"
	TrainWorkers             = "train_workers"
	TrainMarines             = "train_marines"
	TrainMarauders           = "train_marauders"
	UpgradeCC                = "upgrade_cc"
	Expand                   = "expand"
	Scout                    = "scout"
	AdjustRefineryAssignment = "adjust_refinery_assignment"
	ManageFactories          = "manage_factories"
	ManageStarports          = "manage_starports"
	TrainHellions            = "train_hellions"
	TrainMedivacs            = "train_medivacs"
	Research                 = "research"
)

func noop(int) error { return nil }

func do(f func() error) func(int) error {
	return func(int) error { return f() }
}

// NewActions builds the action table. Slot 0 is always the no-op. standby is
// the action deferring further decisions.
func NewActions(standby func(variant int) error) *policy.Table {
	return policy.NewTable(
		policy.Action{Name: NoOp, Weight: 1, Do: noop},
		policy.Action{Name: Standby, Weight: 1, Do: standby},
		policy.Action{Name: Attack, Weight: 3, Do: micro.Attack}, // variant is the target mode
		policy.Action{Name: ManageSupply, Weight: 5, Do: do(macro.ManageSupply)},
		policy.Action{Name: ManageRefineries, Weight: 1, Do: do(macro.ManageRefineries)},
		policy.Action{Name: ManageBarracks, Weight: 4, Do: do(macro.ManageBarracks)},
		policy.Action{Name: BarracksTechLabs, Weight: 1, Do: do(macro.BarracksTechLab)},
		policy.Action{Name: BarracksReactors, Weight: 1, Do: do(macro.BarracksReactor)},
		policy.Action{Name: TrainWorkers, Weight: 3, Do: do(macro.TrainWorkers)},
		policy.Action{Name: TrainMarines, Weight: 6, Do: do(macro.TrainMarines)},
		policy.Action{Name: TrainMarauders, Weight: 3, Do: do(macro.TrainMarauders)},
		policy.Action{Name: UpgradeCC, Weight: 1, Do: do(macro.UpgradeCC)},
		policy.Action{Name: Expand, Weight: 3, Do: do(macro.Expand)},
		policy.Action{Name: Scout, Weight: 1, Do: do(roles.Scout)},

		policy.Action{Name: AdjustRefineryAssignment, Do: do(macro.AdjustRefineryAssignment)},
		policy.Action{Name: ManageFactories, Do: do(macro.ManageFactories)},
		policy.Action{Name: ManageStarports, Do: do(macro.ManageStarports)},
		policy.Action{Name: TrainHellions, Do: do(macro.TrainHellions)},
		policy.Action{Name: TrainMedivacs, Do: do(macro.TrainMedivacs)},
		policy.Action{Name: Research, Do: do(macro.Research)},
	)
}

// EnableExtras enables actions listed as "name" (weight 1) or "name=weight".
func EnableExtras(t *policy.Table, extras []string) error {
	for _, e := range extras {
		name, weight := e, 1
		if i := strings.IndexByte(e, '='); i >= 0 {
			w, err := strconv.Atoi(e[i+1:])
			if err != nil || w < 0 {
				return fmt.Errorf("bad weight in %q", e)
			}
			name, weight = e[:i], w
		}
		if err := t.Enable(name, weight); err != nil {
			return err
		}
	}
	return nil
}
