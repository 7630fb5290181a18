package agent

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorgonia.org/tensor"

	"github.com/AoHRuthless/AIur/dqn"
)

const side = 24

func state(v uint8) *tensor.Dense {
	data := make([]uint8, side*side*3)
	for i := range data {
		data[i] = v
	}
	return tensor.New(tensor.WithShape(side, side, 3), tensor.WithBacking(data))
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func newLearner(t *testing.T) *dqn.Agent {
	t.Helper()
	a, err := dqn.NewAgent(3, dqn.DefaultConfig(side, side))
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestActionsDefaultSlots(t *testing.T) {
	table := NewActions(noop)
	if table.Len() != 34 {
		t.Fatalf("got %d slots, want 34", table.Len())
	}
	a, _, ok := table.Slot(0)
	if !ok || a.Name != NoOp {
		t.Errorf("slot 0 is %q, want %q", a.Name, NoOp)
	}
	a, v, ok := table.Slot(4)
	if !ok || a.Name != Attack || v != 2 {
		t.Errorf("slot 4 is %q/%d, want %q/2", a.Name, v, Attack)
	}
	for _, name := range table.Names() {
		if name == TrainHellions || name == Research {
			t.Errorf("%s is enabled by default", name)
		}
	}
}

func TestEnableExtras(t *testing.T) {
	table := NewActions(noop)
	if err := EnableExtras(table, []string{TrainHellions, Research + "=3"}); err != nil {
		t.Fatal(err)
	}
	if table.Len() != 38 {
		t.Errorf("got %d slots, want 38", table.Len())
	}

	for _, bad := range []string{"nuke", Research + "=x", Research + "=-1"} {
		if err := EnableExtras(NewActions(noop), []string{bad}); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}

func TestTrainerRemembersTransitions(t *testing.T) {
	learner := newLearner(t)
	tr := NewTrainer(learner)
	tr.ReplayEvery = 0

	tr.Observe(state(0), 0)
	if learner.Memory().Len() != 0 {
		t.Fatal("first observation must not be remembered")
	}
	tr.Act(2)
	tr.Observe(state(10), 500)
	if learner.Memory().Len() != 1 {
		t.Fatalf("got %d transitions, want 1", learner.Memory().Len())
	}
	got := learner.Memory().At(0)
	if got.Action != 2 || got.Done {
		t.Errorf("got action %d done %v, want 2 false", got.Action, got.Done)
	}
	if !near(got.Reward, 500*dqn.RewardScale) {
		t.Errorf("got reward %v, want %v", got.Reward, 500*dqn.RewardScale)
	}
	if got.State == got.Next || got.Next != tr.State() {
		t.Error("transition does not link the previous state to the new one")
	}
}

func TestTrainerReplaysOnSchedule(t *testing.T) {
	learner := newLearner(t)
	tr := NewTrainer(learner)
	tr.ReplayEvery = 2

	for i := 0; i < 5; i++ {
		tr.Observe(state(uint8(i)), float64(i*10))
	}
	// four transitions, two replays
	if want := dqn.DefaultConfig(side, side).EpsilonDecay * dqn.DefaultConfig(side, side).EpsilonDecay; !near(learner.Epsilon, want) {
		t.Errorf("got epsilon %v, want %v", learner.Epsilon, want)
	}
}

func TestTrainerFinish(t *testing.T) {
	learner := newLearner(t)
	tr := NewTrainer(learner)
	tr.ReplayEvery = 0

	tr.Observe(state(0), 0)
	tr.Observe(state(1), 1000)
	ret := tr.Finish(true)
	if want := 1000*dqn.RewardScale + dqn.TerminalReward*dqn.RewardScale; !near(ret, want) {
		t.Errorf("got return %v, want %v", ret, want)
	}
	last := learner.Memory().At(learner.Memory().Len() - 1)
	if !last.Done || !near(last.Reward, dqn.TerminalReward*dqn.RewardScale) {
		t.Errorf("got terminal %+v", last)
	}

	tr.Reset()
	if tr.State() != nil || tr.Return != 0 {
		t.Error("reset kept episode state")
	}
	if learner.Memory().Len() != 2 {
		t.Error("reset dropped replay memory")
	}
}

func TestTrainerWithoutLearner(t *testing.T) {
	tr := NewTrainer(nil)
	tr.Observe(state(0), 0)
	tr.Observe(state(0), 200)
	if ret := tr.Finish(false); !near(ret, 200*dqn.RewardScale-dqn.TerminalReward*dqn.RewardScale) {
		t.Errorf("got return %v", ret)
	}
}

func TestTrainerRecordsWonEpisodes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "episodes")
	tr := NewTrainer(nil)
	tr.Recorder = &Recorder{Dir: dir}

	tr.Act(1) // nothing observed yet
	tr.Observe(state(10), 0)
	tr.Act(2)
	tr.Observe(state(20), 10)
	tr.Act(0)
	if tr.Recorder.Len() != 2 {
		t.Fatalf("recorded %d decisions, want 2", tr.Recorder.Len())
	}

	tr.Finish(false)
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("lost episode was written: %v", err)
	}

	tr.Finish(true)
	files, err := filepath.Glob(filepath.Join(dir, "*.gob"))
	if err != nil || len(files) != 1 {
		t.Fatalf("files = %v, %v; want one episode", files, err)
	}
	pairs, err := LoadEpisode(files[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 || pairs[0].Slot != 2 || pairs[1].Slot != 0 {
		t.Fatalf("pairs = %+v", pairs)
	}
	if pairs[1].Pixels[0] != 20 || len(pairs[1].Shape) != 3 || pairs[1].Shape[0] != side {
		t.Errorf("second state not kept: shape %v, first pixel %d", pairs[1].Shape, pairs[1].Pixels[0])
	}

	tr.Reset()
	if tr.Recorder.Len() != 0 {
		t.Error("reset should drop recorded decisions")
	}
}

func TestRecorderSkipsEmptyEpisodes(t *testing.T) {
	r := &Recorder{Dir: t.TempDir()}
	if path, err := r.Save(true, time.Unix(1, 0)); path != "" || err != nil {
		t.Errorf("empty episode: path %q, err %v", path, err)
	}
}
