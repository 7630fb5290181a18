package dqn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

const (
	poolSize    = 4
	kernel      = 3
	filters     = 8
	hidden      = 64
	maxPoolSize = 2
)

var ErrShape = errors.New("dqn: state shape does not match network input")

var dt = tensor.Float32

// Network is a small convolutional Q-value approximator:
// avgpool 4 -> conv 3x3 (8, relu) -> maxpool 2 -> dense 64 (relu) -> dense actions.
// States are HxWx3 pixels; channels are scaled to [0, 1] on input.
//
// One expression graph is built per batch size. All graphs share the weight
// tensors, so a solver step on the training graph is seen by every other one.
type Network struct {
	H, W, C int
	Actions int

	mh, mw int // after max pooling
	flat   int

	convW, convB *tensor.Dense // filters x C x k x k, 1 x filters x 1 x 1
	fc1W, fc1B   *tensor.Dense // flat x hidden, 1 x hidden
	fc2W, fc2B   *tensor.Dense // hidden x actions, 1 x actions
	pool         *tensor.Dense // fixed averaging filter, C x C x pool x pool

	solver *G.AdamSolver
	eval   map[int]*graph
	train  map[int]*graph
}

type graph struct {
	g      *G.ExprGraph
	x      *G.Node
	params G.Nodes
	q      *G.Node
	qVal   G.Value

	// training graphs only
	target, mask *G.Node
	cost         *G.Node

	vm G.VM
}

// NewNetwork builds a network with He-initialised weights trained by Adam with
// learning rate lr. Inputs must be large enough to survive pooling and convolution.
func NewNetwork(h, w, c, actions int, lr float64, rng *rand.Rand) (*Network, error) {
	n := &Network{H: h, W: w, C: c, Actions: actions}
	ph, pw := h/poolSize, w/poolSize
	ch, cw := ph-kernel+1, pw-kernel+1
	n.mh, n.mw = ch/maxPoolSize, cw/maxPoolSize
	n.flat = n.mh * n.mw * filters
	if n.mh < 1 || n.mw < 1 || actions < 1 {
		return nil, fmt.Errorf("dqn: input %dx%d too small for %d actions", h, w, actions)
	}

	n.convW = heDense(rng, kernel*kernel*c, filters, c, kernel, kernel)
	n.convB = zeroDense(1, filters, 1, 1)
	n.fc1W = heDense(rng, n.flat, n.flat, hidden)
	n.fc1B = zeroDense(1, hidden)
	n.fc2W = heDense(rng, hidden, hidden, actions)
	n.fc2B = zeroDense(1, actions)

	n.pool = zeroDense(c, c, poolSize, poolSize)
	pool := data(n.pool)
	area := poolSize * poolSize
	for k := 0; k < c; k++ {
		at := (k*c + k) * area
		for i := 0; i < area; i++ {
			pool[at+i] = 1 / float32(area)
		}
	}

	n.solver = G.NewAdamSolver(G.WithLearnRate(lr))
	n.eval = map[int]*graph{}
	n.train = map[int]*graph{}
	return n, nil
}

func heDense(rng *rand.Rand, fanIn int, shape ...int) *tensor.Dense {
	size := 1
	for _, s := range shape {
		size *= s
	}
	std := math.Sqrt(2 / float64(fanIn))
	backing := make([]float32, size)
	for i := range backing {
		backing[i] = float32(rng.NormFloat64() * std)
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(backing))
}

func zeroDense(shape ...int) *tensor.Dense {
	return tensor.New(tensor.Of(dt), tensor.WithShape(shape...))
}

func data(t *tensor.Dense) []float32 {
	return t.Data().([]float32)
}

// params lists weights in a fixed order used by the solver and persistence.
func (n *Network) params() []*tensor.Dense {
	return []*tensor.Dense{n.convW, n.convB, n.fc1W, n.fc1B, n.fc2W, n.fc2B}
}

var paramNames = []string{"convW", "convB", "fc1W", "fc1B", "fc2W", "fc2B"}

// CopyFrom overwrites the weights with those of src. Both must share a shape.
func (n *Network) CopyFrom(src *Network) {
	dst := n.params()
	for i, p := range src.params() {
		copy(data(dst[i]), data(p))
	}
}

func (n *Network) build(batch int, training bool) (gr *graph, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dqn: build graph for batch %d: %v", batch, r)
		}
	}()

	g := G.NewGraph()
	gr = &graph{g: g}
	gr.x = G.NewTensor(g, dt, 4, G.WithShape(batch, n.C, n.H, n.W), G.WithName("x"))
	for i, p := range n.params() {
		gr.params = append(gr.params,
			G.NewTensor(g, dt, p.Dims(), G.WithShape(p.Shape()...), G.WithName(paramNames[i]), G.WithValue(p)))
	}
	pool := G.NewTensor(g, dt, 4, G.WithShape(n.pool.Shape()...), G.WithName("pool"), G.WithValue(n.pool))
	convW, convB, fc1W, fc1B, fc2W, fc2B := gr.params[0], gr.params[1], gr.params[2], gr.params[3], gr.params[4], gr.params[5]

	pooled := G.Must(G.Conv2d(gr.x, pool, tensor.Shape{poolSize, poolSize}, []int{0, 0}, []int{poolSize, poolSize}, []int{1, 1}))
	conv := G.Must(G.Conv2d(pooled, convW, tensor.Shape{kernel, kernel}, []int{0, 0}, []int{1, 1}, []int{1, 1}))
	conv = G.Must(G.Rectify(G.Must(G.BroadcastAdd(conv, convB, nil, []byte{0, 2, 3}))))
	maxed := G.Must(G.MaxPool2D(conv, tensor.Shape{maxPoolSize, maxPoolSize}, []int{0, 0}, []int{maxPoolSize, maxPoolSize}))
	flat := G.Must(G.Reshape(maxed, tensor.Shape{batch, n.flat}))

	h := G.Must(G.Mul(flat, fc1W))
	h = G.Must(G.Rectify(G.Must(G.BroadcastAdd(h, fc1B, nil, []byte{0}))))
	gr.q = G.Must(G.BroadcastAdd(G.Must(G.Mul(h, fc2W)), fc2B, nil, []byte{0}))
	G.Read(gr.q, &gr.qVal)

	if !training {
		gr.vm = G.NewTapeMachine(g)
		return gr, nil
	}

	// The loss is half the squared error on the masked cells, averaged over the
	// batch. Targets arrive already clipped, which turns it into a Huber gradient.
	gr.target = G.NewMatrix(g, dt, G.WithShape(batch, n.Actions), G.WithName("target"))
	gr.mask = G.NewMatrix(g, dt, G.WithShape(batch, n.Actions), G.WithName("mask"))
	sq := G.Must(G.Square(G.Must(G.Sub(gr.q, gr.target))))
	sum := G.Must(G.Sum(G.Must(G.HadamardProd(sq, gr.mask))))
	gr.cost = G.Must(G.Div(sum, G.NewConstant(float32(2*batch))))
	if _, err = G.Grad(gr.cost, gr.params...); err != nil {
		return nil, fmt.Errorf("dqn: gradient graph: %w", err)
	}
	gr.vm = G.NewTapeMachine(g, G.BindDualValues(gr.params...))
	return gr, nil
}

func (n *Network) graphFor(cache map[int]*graph, batch int, training bool) (*graph, error) {
	if gr, ok := cache[batch]; ok {
		return gr, nil
	}
	gr, err := n.build(batch, training)
	if err != nil {
		return nil, err
	}
	cache[batch] = gr
	return gr, nil
}

func (n *Network) checkShape(state *tensor.Dense) error {
	shape := state.Shape()
	if len(shape) != 3 || shape[0] != n.H || shape[1] != n.W || shape[2] != n.C {
		return fmt.Errorf("%w: got %v", ErrShape, shape)
	}
	return nil
}

// Input stacks HxWxC states into one normalised NxCxHxW batch.
func (n *Network) Input(states []*tensor.Dense) (*tensor.Dense, error) {
	plane := n.H * n.W
	size := n.C * plane
	backing := make([]float32, len(states)*size)
	for b, s := range states {
		if err := n.checkShape(s); err != nil {
			return nil, err
		}
		out := backing[b*size : (b+1)*size]
		switch d := s.Data().(type) {
		case []uint8:
			for i, v := range d {
				out[(i%n.C)*plane+i/n.C] = float32(v) / 255
			}
		case []float32:
			for i, v := range d {
				out[(i%n.C)*plane+i/n.C] = v
			}
		default:
			return nil, fmt.Errorf("%w: unsupported dtype %v", ErrShape, s.Dtype())
		}
	}
	return tensor.New(tensor.WithShape(len(states), n.C, n.H, n.W), tensor.WithBacking(backing)), nil
}

// Predict returns the Q value of every action for the state.
func (n *Network) Predict(state *tensor.Dense) ([]float32, error) {
	q, err := n.PredictBatch([]*tensor.Dense{state})
	if err != nil {
		return nil, err
	}
	return q[0], nil
}

// PredictBatch returns one row of Q values per state.
func (n *Network) PredictBatch(states []*tensor.Dense) ([][]float32, error) {
	x, err := n.Input(states)
	if err != nil {
		return nil, err
	}
	return n.predict(x, len(states))
}

func (n *Network) predict(x *tensor.Dense, batch int) ([][]float32, error) {
	gr, err := n.graphFor(n.eval, batch, false)
	if err != nil {
		return nil, err
	}
	defer gr.vm.Reset()
	if err := G.Let(gr.x, x); err != nil {
		return nil, err
	}
	if err := gr.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("dqn: forward: %w", err)
	}

	q := gr.qVal.Data().([]float32)
	rows := make([][]float32, batch)
	for i := range rows {
		rows[i] = append([]float32(nil), q[i*n.Actions:(i+1)*n.Actions]...)
	}
	return rows, nil
}

// Fit takes one Adam step toward targets on the taken actions and returns the
// mean Huber loss before the step.
func (n *Network) Fit(states []*tensor.Dense, actions []int, targets []float64) (float64, error) {
	loss, gr, err := n.backprop(states, actions, targets)
	if err != nil {
		return 0, err
	}
	defer gr.vm.Reset()
	if err := n.solver.Step(G.NodesToValueGrads(gr.params)); err != nil {
		return 0, fmt.Errorf("dqn: adam step: %w", err)
	}
	return loss, nil
}

// backprop runs the training graph, leaving gradients on its parameter nodes.
// The caller resets the machine.
func (n *Network) backprop(states []*tensor.Dense, actions []int, targets []float64) (float64, *graph, error) {
	if len(actions) != len(states) || len(targets) != len(states) {
		return 0, nil, fmt.Errorf("dqn: %d states, %d actions, %d targets", len(states), len(actions), len(targets))
	}
	batch := len(states)
	x, err := n.Input(states)
	if err != nil {
		return 0, nil, err
	}
	q, err := n.predict(x, batch)
	if err != nil {
		return 0, nil, err
	}

	y := make([]float32, batch*n.Actions)
	mask := make([]float32, batch*n.Actions)
	var loss float64
	for i, a := range actions {
		if a < 0 || a >= n.Actions {
			return 0, nil, fmt.Errorf("dqn: action %d out of range", a)
		}
		copy(y[i*n.Actions:], q[i])
		d := float64(q[i][a]) - targets[i]
		loss += huber(d)
		y[i*n.Actions+a] = q[i][a] - float32(math.Max(-1, math.Min(1, d)))
		mask[i*n.Actions+a] = 1
	}

	gr, err := n.graphFor(n.train, batch, true)
	if err != nil {
		return 0, nil, err
	}
	lets := []struct {
		node *G.Node
		val  *tensor.Dense
	}{
		{gr.x, x},
		{gr.target, tensor.New(tensor.WithShape(batch, n.Actions), tensor.WithBacking(y))},
		{gr.mask, tensor.New(tensor.WithShape(batch, n.Actions), tensor.WithBacking(mask))},
	}
	for _, l := range lets {
		if err := G.Let(l.node, l.val); err != nil {
			return 0, nil, err
		}
	}
	if err := gr.vm.RunAll(); err != nil {
		gr.vm.Reset()
		return 0, nil, fmt.Errorf("dqn: backward: %w", err)
	}
	return loss / float64(batch), gr, nil
}

// grads copies the gradients left by backprop, in params order.
func (gr *graph) grads() ([][]float32, error) {
	out := make([][]float32, len(gr.params))
	for i, p := range gr.params {
		g, err := p.Grad()
		if err != nil {
			return nil, err
		}
		out[i] = append([]float32(nil), g.Data().([]float32)...)
	}
	return out, nil
}

func huber(d float64) float64 {
	if math.Abs(d) <= 1 {
		return 0.5 * d * d
	}
	return math.Abs(d) - 0.5
}
