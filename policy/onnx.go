package policy

import (
	"fmt"
	"math/rand"
	"sync"

	log "bitbucket.org/aisee/minilog"
	gonnx "github.com/advancedclimatesystems/gonnx"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

// Tensor names of exported policy models.
const (
	OnnxInput  = "state"
	OnnxOutput = "q_values"
)

// OnnxChooser plays greedily with a network exported to ONNX. States are fed as
// a (1, H, W, 3) float32 batch scaled to [0, 1].
type OnnxChooser struct {
	model *gonnx.Model
	slots int
	rng   *rand.Rand
	mu    sync.Mutex
}

func NewOnnxChooser(path string, slots int, rng *rand.Rand) (*OnnxChooser, error) {
	model, err := gonnx.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: load onnx model %s: %w", path, err)
	}
	return &OnnxChooser{model: model, slots: slots, rng: rng}, nil
}

// Choose falls back to a random slot when inference fails.
func (c *OnnxChooser) Choose(state *tensor.Dense) int {
	q, err := c.run(state)
	if err != nil || len(q) == 0 {
		log.Error("ONNX inference failed:", err)
		return c.rng.Intn(c.slots)
	}
	if len(q) > c.slots {
		q = q[:c.slots]
	}
	return floats.MaxIdx(q)
}

func (c *OnnxChooser) run(state *tensor.Dense) ([]float64, error) {
	input, err := batch(state)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	outputs, err := c.model.Run(gonnx.Tensors{OnnxInput: input})
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("policy: onnx run: %w", err)
	}

	out, ok := outputs[OnnxOutput]
	if !ok {
		return nil, fmt.Errorf("policy: output %q not found", OnnxOutput)
	}
	return toFloat64(out.Data())
}

// batch converts an (H, W, 3) pixel tensor into a normalised (1, H, W, 3) batch.
func batch(state *tensor.Dense) (*tensor.Dense, error) {
	shape := state.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("policy: state shape %v, want (H, W, C)", shape)
	}
	var backing []float32
	switch d := state.Data().(type) {
	case []uint8:
		backing = make([]float32, len(d))
		for i, v := range d {
			backing[i] = float32(v) / 255
		}
	case []float32:
		backing = d
	default:
		return nil, fmt.Errorf("policy: unsupported state dtype %v", state.Dtype())
	}
	return tensor.New(
		tensor.WithShape(1, shape[0], shape[1], shape[2]),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(backing),
	), nil
}

func toFloat64(data interface{}) ([]float64, error) {
	switch d := data.(type) {
	case []float32:
		out := make([]float64, len(d))
		for i, v := range d {
			out[i] = float64(v)
		}
		return out, nil
	case []float64:
		return d, nil
	default:
		return nil, fmt.Errorf("policy: unexpected output type %T", data)
	}
}
