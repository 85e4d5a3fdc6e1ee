// Package bc implements behaviour cloning with a diffusion policy.
//
// The policy is a denoising diffusion model over actions conditioned on
// the state. A noise model, here an MLP, is trained to predict the
// noise that the forward diffusion process added to dataset actions.
// Actions are sampled by running the reverse process from Gaussian
// noise. Actions are always sampled with a target copy of the noise
// model which tracks the trained model (see Config).
package bc

import (
	"math"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/bcrunner/dataset"
	"github.com/samuelfneumann/bcrunner/network"
	"github.com/samuelfneumann/bcrunner/solver"
	"github.com/samuelfneumann/bcrunner/utils/floatutils"
	"github.com/samuelfneumann/bcrunner/utils/op"
)

// CheckpointFile is the name of the file that Save writes
const CheckpointFile = "actor.gob"

// BC implements a diffusion policy behaviour cloning agent
type BC struct {
	config Config
	sched  *schedule

	init        G.InitWFn
	activations []*network.Activation
	steps       *rand.Rand    // Diffusion steps of training samples
	trainNoise  distuv.Normal // Forward process noise
	actNoise    distuv.Normal // Reverse process noise

	g         *G.ExprGraph
	net       *network.MLP
	target    *G.Node
	loss      *G.Node
	lossVal   G.Value
	vm        G.VM
	batchSize int
	solver    *solver.Solver

	ema     *network.Snapshot
	updates int
}

// New creates and returns a new diffusion policy behaviour cloning
// agent
func New(c Config, seed uint64) (*BC, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}

	sched, err := newSchedule(c.BetaSchedule, c.T)
	if err != nil {
		return nil, errors.Wrap(err, "new")
	}

	act, err := network.ParseActivation(c.Activation)
	if err != nil {
		return nil, errors.Wrap(err, "new")
	}
	activations := make([]*network.Activation, len(c.HiddenSizes))
	for i := range activations {
		activations[i] = act
	}

	opt, err := c.newSolver()
	if err != nil {
		return nil, errors.Wrap(err, "new")
	}

	b := &BC{
		config:      c,
		sched:       sched,
		init:        c.Init.Seeded(seed),
		activations: activations,
		steps:       rand.New(rand.NewSource(seed + 1)),
		trainNoise: distuv.Normal{
			Mu: 0, Sigma: 1, Src: rand.NewSource(seed + 2),
		},
		actNoise: distuv.Normal{
			Mu: 0, Sigma: 1, Src: rand.NewSource(seed + 3),
		},
		solver: opt,
	}

	if err := b.build(1, nil); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	if b.ema, err = b.net.Snapshot(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	return b, nil
}

// features returns the number of inputs to the noise model
func (b *BC) features() int {
	return b.config.ActionDim + b.config.TimeDim + b.config.StateDim
}

// build constructs the training graph for minibatches of batchSize
// samples. If weights is nil, the noise model is newly initialized.
func (b *BC) build(batchSize int, weights *network.Snapshot) error {
	if b.vm != nil {
		b.vm.Close()
	}

	g := G.NewGraph()
	input := G.NewMatrix(g, tensor.Float64,
		G.WithShape(batchSize, b.features()), G.WithName("input"),
		G.WithInit(G.Zeroes()))

	net, err := network.NewMLP(input, b.config.ActionDim,
		b.config.HiddenSizes, b.activations, b.init, "noise")
	if err != nil {
		return errors.Wrap(err, "build")
	}
	if weights != nil {
		if err := net.Set(weights); err != nil {
			return errors.Wrap(err, "build")
		}
	}

	target := G.NewMatrix(g, tensor.Float64,
		G.WithShape(batchSize, b.config.ActionDim), G.WithName("noise"),
		G.WithInit(G.Zeroes()))

	loss, err := op.MSE(net.Prediction(), target)
	if err != nil {
		return errors.Wrap(err, "build")
	}
	G.Read(loss, &b.lossVal)

	if _, err := G.Grad(loss, net.Learnables()...); err != nil {
		return errors.Wrap(err, "build: could not compute gradient")
	}

	b.g = g
	b.net = net
	b.target = target
	b.loss = loss
	b.batchSize = batchSize
	b.vm = G.NewTapeMachine(g, G.BindDualValues(net.Learnables()...))
	return nil
}

// Train implements the agent.Learner interface
func (b *BC) Train(s dataset.Sampler, iterations, batchSize int) error {
	if batchSize <= 0 {
		return errors.Errorf("train: batch size must be positive, got %v",
			batchSize)
	}
	if batchSize != b.batchSize {
		weights, err := b.net.Snapshot()
		if err != nil {
			return errors.Wrap(err, "train")
		}
		if err := b.build(batchSize, weights); err != nil {
			return errors.Wrap(err, "train")
		}
	}

	for i := 0; i < iterations; i++ {
		if err := b.step(s); err != nil {
			return errors.Wrapf(err, "train: iteration %d", i)
		}
	}
	return nil
}

// step performs a single update of the noise model
func (b *BC) step(s dataset.Sampler) error {
	batch, err := s.Sample(b.batchSize)
	if err != nil {
		return errors.Wrap(err, "step")
	}

	aDim, eDim := b.config.ActionDim, b.config.TimeDim
	features := b.features()
	input := make([]float64, b.batchSize*features)
	noise := make([]float64, b.batchSize*aDim)

	for i := 0; i < b.batchSize; i++ {
		t := b.steps.Intn(b.sched.steps())
		row := input[i*features : (i+1)*features]

		for j := 0; j < aDim; j++ {
			eps := b.trainNoise.Rand()
			noise[i*aDim+j] = eps
			row[j] = b.sched.sqrtAlphasCumprod[t]*batch.Actions.At(i, j) +
				b.sched.sqrtOneMinusAlphasCumprod[t]*eps
		}
		timeEmbedding(row[aDim:aDim+eDim], t)
		mat.Row(row[aDim+eDim:], i, batch.States)
	}

	inTensor := tensor.New(tensor.WithShape(b.batchSize, features),
		tensor.WithBacking(input))
	if err := G.Let(b.net.Input(), inTensor); err != nil {
		return errors.Wrap(err, "step: could not set input")
	}
	noiseTensor := tensor.New(tensor.WithShape(b.batchSize, aDim),
		tensor.WithBacking(noise))
	if err := G.Let(b.target, noiseTensor); err != nil {
		return errors.Wrap(err, "step: could not set target")
	}

	if err := b.vm.RunAll(); err != nil {
		return errors.Wrap(err, "step")
	}
	if err := b.solver.Step(b.net.Model()); err != nil {
		return errors.Wrap(err, "step: could not step solver")
	}
	b.vm.Reset()

	if loss := b.Loss(); math.IsNaN(loss) || math.IsInf(loss, 0) {
		return errors.Errorf("step: training diverged, loss %v", loss)
	}

	b.updates++
	if b.updates%b.config.EMAEvery == 0 {
		return b.updateTarget()
	}
	return nil
}

// updateTarget copies or Polyak averages the trained noise model into
// the target noise model
func (b *BC) updateTarget() error {
	weights, err := b.net.Snapshot()
	if err != nil {
		return errors.Wrap(err, "updateTarget")
	}

	if b.updates < b.config.EMAStart {
		b.ema = weights
		return nil
	}
	return b.ema.Polyak(weights, b.config.Tau)
}

// Loss returns the loss of the last update
func (b *BC) Loss() float64 {
	if b.lossVal == nil {
		return math.NaN()
	}
	return b.lossVal.Data().(float64)
}

// SampleAction implements the agent.Policy interface. Actions are
// sampled by running the reverse diffusion process with the target
// noise model, clipping denoised actions to the action bounds.
func (b *BC) SampleAction(state *mat.VecDense) (*mat.VecDense, error) {
	if state.Len() != b.config.StateDim {
		return nil, errors.Errorf("sampleAction: states should be "+
			"%d-dimensional, got %d", b.config.StateDim, state.Len())
	}

	aDim, eDim := b.config.ActionDim, b.config.TimeDim
	maxAction := b.config.MaxAction
	s := b.sched

	row := make([]float64, b.features())
	copy(row[aDim+eDim:], state.RawVector().Data)

	x := make([]float64, aDim)
	for j := range x {
		x[j] = b.actNoise.Rand()
	}

	for t := s.steps() - 1; t >= 0; t-- {
		copy(row[:aDim], x)
		timeEmbedding(row[aDim:aDim+eDim], t)

		eps, err := b.ema.Predict(mat.NewDense(1, len(row), row))
		if err != nil {
			return nil, errors.Wrap(err, "sampleAction")
		}

		for j := range x {
			x0 := s.sqrtRecipAlphasCumprod[t]*x[j] -
				s.sqrtRecipm1AlphasCumprod[t]*eps.At(0, j)
			x0 = floatutils.ClipSymmetric(x0, maxAction)

			mean := s.posteriorMeanCoefficientX0[t]*x0 +
				s.posteriorMeanCoefficientXt[t]*x[j]
			if t > 0 {
				std := math.Exp(0.5 * s.posteriorLogVarianceClip[t])
				mean += std * b.actNoise.Rand()
			}
			x[j] = mean
		}
	}

	floatutils.ClipAll(x, maxAction)
	return mat.NewVecDense(aDim, x), nil
}

// Save implements the agent.Saver interface. The target noise model
// is saved to CheckpointFile in dir.
func (b *BC) Save(dir string) error {
	return errors.Wrap(b.ema.Save(filepath.Join(dir, CheckpointFile)),
		"save")
}

// Load loads the target noise model from a checkpoint saved in dir
func (b *BC) Load(dir string) error {
	s, err := network.LoadSnapshot(filepath.Join(dir, CheckpointFile))
	if err != nil {
		return errors.Wrap(err, "load")
	}
	if s.Features() != b.features() || s.Outputs() != b.config.ActionDim {
		return errors.Errorf("load: checkpoint maps %d inputs to %d "+
			"outputs, want %d to %d", s.Features(), s.Outputs(),
			b.features(), b.config.ActionDim)
	}
	b.ema = s
	return nil
}

// Close closes the agent's VM
func (b *BC) Close() error {
	return b.vm.Close()
}
