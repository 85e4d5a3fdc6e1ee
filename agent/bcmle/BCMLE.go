// Package bcmle implements behaviour cloning with a Gaussian policy
// trained by maximum likelihood.
//
// An MLP maps states to the mean and log standard deviation of a
// diagonal Gaussian over actions. The log standard deviation is
// squashed into [LogStdMin, LogStdMax]. The policy acts greedily with
// respect to a target copy of the network, taking the clipped mean
// action.
package bcmle

import (
	"math"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
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

// MLE implements a Gaussian maximum likelihood behaviour cloning agent
type MLE struct {
	config      Config
	init        G.InitWFn
	activations []*network.Activation

	net       *network.MLP
	actions   *G.Node
	lossVal   G.Value
	vm        G.VM
	batchSize int
	solver    *solver.Solver

	ema     *network.Snapshot
	updates int
}

// New creates and returns a new Gaussian maximum likelihood behaviour
// cloning agent
func New(c Config, seed uint64) (*MLE, error) {
	if err := c.Validate(); err != nil {
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

	m := &MLE{
		config:      c,
		init:        c.Init.Seeded(seed),
		activations: activations,
		solver:      opt,
	}
	if err := m.build(1, nil); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	if m.ema, err = m.net.Snapshot(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	return m, nil
}

// build constructs the training graph for minibatches of batchSize
// samples. If weights is nil, the network is newly initialized.
func (m *MLE) build(batchSize int, weights *network.Snapshot) error {
	if m.vm != nil {
		m.vm.Close()
	}
	aDim := m.config.ActionDim

	g := G.NewGraph()
	states := G.NewMatrix(g, tensor.Float64,
		G.WithShape(batchSize, m.config.StateDim), G.WithName("states"),
		G.WithInit(G.Zeroes()))

	net, err := network.NewMLP(states, 2*aDim, m.config.HiddenSizes,
		m.activations, m.init, "policy")
	if err != nil {
		return errors.Wrap(err, "build")
	}
	if weights != nil {
		if err := net.Set(weights); err != nil {
			return errors.Wrap(err, "build")
		}
	}

	actions := G.NewMatrix(g, tensor.Float64,
		G.WithShape(batchSize, aDim), G.WithName("actions"),
		G.WithInit(G.Zeroes()))

	mean, err := op.Columns(net.Prediction(), 0, aDim)
	if err != nil {
		return errors.Wrap(err, "build")
	}
	logStd, err := op.Columns(net.Prediction(), aDim, 2*aDim)
	if err != nil {
		return errors.Wrap(err, "build")
	}
	logStd, err = op.Squash(logStd, m.config.LogStdMin, m.config.LogStdMax)
	if err != nil {
		return errors.Wrap(err, "build")
	}

	loss := G.Must(G.Mean(op.GaussianNLL(mean, logStd, actions)))
	G.Read(loss, &m.lossVal)

	if _, err := G.Grad(loss, net.Learnables()...); err != nil {
		return errors.Wrap(err, "build: could not compute gradient")
	}

	m.net = net
	m.actions = actions
	m.batchSize = batchSize
	m.vm = G.NewTapeMachine(g, G.BindDualValues(net.Learnables()...))
	return nil
}

// Train implements the agent.Learner interface
func (m *MLE) Train(s dataset.Sampler, iterations, batchSize int) error {
	if batchSize <= 0 {
		return errors.Errorf("train: batch size must be positive, got %v",
			batchSize)
	}
	if batchSize != m.batchSize {
		weights, err := m.net.Snapshot()
		if err != nil {
			return errors.Wrap(err, "train")
		}
		if err := m.build(batchSize, weights); err != nil {
			return errors.Wrap(err, "train")
		}
	}

	for i := 0; i < iterations; i++ {
		if err := m.step(s); err != nil {
			return errors.Wrapf(err, "train: iteration %d", i)
		}
	}
	return nil
}

// step performs a single update of the policy network
func (m *MLE) step(s dataset.Sampler) error {
	batch, err := s.Sample(m.batchSize)
	if err != nil {
		return errors.Wrap(err, "step")
	}

	states := mat.DenseCopyOf(batch.States).RawMatrix().Data
	statesTensor := tensor.New(
		tensor.WithShape(m.batchSize, m.config.StateDim),
		tensor.WithBacking(states))
	if err := G.Let(m.net.Input(), statesTensor); err != nil {
		return errors.Wrap(err, "step: could not set states")
	}

	actions := mat.DenseCopyOf(batch.Actions).RawMatrix().Data
	actionsTensor := tensor.New(
		tensor.WithShape(m.batchSize, m.config.ActionDim),
		tensor.WithBacking(actions))
	if err := G.Let(m.actions, actionsTensor); err != nil {
		return errors.Wrap(err, "step: could not set actions")
	}

	if err := m.vm.RunAll(); err != nil {
		return errors.Wrap(err, "step")
	}
	if err := m.solver.Step(m.net.Model()); err != nil {
		return errors.Wrap(err, "step: could not step solver")
	}
	m.vm.Reset()

	if loss := m.Loss(); math.IsNaN(loss) || math.IsInf(loss, 0) {
		return errors.Errorf("step: training diverged, loss %v", loss)
	}

	m.updates++
	if m.updates%m.config.EMAEvery == 0 {
		weights, err := m.net.Snapshot()
		if err != nil {
			return errors.Wrap(err, "step")
		}
		if m.updates < m.config.EMAStart {
			m.ema = weights
			return nil
		}
		return m.ema.Polyak(weights, m.config.Tau)
	}
	return nil
}

// Loss returns the negative log-likelihood of the last update
func (m *MLE) Loss() float64 {
	if m.lossVal == nil {
		return math.NaN()
	}
	return m.lossVal.Data().(float64)
}

// SampleAction implements the agent.Policy interface
func (m *MLE) SampleAction(state *mat.VecDense) (*mat.VecDense, error) {
	if state.Len() != m.config.StateDim {
		return nil, errors.Errorf("sampleAction: states should be "+
			"%d-dimensional, got %d", m.config.StateDim, state.Len())
	}

	out, err := m.ema.Predict(state.T())
	if err != nil {
		return nil, errors.Wrap(err, "sampleAction")
	}

	action := mat.Row(nil, 0, out)
	floatutils.ClipAll(action, m.config.MaxAction)
	return mat.NewVecDense(len(action), action), nil
}

// Save implements the agent.Saver interface. The target network is
// saved to CheckpointFile in dir.
func (m *MLE) Save(dir string) error {
	return errors.Wrap(m.ema.Save(filepath.Join(dir, CheckpointFile)),
		"save")
}

// Close closes the agent's VM
func (m *MLE) Close() error {
	return m.vm.Close()
}
