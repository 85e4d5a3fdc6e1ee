package bc

import (
	"github.com/pkg/errors"

	"github.com/samuelfneumann/bcrunner/agent"
	"github.com/samuelfneumann/bcrunner/initwfn"
	"github.com/samuelfneumann/bcrunner/network"
	"github.com/samuelfneumann/bcrunner/solver"
)

// MLP is the only supported noise model
const MLP = "MLP"

func init() {
	agent.Register(agent.BC, Config{})
}

// Config implements a configuration of a diffusion policy behaviour
// cloning agent
type Config struct {
	agent.Base

	T            int          // Number of diffusion steps
	BetaSchedule ScheduleType // Noise schedule of the forward process
	Model        string       // Noise model

	HiddenSizes []int
	Activation  string
	Init        *initwfn.InitWFn
	TimeDim     int // Size of the diffusion step embedding

	// The target network is copied from the learning network every
	// EMAEvery updates until EMAStart updates have been performed,
	// after which it tracks the learning network with Polyak averaging
	// using Tau.
	EMAStart int
	EMAEvery int

	GradClip float64 // <= 0 if no clipping

	// Solver optimizes the noise model. If nil, Adam is used with the
	// shared LearningRate and GradClip.
	Solver *solver.Solver `json:",omitempty"`
}

// Default returns the default Config with the given options shared by
// all agents
func Default(base agent.Base) Config {
	return Config{
		Base:         base,
		T:            100,
		BetaSchedule: Linear,
		Model:        MLP,
		HiddenSizes:  []int{256, 256, 256},
		Activation:   "mish",
		Init:         initwfn.NewGlorotU(1.0),
		TimeDim:      16,
		EMAStart:     1000,
		EMAEvery:     5,
	}
}

// Type implements the agent.Config interface
func (c Config) Type() agent.Type {
	return agent.BC
}

// Configure implements the agent.Config interface
func (c Config) Configure(base agent.Base,
	hp agent.Hyperparameters) agent.Config {
	config := Default(base)
	if hp.T != 0 {
		config.T = hp.T
	}
	if hp.BetaSchedule != "" {
		config.BetaSchedule = ScheduleType(hp.BetaSchedule)
	}
	if hp.Model != "" {
		config.Model = hp.Model
	}
	return config
}

// Options implements the agent.Config interface
func (c Config) Options() agent.Base {
	return c.Base
}

// WithOptions implements the agent.Config interface
func (c Config) WithOptions(base agent.Base) agent.Config {
	c.Base = base
	return c
}

// Validate implements the agent.Config interface
func (c Config) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if c.T <= 0 {
		return errors.Errorf("T must be positive, got %v", c.T)
	}
	switch c.BetaSchedule {
	case Linear, Cosine, VP:
	default:
		return errors.Errorf("unknown beta schedule %q", c.BetaSchedule)
	}
	if c.Model != MLP {
		return errors.Errorf("unknown model %q", c.Model)
	}
	if _, err := network.ParseActivation(c.Activation); err != nil {
		return err
	}
	for _, size := range c.HiddenSizes {
		if size <= 0 {
			return errors.Errorf("hidden sizes must be positive, got %v",
				c.HiddenSizes)
		}
	}
	if c.TimeDim < 2 || c.TimeDim%2 != 0 {
		return errors.Errorf("time embedding size must be even and at "+
			"least 2, got %v", c.TimeDim)
	}
	if c.EMAEvery <= 0 || c.EMAStart < 0 {
		return errors.Errorf("illegal EMA schedule: start %v every %v",
			c.EMAStart, c.EMAEvery)
	}
	if c.Init == nil {
		return errors.New("no weight initializer")
	}
	if c.Solver != nil {
		if c.Solver.Config == nil {
			return errors.New("solver has no configuration")
		}
		if err := c.Solver.Validate(); err != nil {
			return errors.Wrap(err, "solver")
		}
	}
	return nil
}

// newSolver returns a solver with fresh state for a new agent
func (c Config) newSolver() (*solver.Solver, error) {
	if c.Solver != nil {
		return c.Solver.Clone(), nil
	}
	return solver.NewAdam(c.LearningRate, 1e-8, 0.9, 0.999, 1, c.GradClip)
}

// Create implements the agent.Config interface
func (c Config) Create(seed uint64) (agent.Agent, error) {
	return New(c, seed)
}
