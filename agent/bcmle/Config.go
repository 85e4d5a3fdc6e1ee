package bcmle

import (
	"github.com/pkg/errors"

	"github.com/samuelfneumann/bcrunner/agent"
	"github.com/samuelfneumann/bcrunner/initwfn"
	"github.com/samuelfneumann/bcrunner/network"
	"github.com/samuelfneumann/bcrunner/solver"
)

func init() {
	agent.Register(agent.BCMLE, Config{})
}

// Config implements a configuration of a Gaussian maximum likelihood
// behaviour cloning agent
type Config struct {
	agent.Base

	HiddenSizes []int
	Activation  string
	Init        *initwfn.InitWFn

	// Bounds on the log standard deviation of the policy
	LogStdMin float64
	LogStdMax float64

	// The target network is copied from the learning network every
	// EMAEvery updates until EMAStart updates have been performed,
	// after which it tracks the learning network with Polyak averaging
	// using Tau.
	EMAStart int
	EMAEvery int

	GradClip float64 // <= 0 if no clipping

	// Solver optimizes the policy. If nil, Adam is used with the
	// shared LearningRate and GradClip.
	Solver *solver.Solver `json:",omitempty"`
}

// Default returns the default Config with the given options shared by
// all agents
func Default(base agent.Base) Config {
	return Config{
		Base:        base,
		HiddenSizes: []int{256, 256},
		Activation:  "relu",
		Init:        initwfn.NewGlorotU(1.0),
		LogStdMin:   -5,
		LogStdMax:   2,
		EMAStart:    1000,
		EMAEvery:    5,
	}
}

// Type implements the agent.Config interface
func (c Config) Type() agent.Type {
	return agent.BCMLE
}

// Configure implements the agent.Config interface. A Gaussian policy
// has no algorithm-specific options on the command line.
func (c Config) Configure(base agent.Base,
	_ agent.Hyperparameters) agent.Config {
	return Default(base)
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
	if _, err := network.ParseActivation(c.Activation); err != nil {
		return err
	}
	for _, size := range c.HiddenSizes {
		if size <= 0 {
			return errors.Errorf("hidden sizes must be positive, got %v",
				c.HiddenSizes)
		}
	}
	if c.LogStdMin >= c.LogStdMax {
		return errors.Errorf("log standard deviation bounds [%v, %v] are "+
			"empty", c.LogStdMin, c.LogStdMax)
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
