package agent

import (
	"math"

	"github.com/pkg/errors"
)

// Config represents a configuration for creating an agent
type Config interface {
	// Create creates the agent that the config describes
	Create(seed uint64) (Agent, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent the Config creates
	Type() Type

	// Configure returns a copy of the Config with the options shared
	// by all agents set to base and its algorithm-specific options set
	// from hp. Options that hp does not describe keep their defaults.
	Configure(base Base, hp Hyperparameters) Config

	// Options returns the options shared by all agents
	Options() Base

	// WithOptions returns a copy of the Config with the options shared
	// by all agents set to base. All other options are unchanged.
	WithOptions(base Base) Config
}

// Base is the bundle of options shared by every agent type
type Base struct {
	StateDim     int
	ActionDim    int
	MaxAction    float64
	Device       string
	Discount     float64
	Tau          float64
	LearningRate float64
}

// Validate returns an error if the options are illegal
func (b Base) Validate() error {
	switch {
	case b.StateDim <= 0:
		return errors.Errorf("state dimension must be positive, got %v",
			b.StateDim)
	case b.ActionDim <= 0:
		return errors.Errorf("action dimension must be positive, got %v",
			b.ActionDim)
	case b.MaxAction <= 0 || math.IsInf(b.MaxAction, 0):
		return errors.Errorf("max action must be positive and finite, "+
			"got %v", b.MaxAction)
	case b.Discount < 0 || b.Discount > 1:
		return errors.Errorf("discount must be in [0, 1], got %v",
			b.Discount)
	case b.Tau <= 0 || b.Tau > 1:
		return errors.Errorf("tau must be in (0, 1], got %v", b.Tau)
	case b.LearningRate <= 0:
		return errors.Errorf("learning rate must be positive, got %v",
			b.LearningRate)
	}
	return nil
}

// Hyperparameters are the algorithm-specific options set on the
// command line. Each agent type reads the subset it uses.
type Hyperparameters struct {
	// Diffusion
	T            int
	BetaSchedule string
	Model        string

	// Sample matching
	NumSamplesMatch int
	MMDSigma        float64
	WGamma          float64
}
