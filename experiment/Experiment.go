// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"

	"github.com/pkg/errors"
)

// Experiment outlines structs that can run experiments. Run runs the
// experiment until completion, returning early with an error if ctx is
// cancelled.
type Experiment interface {
	Run(ctx context.Context) error
}

// Config represents a configuration of an offline experiment.
//
// The agent is trained for NumEpochs epochs of StepsPerEpoch minibatch
// updates each, and is evaluated for EvalEpisodes episodes in the
// environment EnvName every EvalFreq epochs.
type Config struct {
	EnvName       string
	Seed          uint64
	NumEpochs     int
	StepsPerEpoch int
	EvalFreq      int
	EvalEpisodes  int
	BatchSize     int
}

// Validate returns an error if the Config is invalid
func (c Config) Validate() error {
	switch {
	case c.EnvName == "":
		return errors.New("validate: no environment name")
	case c.NumEpochs <= 0:
		return errors.Errorf("validate: NumEpochs must be positive, got %v",
			c.NumEpochs)
	case c.StepsPerEpoch <= 0:
		return errors.Errorf("validate: StepsPerEpoch must be positive, "+
			"got %v", c.StepsPerEpoch)
	case c.EvalFreq <= 0:
		return errors.Errorf("validate: EvalFreq must be positive, got %v",
			c.EvalFreq)
	case c.EvalEpisodes <= 0:
		return errors.Errorf("validate: EvalEpisodes must be positive, "+
			"got %v", c.EvalEpisodes)
	case c.BatchSize <= 0:
		return errors.Errorf("validate: BatchSize must be positive, got %v",
			c.BatchSize)
	}
	return nil
}

// Cycles returns the number of train/evaluate cycles that an
// experiment with this Config runs for
func (c Config) Cycles() int {
	return (c.NumEpochs + c.EvalFreq - 1) / c.EvalFreq
}

// Overshoot returns the number of epochs trained past NumEpochs, which
// is non-zero when NumEpochs is not a multiple of EvalFreq
func (c Config) Overshoot() int {
	return c.Cycles()*c.EvalFreq - c.NumEpochs
}
