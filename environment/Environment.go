// Package environment outlines the interfaces and structs needed to
// implement concrete environments that policies are evaluated in
package environment

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/bcrunner/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when an episode should end. If End returns true,
// the argument TimeStep has been modified to be the last in the episode.
type Ender interface {
	End(*ts.TimeStep) bool
}

// Scorer maps the raw return of an episode to a normalized score that
// is comparable across environments.
type Scorer interface {
	NormalizedScore(raw float64) (float64, error)
}

// Environment implements a simulated environment that a policy can be
// rolled out in.
//
// An Environment is seeded once after construction and then reset at
// the start of every episode. Step returns the next TimeStep and
// whether the episode has ended.
type Environment interface {
	Scorer
	Seed(seed uint64)
	Reset() (ts.TimeStep, error)
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)
	ObservationSpec() Spec
	ActionSpec() Spec
	Close() error
}
