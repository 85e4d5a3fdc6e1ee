// Package gym provides access to OpenAI Gym environments, including
// the D4RL suites, through GoGym.
//
// All environments only work with their default tasks and episode
// cutoffs. Every D4RL environment family with reference scores in
// package score is registered with the environment package, so that
// e.g. environment.Make("hopper-medium-v2") returns a GymEnv. D4RL
// environments must be registered with Gym in the Python interpreter
// that GoGym embeds.
//
// This is made possible through the Go bindings for OpenAI Gym,
// found at https://github.com/samuelfneumann/GoGym.
package gym

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/gogym"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/bcrunner/environment"
	"github.com/samuelfneumann/bcrunner/environment/score"
	ts "github.com/samuelfneumann/bcrunner/timestep"
)

// made is set once any GoGym environment has been created
var made int32

func init() {
	maker := func(name string) (env.Environment, error) {
		return New(name, 1.0)
	}
	for _, family := range score.D4RLFamilies() {
		env.RegisterPrefix(family+"-", maker)
	}
}

// GymEnv implements access to an OpenAI Gym environment using GoGym
type GymEnv struct {
	gogym.Environment

	name        string
	ref         score.Reference
	currentStep ts.TimeStep
	discount    float64
}

// New returns a new GymEnv with the given name, which must be a legal
// name from the OpenAI Gym suite with registered reference scores.
// The environment must be reset before it is stepped.
func New(name string, discount float64) (*GymEnv, error) {
	ref, err := score.Lookup(name)
	if err != nil {
		return nil, errors.Wrap(err, "new")
	}

	goGymEnv, err := gogym.Make(name)
	if err != nil {
		return nil, errors.Wrapf(err, "new: could not create environment "+
			"%s", name)
	}
	atomic.StoreInt32(&made, 1)

	return &GymEnv{
		Environment: goGymEnv,
		name:        name,
		ref:         ref,
		discount:    discount,
	}, nil
}

// Seed seeds the environment
func (g *GymEnv) Seed(seed uint64) {
	g.Environment.Seed(int(seed))
}

// Step takes a single environmental step. Episodes which Gym reports
// as done are treated as terminated.
func (g *GymEnv) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	obs, reward, done, err := g.Environment.Step(a)
	if err != nil {
		return ts.TimeStep{}, true, errors.Wrap(err, "step: could not "+
			"step GoGym environment")
	}

	t := ts.New(ts.Mid, reward, g.discount, obs, g.currentStep.Number+1)
	if done {
		t.StepType = ts.Last
		t.Discount = 0
	}
	g.currentStep = t

	return t, done, nil
}

// Reset resets the environment to some starting state
func (g *GymEnv) Reset() (ts.TimeStep, error) {
	obs, err := g.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, errors.Wrap(err, "reset: could not reset "+
			"environment")
	}

	t := ts.New(ts.First, 0, g.discount, obs, 0)
	g.currentStep = t

	return t, nil
}

// NormalizedScore returns the D4RL normalized score of a raw return
func (g *GymEnv) NormalizedScore(raw float64) (float64, error) {
	return g.ref.Normalize(raw), nil
}

// ObservationSpec returns the observation spec of the environment
func (g *GymEnv) ObservationSpec() env.Spec {
	low, high := bounds(g.ObservationSpace())
	shape := mat.NewVecDense(low.Len(), nil)

	return env.NewSpec(shape, env.Observation, low, high, env.Continuous)
}

// ActionSpec returns the action specification of the environment
func (g *GymEnv) ActionSpec() env.Spec {
	low, high := bounds(g.ActionSpace())
	shape := mat.NewVecDense(low.Len(), nil)

	return env.NewSpec(shape, env.Action, low, high, env.Continuous)
}

// Close performs resource cleanup after the environment is no longer
// needed
func (g *GymEnv) Close() error {
	g.Environment.Close()
	return nil
}

// String returns the name of the environment
func (g *GymEnv) String() string {
	return g.name
}

// Shutdown finalizes the Python interpreter if any GymEnv was created.
// No GymEnv may be created after Shutdown is called.
func Shutdown() {
	if atomic.LoadInt32(&made) == 1 {
		gogym.Close()
	}
}

// space is satisfied by GoGym's spaces
type space interface {
	Low() []*mat.VecDense
	High() []*mat.VecDense
}

func bounds[S space](s S) (*mat.VecDense, *mat.VecDense) {
	switch any(s).(type) {
	case *gogym.BoxSpace, *gogym.DiscreteSpace:
		return s.Low()[0], s.High()[0]
	default:
		panic("bounds: invalid space type, package gym supports only " +
			"GoGym's BoxSpace or DiscreteSpace")
	}
}
