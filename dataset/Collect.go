package dataset

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/samuelfneumann/bcrunner/environment"
	ts "github.com/samuelfneumann/bcrunner/timestep"
)

// Policy selects actions in states
type Policy interface {
	SampleAction(state *mat.VecDense) (*mat.VecDense, error)
}

// UniformPolicy selects actions uniformly at random within the bounds
// of an action specification
type UniformPolicy struct {
	dist *distmv.Uniform
}

// NewUniformPolicy returns a new UniformPolicy over the bounds of an
// action specification
func NewUniformPolicy(spec environment.Spec, seed uint64) *UniformPolicy {
	bounds := make([]r1.Interval, spec.Dims())
	for i := range bounds {
		bounds[i] = r1.Interval{
			Min: spec.LowerBound.AtVec(i),
			Max: spec.UpperBound.AtVec(i),
		}
	}

	source := rand.NewSource(seed)
	return &UniformPolicy{dist: distmv.NewUniform(bounds, source)}
}

// SampleAction implements the Policy interface
func (u *UniformPolicy) SampleAction(*mat.VecDense) (*mat.VecDense, error) {
	action := u.dist.Rand(nil)
	return mat.NewVecDense(len(action), action), nil
}

// Collect rolls out a policy in an environment for a number of steps
// and returns the transitions seen as a new Dataset. Episodes which
// are cut off by the environment are not marked as terminal.
func Collect(env environment.Environment, p Policy, steps int) (*Dataset,
	error) {
	if steps <= 0 {
		return nil, errors.Errorf("collect: steps must be positive, got %v",
			steps)
	}

	d := New(env.ObservationSpec().Dims(), env.ActionSpec().Dims())

	step, err := env.Reset()
	if err != nil {
		return nil, errors.Wrap(err, "collect: could not reset environment")
	}

	for i := 0; i < steps; i++ {
		action, err := p.SampleAction(step.Observation)
		if err != nil {
			return nil, errors.Wrapf(err, "collect: step %d", i)
		}

		next, last, err := env.Step(action)
		if err != nil {
			return nil, errors.Wrapf(err, "collect: step %d", i)
		}

		if err := d.Add(ts.NewTransition(step, action, next)); err != nil {
			return nil, errors.Wrap(err, "collect")
		}

		step = next
		if last {
			step, err = env.Reset()
			if err != nil {
				return nil, errors.Wrap(err, "collect: could not reset "+
					"environment")
			}
		}
	}
	return d, nil
}
