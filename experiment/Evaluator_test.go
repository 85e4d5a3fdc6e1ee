package experiment

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/bcrunner/environment"
	"github.com/samuelfneumann/bcrunner/experiment/tracker"
)

func TestEvaluateAggregation(t *testing.T) {
	maker := &fakeMaker{returns: []float64{10, 20, 30}}
	e := &Evaluator{Make: maker.Make}

	eval, err := e.Evaluate(newFakeAgent(0), "fake", 7, 3)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, eval.AvgReward, 1e-12)
	assert.InDelta(t, math.Sqrt(200.0/3), eval.StdReward, 1e-12)
	assert.InDelta(t, 0.2, eval.AvgNormScore, 1e-12)
	assert.InDelta(t, math.Sqrt(200.0/3)/100, eval.StdNormScore, 1e-12)
	assert.InDelta(t, 8.16496580927726, eval.StdReward, 1e-9)
	assert.InDelta(t, 0.0816496580927726, eval.StdNormScore, 1e-9)

	require.Len(t, maker.made, 1)
	assert.Equal(t, uint64(7+SeedOffset), maker.made[0].seed)
	assert.True(t, maker.made[0].closed)
}

func TestEvaluateFreshEnvironment(t *testing.T) {
	maker := &fakeMaker{returns: []float64{10, 20, 30}}
	e := &Evaluator{Make: maker.Make}

	first, err := e.Evaluate(newFakeAgent(0), "fake", 0, 2)
	require.NoError(t, err)
	second, err := e.Evaluate(newFakeAgent(0), "fake", 0, 2)
	require.NoError(t, err)

	// Each evaluation starts from the first episode of a new environment
	assert.Equal(t, first, second)
	assert.Len(t, maker.made, 2)
}

func TestEvaluateSingleEpisode(t *testing.T) {
	maker := &fakeMaker{returns: []float64{42}}
	e := &Evaluator{Make: maker.Make}

	eval, err := e.Evaluate(newFakeAgent(0), "fake", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, tracker.Evaluation{
		AvgReward:    42,
		AvgNormScore: 0.42,
	}, eval)
}

func TestEvaluateUnknownReference(t *testing.T) {
	env := &fakeEnv{returns: []float64{1}, noScore: true}
	e := &Evaluator{Make: func(string) (environment.Environment, error) {
		return env, nil
	}}

	a := newFakeAgent(0)
	_, err := e.Evaluate(a, "fake", 0, 5)
	assert.Error(t, err)
	assert.Zero(t, a.actions, "policy rolled out without a reference")
	assert.True(t, env.closed)
}

func TestEvaluateEpisodeLimit(t *testing.T) {
	env := &fakeEnv{endless: true}
	e := &Evaluator{
		Make: func(string) (environment.Environment, error) {
			return env, nil
		},
		MaxEpisodeSteps: 25,
	}

	a := newFakeAgent(0)
	_, err := e.Evaluate(a, "fake", 0, 1)
	assert.Equal(t, ErrEpisodeLimit, errors.Cause(err))
	assert.Equal(t, 25, a.actions)
}

func TestEvaluateMakeError(t *testing.T) {
	e := NewEvaluator(DefaultMaxEpisodeSteps)
	_, err := e.Evaluate(newFakeAgent(0), "no-such-env-v0", 0, 1)
	assert.True(t, errors.Is(err, environment.ErrUnknownEnvironment))
}

func TestEvaluateEpisodes(t *testing.T) {
	maker := &fakeMaker{returns: []float64{1}}
	e := &Evaluator{Make: maker.Make}
	_, err := e.Evaluate(newFakeAgent(0), "fake", 0, 0)
	assert.Error(t, err)
	assert.Empty(t, maker.made)
}
