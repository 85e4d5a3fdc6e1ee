package experiment

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/bcrunner/agent"
	"github.com/samuelfneumann/bcrunner/environment"
	"github.com/samuelfneumann/bcrunner/experiment/tracker"
)

// SeedOffset is added to the experiment seed when seeding evaluation
// environments
const SeedOffset = 100

// DefaultMaxEpisodeSteps is the default limit on the length of an
// evaluation episode
const DefaultMaxEpisodeSteps = 100000

// ErrEpisodeLimit is returned when an evaluation episode does not end
// within the maximum number of steps
var ErrEpisodeLimit = errors.New("episode step limit exceeded")

// Evaluator evaluates policies by rolling them out in a freshly
// constructed environment
type Evaluator struct {
	// Make constructs the environment to evaluate in
	Make func(name string) (environment.Environment, error)

	// MaxEpisodeSteps limits the number of steps of each episode. If
	// zero, episodes are unlimited.
	MaxEpisodeSteps int
}

// NewEvaluator returns a new Evaluator which constructs environments
// from the environment registry
func NewEvaluator(maxEpisodeSteps int) *Evaluator {
	return &Evaluator{
		Make:            environment.Make,
		MaxEpisodeSteps: maxEpisodeSteps,
	}
}

// Evaluate runs p for the given number of episodes in a new
// environment envName seeded with seed + SeedOffset, and summarizes
// the returns.
//
// The average normalized score is the normalized score of the average
// return, while the standard deviation of normalized scores is taken
// over the normalized score of each return. Both standard deviations
// are population standard deviations.
//
// If any episode fails, no evaluation is returned.
func (e *Evaluator) Evaluate(p agent.Policy, envName string, seed uint64,
	episodes int) (tracker.Evaluation, error) {
	if episodes <= 0 {
		return tracker.Evaluation{}, errors.Errorf("evaluate: episodes "+
			"must be positive, got %v", episodes)
	}

	env, err := e.Make(envName)
	if err != nil {
		return tracker.Evaluation{}, errors.Wrap(err, "evaluate")
	}
	defer env.Close()

	// Fail before rolling out the policy if returns cannot be scored
	if _, err := env.NormalizedScore(0); err != nil {
		return tracker.Evaluation{}, errors.Wrap(err, "evaluate")
	}
	env.Seed(seed + SeedOffset)

	returns := make([]float64, episodes)
	for i := range returns {
		returns[i], err = e.episode(env, p)
		if err != nil {
			return tracker.Evaluation{}, errors.Wrapf(err, "evaluate: "+
				"episode %v", i)
		}
	}

	normScores := make([]float64, episodes)
	for i, r := range returns {
		if normScores[i], err = env.NormalizedScore(r); err != nil {
			return tracker.Evaluation{}, errors.Wrap(err, "evaluate")
		}
	}

	avg, std := popMeanStdDev(returns)
	avgNorm, err := env.NormalizedScore(avg)
	if err != nil {
		return tracker.Evaluation{}, errors.Wrap(err, "evaluate")
	}
	_, normStd := popMeanStdDev(normScores)

	return tracker.Evaluation{
		AvgReward:    avg,
		StdReward:    std,
		AvgNormScore: avgNorm,
		StdNormScore: normStd,
	}, nil
}

// popMeanStdDev returns the mean and population standard deviation
func popMeanStdDev(x []float64) (float64, float64) {
	return stat.Mean(x, nil), math.Sqrt(stat.Moment(2, x, nil))
}

// episode runs a single episode and returns the undiscounted return
func (e *Evaluator) episode(env environment.Environment,
	p agent.Policy) (float64, error) {
	step, err := env.Reset()
	if err != nil {
		return 0, err
	}

	var ret float64
	done := step.Last()
	for n := 0; !done; n++ {
		if e.MaxEpisodeSteps > 0 && n >= e.MaxEpisodeSteps {
			return 0, errors.Wrapf(ErrEpisodeLimit, "after %v steps", n)
		}

		action, err := p.SampleAction(step.Observation)
		if err != nil {
			return 0, errors.Wrap(err, "could not sample action")
		}

		step, done, err = env.Step(action)
		if err != nil {
			return 0, errors.Wrap(err, "could not step environment")
		}
		ret += step.Reward
		done = done || step.Last()
	}
	return ret, nil
}
