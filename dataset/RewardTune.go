package dataset

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RewardTune is a transformation applied to the rewards of a dataset
// before sampling
type RewardTune string

const (
	NoTune        RewardTune = "no"
	Normalize     RewardTune = "normalize"
	IQLAntMaze    RewardTune = "iql_antmaze"
	IQLLocomotion RewardTune = "iql_locomotion"
	CQLAntMaze    RewardTune = "cql_antmaze"
	AntMaze       RewardTune = "antmaze"
)

// RewardTunes lists all the known reward tuning modes
func RewardTunes() []RewardTune {
	return []RewardTune{NoTune, Normalize, IQLAntMaze, IQLLocomotion,
		CQLAntMaze, AntMaze}
}

// ParseRewardTune converts a string into a RewardTune
func ParseRewardTune(s string) (RewardTune, error) {
	for _, t := range RewardTunes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownRewardTune, "%q", s)
}

// Apply returns the tuned rewards. The input slices are not modified.
// notDones marks trajectory boundaries with zeroes and is used by
// IQLLocomotion only.
func (r RewardTune) Apply(rewards, notDones []float64) ([]float64, error) {
	if len(rewards) == 0 {
		return nil, errors.Wrap(ErrEmptyDataset, string(r))
	}

	tuned := clone(rewards)
	switch r {
	case NoTune:

	case Normalize:
		mean, std := stat.MeanStdDev(tuned, nil)
		if std == 0 || math.IsNaN(std) {
			return nil, errors.Errorf("%s: rewards have zero variance", r)
		}
		floats.AddConst(-mean, tuned)
		floats.Scale(1/std, tuned)

	case IQLAntMaze:
		floats.AddConst(-1, tuned)

	case IQLLocomotion:
		returns := trajectoryReturns(rewards, notDones)
		if len(returns) == 0 {
			return nil, errors.Errorf("%s: dataset has no complete "+
				"trajectories", r)
		}
		spread := floats.Max(returns) - floats.Min(returns)
		if spread == 0 {
			return nil, errors.Errorf("%s: all trajectory returns equal %v",
				r, returns[0])
		}
		floats.Scale(1000/spread, tuned)

	case CQLAntMaze:
		floats.AddConst(-0.5, tuned)
		floats.Scale(4, tuned)

	case AntMaze:
		floats.AddConst(-0.25, tuned)
		floats.Scale(2, tuned)

	default:
		return nil, errors.Wrapf(ErrUnknownRewardTune, "%q", string(r))
	}
	return tuned, nil
}

// trajectoryReturns splits rewards into trajectories at terminal
// transitions and returns the return of each complete trajectory. A
// trailing incomplete trajectory is ignored.
func trajectoryReturns(rewards, notDones []float64) []float64 {
	var returns []float64
	var ret float64
	for i := range rewards {
		ret += rewards[i]
		if notDones[i] == 0 {
			returns = append(returns, ret)
			ret = 0
		}
	}
	return returns
}
