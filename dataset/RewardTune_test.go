package dataset

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestRewardTunes(t *testing.T) {
	rewards := []float64{0, 1, 2, 3}
	notDones := []float64{1, 0, 1, 0}

	tests := []struct {
		tune RewardTune
		want []float64
	}{
		{NoTune, []float64{0, 1, 2, 3}},
		{IQLAntMaze, []float64{-1, 0, 1, 2}},
		{CQLAntMaze, []float64{-2, 2, 6, 10}},
		{AntMaze, []float64{-0.5, 1.5, 3.5, 5.5}},
		// Trajectory returns are 1 and 5
		{IQLLocomotion, []float64{0, 250, 500, 750}},
	}

	for _, test := range tests {
		got, err := test.tune.Apply(rewards, notDones)
		require.NoError(t, err, test.tune)
		assert.InDeltaSlice(t, test.want, got, 1e-12, string(test.tune))
	}
	assert.Equal(t, []float64{0, 1, 2, 3}, rewards)
}

func TestNormalizeTune(t *testing.T) {
	got, err := Normalize.Apply([]float64{1, 2, 3, 4, 10}, nil)
	require.NoError(t, err)

	mean, std := stat.MeanStdDev(got, nil)
	assert.InDelta(t, 0, mean, 1e-12)
	assert.InDelta(t, 1, std, 1e-12)

	_, err = Normalize.Apply([]float64{2, 2, 2}, nil)
	assert.Error(t, err)
}

func TestIQLLocomotionErrors(t *testing.T) {
	_, err := IQLLocomotion.Apply([]float64{1, 2}, []float64{1, 1})
	assert.Error(t, err, "no complete trajectories")

	_, err = IQLLocomotion.Apply([]float64{1, 1}, []float64{0, 0})
	assert.Error(t, err, "equal returns")
}

func TestParseRewardTune(t *testing.T) {
	for _, tune := range RewardTunes() {
		got, err := ParseRewardTune(string(tune))
		require.NoError(t, err)
		assert.Equal(t, tune, got)
	}

	_, err := ParseRewardTune("sparse")
	assert.Equal(t, ErrUnknownRewardTune, errors.Cause(err))

	_, err = NoTune.Apply(nil, nil)
	assert.True(t, IsEmptyDataset(err))
}
