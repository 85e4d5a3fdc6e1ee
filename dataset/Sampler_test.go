package dataset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSampleShapes(t *testing.T) {
	s, err := NewSampler(line(20), NoTune, 1)
	require.NoError(t, err)

	b, err := s.Sample(32)
	require.NoError(t, err)
	assert.Equal(t, 32, b.Size())

	r, c := b.States.Dims()
	assert.Equal(t, 32, r)
	assert.Equal(t, 2, c)
	_, c = b.Actions.Dims()
	assert.Equal(t, 1, c)

	// Each sampled row is a whole transition
	for i := 0; i < b.Size(); i++ {
		v := b.Rewards.AtVec(i)
		assert.Equal(t, v, b.States.At(i, 0))
		assert.Equal(t, v, b.States.At(i, 1))
		assert.Equal(t, v, b.Actions.At(i, 0))
		assert.Equal(t, v, b.NextStates.At(i, 1))
	}
}

func TestSampleWithReplacement(t *testing.T) {
	s, err := NewSampler(line(2), NoTune, 3)
	require.NoError(t, err)

	b, err := s.Sample(50)
	require.NoError(t, err)
	assert.Equal(t, 50, b.Size())
}

func TestSampleDeterministic(t *testing.T) {
	draw := func() []float64 {
		s, err := NewSampler(line(100), NoTune, 11)
		require.NoError(t, err)

		var rewards []float64
		for i := 0; i < 5; i++ {
			b, err := s.Sample(8)
			require.NoError(t, err)
			rewards = append(rewards, b.Rewards.RawVector().Data...)
		}
		return rewards
	}

	if diff := cmp.Diff(draw(), draw()); diff != "" {
		t.Errorf("same seed sampled differently (-first +second):\n%s", diff)
	}
}

func TestSampleErrors(t *testing.T) {
	_, err := NewSampler(New(2, 1), NoTune, 0)
	assert.True(t, IsEmptyDataset(err))

	_, err = NewSampler(line(5), RewardTune("bogus"), 0)
	assert.Error(t, err)

	s, err := NewSampler(line(5), NoTune, 0)
	require.NoError(t, err)
	_, err = s.Sample(0)
	assert.Error(t, err)
	assert.False(t, IsEmptyDataset(err))
}

func TestSamplerDoesNotModifyDataset(t *testing.T) {
	d := line(10)
	want := append([]float64(nil), d.Rewards...)

	_, err := NewSampler(d, CQLAntMaze, 0)
	require.NoError(t, err)
	assert.Equal(t, want, d.Rewards)
}

func TestCounter(t *testing.T) {
	s, err := NewSampler(line(10), NoTune, 0)
	require.NoError(t, err)

	calls := 0
	c := NewCounter(s, func() { calls++ })
	for i := 0; i < 4; i++ {
		_, err := c.Sample(2)
		require.NoError(t, err)
	}
	_, err = c.Sample(-1)
	assert.Error(t, err)

	assert.Equal(t, 4, calls)
}

func TestBatchSizeEmpty(t *testing.T) {
	assert.Equal(t, 0, Batch{}.Size())
	assert.Equal(t, 3, Batch{Rewards: mat.NewVecDense(3, nil)}.Size())
}
