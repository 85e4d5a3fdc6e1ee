package score_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/bcrunner/environment/score"
)

func TestLookupFamilies(t *testing.T) {
	tests := []struct {
		name string
		want score.Reference
	}{
		{"walker2d-expert-v2", score.Reference{Min: 1.629008, Max: 4592.3}},
		{"hopper-medium-replay-v2", score.Reference{Min: -20.272305, Max: 3234.3}},
		{"antmaze-umaze-diverse-v0", score.Reference{Min: 0, Max: 1}},
		{"ant-random-v2", score.Reference{Min: -325.6, Max: 3879.7}},
		{"maze2d-umaze-v1", score.Reference{Min: 23.85, Max: 161.86}},
	}

	for _, test := range tests {
		ref, err := score.Lookup(test.name)
		require.NoError(t, err, test.name)
		assert.Equal(t, test.want, ref, test.name)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := score.Lookup("cartpole-v1")
	require.Error(t, err)
	assert.True(t, score.IsUnknownEnvironment(err))

	// A family name must be followed by a dash to match
	_, err = score.Lookup("hoppers-medium-v2")
	assert.True(t, score.IsUnknownEnvironment(err))
}

func TestReferenceNormalize(t *testing.T) {
	ref := score.Reference{Min: -10, Max: 90}

	assert.InDelta(t, 0.0, ref.Normalize(-10), 1e-12)
	assert.InDelta(t, 1.0, ref.Normalize(90), 1e-12)
	assert.InDelta(t, 0.5, ref.Normalize(40), 1e-12)
	assert.InDelta(t, -0.1, ref.Normalize(-20), 1e-12)
}

func TestRegister(t *testing.T) {
	require.NoError(t, score.Register("testenv", score.Reference{Min: 0, Max: 2}))

	ref, err := score.Lookup("testenv-easy-v0")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ref.Normalize(1), 1e-12)
	assert.Contains(t, score.Families(), "testenv")

	err = score.Register("broken", score.Reference{Min: 1, Max: 1})
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	var n score.Normalizer = score.Func(func(r float64) float64 { return r / 100 })
	assert.InDelta(t, 0.2, n.Normalize(20), 1e-12)
}
