package tracker

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryPersistsEveryAppend(t *testing.T) {
	filename := filepath.Join(t.TempDir(), HistoryFile)
	h := NewHistory(filename)

	evals := []Evaluation{
		{AvgReward: 10, StdReward: 1, AvgNormScore: 0.1, StdNormScore: 0.01},
		{AvgReward: 20, StdReward: 2, AvgNormScore: 0.2, StdNormScore: 0.02},
	}

	for i, e := range evals {
		require.NoError(t, h.Append(e))

		loaded, err := LoadHistory(filename)
		require.NoError(t, err)
		if diff := cmp.Diff(evals[:i+1], loaded.Evaluations()); diff != "" {
			t.Errorf("history after append %d (-want +got):\n%s", i, diff)
		}
	}

	assert.Equal(t, [][4]float64{
		{10, 1, 0.1, 0.01},
		{20, 2, 0.2, 0.02},
	}, h.Records())
}

func TestHistoryInMemory(t *testing.T) {
	h := NewHistory("")
	require.NoError(t, h.Append(Evaluation{AvgNormScore: 1}))
	assert.Equal(t, 1, h.Len())

	// Callers cannot modify the history
	h.Evaluations()[0].AvgNormScore = 5
	assert.Equal(t, 1.0, h.Evaluations()[0].AvgNormScore)
}

func TestLoadHistoryMissing(t *testing.T) {
	_, err := LoadHistory(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestRecordRoundTrip(t *testing.T) {
	e := Evaluation{1, 2, 3, 4}
	assert.Equal(t, e, FromRecord(e.Record()))
}
