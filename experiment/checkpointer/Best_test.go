package checkpointer

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/bcrunner/experiment/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSaver counts how often it is saved
type countingSaver struct {
	dirs []string
	err  error
}

func (c *countingSaver) Save(dir string) error {
	c.dirs = append(c.dirs, dir)
	return c.err
}

func eval(norm float64) tracker.Evaluation {
	return tracker.Evaluation{
		AvgReward:    norm * 100,
		StdReward:    1,
		AvgNormScore: norm,
		StdNormScore: 0.01,
	}
}

func TestBestIsMonotone(t *testing.T) {
	dir := t.TempDir()
	saver := &countingSaver{}
	b := NewBest(dir, saver, true)

	scores := []float64{0.2, 0.5, 0.3, 0.7, 0.1}
	want := []bool{true, true, false, true, false}
	runningMax := math.Inf(-1)

	for i, s := range scores {
		epoch := (i + 1) * 50
		updated, err := b.Consider(eval(s), epoch)
		require.NoError(t, err)
		assert.Equal(t, want[i], updated, "epoch %v", epoch)

		runningMax = math.Max(runningMax, s)
		persisted, err := LoadBestScore(filepath.Join(dir, ScoreFile))
		require.NoError(t, err)
		assert.Equal(t, runningMax, persisted.NormAvg)
	}

	assert.Len(t, saver.dirs, 3)
	score, ok := b.Score()
	assert.True(t, ok)
	assert.Equal(t, 200, score.Epoch)
	assert.InDelta(t, 70.0, score.RawAvg, 1e-9)
}

func TestBestTieGoesToLatest(t *testing.T) {
	saver := &countingSaver{}
	b := NewBest(t.TempDir(), saver, true)

	for _, epoch := range []int{50, 100} {
		updated, err := b.Consider(eval(0.4), epoch)
		require.NoError(t, err)
		assert.True(t, updated)
	}

	score, _ := b.Score()
	assert.Equal(t, 100, score.Epoch)
	assert.Len(t, saver.dirs, 2)
}

func TestBestFirstEvaluationAlwaysSelected(t *testing.T) {
	b := NewBest(t.TempDir(), nil, false)
	_, ok := b.Score()
	assert.False(t, ok)

	updated, err := b.Consider(eval(-1e9), 50)
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestBestSaveModelGated(t *testing.T) {
	dir := t.TempDir()
	saver := &countingSaver{}
	b := NewBest(dir, saver, false)

	_, err := b.Consider(eval(0.5), 50)
	require.NoError(t, err)
	assert.Empty(t, saver.dirs)
	assert.FileExists(t, filepath.Join(dir, ScoreFile))
}

func TestBestSaveError(t *testing.T) {
	saveErr := errors.New("disk full")
	b := NewBest(t.TempDir(), &countingSaver{err: saveErr}, true)

	updated, err := b.Consider(eval(0.5), 50)
	assert.True(t, updated)
	assert.Equal(t, saveErr, errors.Cause(err))
}

func TestScoreFileKeys(t *testing.T) {
	dir := t.TempDir()
	b := NewBest(dir, nil, false)
	_, err := b.Consider(tracker.Evaluation{
		AvgReward:    1,
		StdReward:    2,
		AvgNormScore: 3,
		StdNormScore: 4,
	}, 50)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ScoreFile))
	require.NoError(t, err)

	var got map[string]float64
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]float64{
		"epoch":                     50,
		"best normalized score avg": 3,
		"best normalized score std": 4,
		"best raw score avg":        1,
		"best raw score std":        2,
	}, got)
}

func TestReplayIsIdempotent(t *testing.T) {
	h := []tracker.Evaluation{eval(0.3), eval(0.6), eval(0.6), eval(0.2)}
	epochs := Epochs(len(h), 50)
	assert.Equal(t, []int{50, 100, 150, 200}, epochs)

	first, err := Replay(h, epochs)
	require.NoError(t, err)
	second, err := Replay(h, epochs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 150, first.Epoch)
	assert.Equal(t, 0.6, first.NormAvg)

	// Replaying matches online selection
	dir := t.TempDir()
	b := NewBest(dir, nil, false)
	for i := range h {
		_, err := b.Consider(h[i], epochs[i])
		require.NoError(t, err)
	}
	persisted, err := LoadBestScore(filepath.Join(dir, ScoreFile))
	require.NoError(t, err)
	assert.Equal(t, first, persisted)
}

func TestReplayErrors(t *testing.T) {
	_, err := Replay(nil, nil)
	assert.Equal(t, ErrNoEvaluations, errors.Cause(err))

	_, err = Replay([]tracker.Evaluation{eval(1)}, []int{1, 2})
	assert.Error(t, err)
}
