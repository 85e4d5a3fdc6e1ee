package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/bcrunner/agent/bcmle"
	"github.com/samuelfneumann/bcrunner/config"
	"github.com/samuelfneumann/bcrunner/dataset"
	"github.com/samuelfneumann/bcrunner/environment"
	"github.com/samuelfneumann/bcrunner/environment/pendulum"
	"github.com/samuelfneumann/bcrunner/environment/score"
	"github.com/samuelfneumann/bcrunner/experiment/checkpointer"
	"github.com/samuelfneumann/bcrunner/experiment/tracker"
	"github.com/samuelfneumann/bcrunner/utils/logger"
)

// chdir changes into dir for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	root := RootCommand()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), buf.String())
	return buf.String()
}

func TestRunEndToEnd(t *testing.T) {
	chdir(t, t.TempDir())

	out := execute(t, "collect", "--env-name", pendulum.Name, "--steps",
		"400", "--out", "pendulum.gob")
	assert.Contains(t, out, "Collected 400 transitions")

	execute(t, "run",
		"--env-name", pendulum.Name,
		"--dataset", "pendulum.gob",
		"--algo", "bc_mle",
		"--num-epochs", "3",
		"--num-steps-per-epoch", "4",
		"--eval-freq", "2",
		"--eval-episodes", "2",
		"--batch-size", "16",
		"--save-best-model",
		"--dir", "smoke",
	)

	r := config.Default()
	r.EnvName = pendulum.Name
	r.Algo = "bc_mle"
	r.Dir = "smoke"
	dir := r.OutputDir()

	for _, file := range []string{
		tracker.HistoryFile,
		checkpointer.ScoreFile,
		config.VariantFile,
		logger.ProgressFile,
		bcmle.CheckpointFile,
		PlotFile,
	} {
		assert.FileExists(t, filepath.Join(dir, file))
	}

	// NumEpochs is not a multiple of EvalFreq, so training overshoots
	h, err := tracker.LoadHistory(filepath.Join(dir, tracker.HistoryFile))
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())

	v, err := config.LoadVariant(dir)
	require.NoError(t, err)
	assert.Equal(t, pendulum.ObservationDims, v.StateDim)
	assert.Equal(t, 1, v.ActionDim)
	assert.Equal(t, pendulum.TorqueBound, v.MaxAction)
	assert.Equal(t, dataset.NoTune, v.RewardTune)

	persisted, err := checkpointer.LoadBestScore(
		filepath.Join(dir, checkpointer.ScoreFile))
	require.NoError(t, err)
	replayed, err := checkpointer.Replay(h.Evaluations(),
		checkpointer.Epochs(h.Len(), v.EvalFreq))
	require.NoError(t, err)
	assert.Equal(t, persisted, replayed)

	summary := execute(t, "summarize", dir)
	assert.Contains(t, summary, "Evaluations: 2")
	assert.Contains(t, summary, "Best epoch:")

	require.NoError(t, os.Remove(filepath.Join(dir, PlotFile)))
	execute(t, "plot", dir)
	assert.FileExists(t, filepath.Join(dir, PlotFile))
}

func TestRunInvalid(t *testing.T) {
	chdir(t, t.TempDir())

	root := RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)

	// No dataset
	root.SetArgs([]string{"run", "--env-name", pendulum.Name})
	assert.Error(t, root.Execute())

	// Nothing is created before the configuration is known to be valid
	_, err := os.Stat(config.ResultsDir)
	assert.True(t, os.IsNotExist(err))
}

// unscored is a pendulum without reference scores
type unscored struct {
	*pendulum.Pendulum
}

func (unscored) NormalizedScore(float64) (float64, error) {
	return 0, score.ErrUnknownEnvironment
}

const unscoredName = "unscored-pendulum-v0"

func init() {
	environment.Register(unscoredName,
		func(string) (environment.Environment, error) {
			p, err := pendulum.New(0, pendulum.EpisodeSteps, 1.0)
			return unscored{p}, err
		})
}

func TestRunUnscoredEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	execute(t, "collect", "--env-name", unscoredName, "--steps", "10",
		"--out", "d.gob")

	r := config.Default()
	r.EnvName = unscoredName
	r.Dataset = "d.gob"

	var buf bytes.Buffer
	err := Run(context.Background(), r, logger.New(&buf, ""))
	assert.Equal(t, score.ErrUnknownEnvironment, errors.Cause(err))

	// Fails before any results are written or training begins
	_, err = os.Stat(config.ResultsDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRunUnlinkedAgent(t *testing.T) {
	chdir(t, t.TempDir())
	execute(t, "collect", "--steps", "10", "--out", "d.gob")

	root := RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"run", "--env-name", pendulum.Name, "--dataset",
		"d.gob", "--algo", "bc_gan"})
	assert.Error(t, root.Execute())
}

func TestList(t *testing.T) {
	out := execute(t, "list")
	assert.Contains(t, out, "bc_mle")
	assert.Contains(t, out, pendulum.Name)
}
