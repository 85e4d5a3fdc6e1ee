package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/bcrunner/agent"
	"github.com/samuelfneumann/bcrunner/config"
	"github.com/samuelfneumann/bcrunner/dataset"
	"github.com/samuelfneumann/bcrunner/environment"
	"github.com/samuelfneumann/bcrunner/environment/gym"
	"github.com/samuelfneumann/bcrunner/experiment"
	"github.com/samuelfneumann/bcrunner/experiment/checkpointer"
	"github.com/samuelfneumann/bcrunner/experiment/tracker"
	"github.com/samuelfneumann/bcrunner/utils/logger"
)

// bannerWidth is the width of banners printed to the terminal
const bannerWidth = 80

// RunCommand returns the command which trains and evaluates an agent
func RunCommand() *cobra.Command {
	flags := newRunFlags()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Train an agent offline, evaluating it periodically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := interruptible()
			defer done()
			defer gym.Shutdown()

			return Run(ctx, flags.Run(),
				logger.New(cmd.OutOrStdout(), ""))
		},
	}
	flags.AddFlags(cmd.Flags())

	return cmd
}

// Run runs the experiment described by r, saving all results to the
// run's output directory
func Run(ctx context.Context, r config.Run, log *logger.Logger) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Device != "cpu" {
		log.Warnf("device %q is not supported, training on cpu", r.Device)
	}

	// Probe the environment for its dimensions and reference scores
	env, err := environment.Make(r.EnvName)
	if err != nil {
		return err
	}
	if _, err := env.NormalizedScore(0); err != nil {
		env.Close()
		return errors.Wrapf(err, "run: cannot score %v", r.EnvName)
	}
	stateDim := env.ObservationSpec().Dims()
	actionDim := env.ActionSpec().Dims()
	maxAction := env.ActionSpec().MaxAbs()
	if err := env.Close(); err != nil {
		return errors.Wrap(err, "run: could not close environment")
	}

	agentConfig, err := r.AgentConfig(stateDim, actionDim, maxAction)
	if err != nil {
		return err
	}

	dir := r.OutputDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "run: could not create results directory")
	}
	log = logger.New(log.Writer(), dir)
	log.Banner(fmt.Sprintf("Saving location: %v", dir), "*", bannerWidth)

	if err := r.Record(dir, agentConfig); err != nil {
		return err
	}
	log.Banner(fmt.Sprintf("Env: %v, state_dim: %v, action_dim: %v",
		r.EnvName, stateDim, actionDim), "*", bannerWidth)

	d, err := dataset.Load(r.Dataset)
	if err != nil {
		return err
	}
	if d.StateDim != stateDim || d.ActionDim != actionDim {
		return errors.Errorf("run: dataset has state and action "+
			"dimensions (%v, %v), environment has (%v, %v)", d.StateDim,
			d.ActionDim, stateDim, actionDim)
	}
	sampler, err := dataset.NewSampler(d, r.RewardTune, r.Seed)
	if err != nil {
		return err
	}
	log.Banner("Loaded buffer", "*", bannerWidth)

	a, err := agent.Create(agentConfig, r.Seed)
	if err != nil {
		return err
	}
	if c, ok := a.(agent.Closer); ok {
		defer c.Close()
	}

	history := tracker.NewHistory(filepath.Join(dir, tracker.HistoryFile))
	best := checkpointer.NewBest(dir, a, r.SaveBestModel)
	evaluator := experiment.NewEvaluator(r.EvalMaxEpisodeSteps)

	e, err := experiment.NewOffline(r.Experiment(), a, sampler, evaluator,
		history, best, log)
	if err != nil {
		return err
	}
	runErr := e.Run(ctx)

	if history.Len() > 0 {
		if err := plotHistory(dir, r.EnvName, history.Evaluations(),
			r.EvalFreq); err != nil {
			log.Warnf("could not plot learning curve: %v", err)
		}
	}
	if score, ok := best.Score(); ok {
		log.Banner(fmt.Sprintf("Best normalized score %.2f ± %.2f at epoch "+
			"%v", score.NormAvg, score.NormStd, score.Epoch), "=",
			bannerWidth)
	}
	return runErr
}
