package experiment

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/samuelfneumann/bcrunner/agent"
	"github.com/samuelfneumann/bcrunner/dataset"
	"github.com/samuelfneumann/bcrunner/experiment/checkpointer"
	"github.com/samuelfneumann/bcrunner/experiment/tracker"
	"github.com/samuelfneumann/bcrunner/utils/logger"
	"github.com/samuelfneumann/bcrunner/utils/progressbar"
)

// barWidth is the width of the progress bar displayed while training
const barWidth = 40

// losser is an agent which reports the loss of its latest update
type losser interface {
	Loss() float64
}

// Offline is an Experiment that trains an agent offline from a fixed
// dataset, alternating bursts of training with evaluations of the
// agent's policy in an environment.
//
// Each cycle trains the agent for EvalFreq epochs, evaluates it,
// appends the evaluation to the history, and passes the evaluation to
// the checkpointer. Training continues until at least NumEpochs epochs
// have been trained. If NumEpochs is not a multiple of EvalFreq, the
// final cycle trains past NumEpochs.
type Offline struct {
	config       Config
	agent        agent.Agent
	sampler      dataset.Sampler
	evaluator    *Evaluator
	history      tracker.Tracker
	checkpointer checkpointer.Checkpointer
	log          *logger.Logger

	// progress returns a progress bar for a burst of training
	progress func(max int) *progressbar.ManualProgressBar

	trainingIters int
	cycles        int
}

// NewOffline returns a new Offline experiment
func NewOffline(c Config, a agent.Agent, s dataset.Sampler, e *Evaluator,
	h tracker.Tracker, ch checkpointer.Checkpointer,
	log *logger.Logger) (*Offline, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "newOffline")
	}

	if over := c.Overshoot(); over > 0 {
		log.Warnf("NumEpochs (%v) is not a multiple of EvalFreq (%v), "+
			"training will run for %v epochs", c.NumEpochs, c.EvalFreq,
			c.NumEpochs+over)
	}

	return &Offline{
		config:       c,
		agent:        a,
		sampler:      s,
		evaluator:    e,
		history:      h,
		checkpointer: ch,
		log:          log,
		progress: func(max int) *progressbar.ManualProgressBar {
			return progressbar.NewTerminal(barWidth, max)
		},
	}, nil
}

// Cycles returns the number of completed train/evaluate cycles
func (o *Offline) Cycles() int {
	return o.cycles
}

// TrainingIters returns the number of training iterations performed
func (o *Offline) TrainingIters() int {
	return o.trainingIters
}

// Run runs the experiment. Cancellation of ctx is only observed
// between cycles.
func (o *Offline) Run(ctx context.Context) error {
	maxIters := o.config.NumEpochs * o.config.StepsPerEpoch
	iterations := o.config.EvalFreq * o.config.StepsPerEpoch

	for o.trainingIters < maxIters {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "run: stopped after %v cycles",
				o.cycles)
		}

		if err := o.RunCycle(iterations); err != nil {
			return errors.Wrapf(err, "run: cycle %v", o.cycles)
		}
	}
	return nil
}

// RunCycle trains the agent for the given number of iterations, then
// evaluates and possibly checkpoints it
func (o *Offline) RunCycle(iterations int) error {
	o.log.Banner(fmt.Sprintf("Train step: %v", o.trainingIters), "*", 90)

	bar := o.progress(iterations)
	s := dataset.NewCounter(o.sampler, bar.Step)

	if err := o.agent.Train(s, iterations, o.config.BatchSize); err != nil {
		return errors.Wrap(err, "could not train agent")
	}
	o.trainingIters += iterations
	epoch := o.trainingIters / o.config.StepsPerEpoch

	eval, err := o.evaluator.Evaluate(o.agent, o.config.EnvName,
		o.config.Seed, o.config.EvalEpisodes)
	if err != nil {
		return errors.Wrapf(err, "could not evaluate agent at epoch %v",
			epoch)
	}
	o.log.Banner(fmt.Sprintf("Evaluation over %v episodes: %.2f %.2f",
		o.config.EvalEpisodes, eval.AvgReward, eval.AvgNormScore), "=", 80)

	if err := o.history.Append(eval); err != nil {
		return errors.Wrap(err, "could not save evaluation")
	}
	o.cycles++

	o.log.RecordTabular("Trained Epochs", epoch)
	o.log.RecordTabular("Average Episodic Reward", eval.AvgReward)
	o.log.RecordTabular("Std Episodic Reward", eval.StdReward)
	o.log.RecordTabular("Average Episodic N-Reward", eval.AvgNormScore)
	o.log.RecordTabular("Std Episodic N-Reward", eval.StdNormScore)
	if l, ok := o.agent.(losser); ok {
		o.log.RecordTabular("Loss", l.Loss())
	}
	if err := o.log.DumpTabular(); err != nil {
		return errors.Wrap(err, "could not log progress")
	}

	if _, err := o.checkpointer.Consider(eval, epoch); err != nil {
		return errors.Wrap(err, "could not checkpoint agent")
	}
	return nil
}
