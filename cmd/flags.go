package cmd

import (
	"github.com/spf13/pflag"

	"github.com/samuelfneumann/bcrunner/agent"
	"github.com/samuelfneumann/bcrunner/config"
	"github.com/samuelfneumann/bcrunner/dataset"
)

// runFlags binds the command line flags of a run to a config.Run
type runFlags struct {
	run        config.Run
	rewardTune string
	algo       string
}

func newRunFlags() *runFlags {
	return &runFlags{run: config.Default()}
}

// AddFlags adds the flags of a run to fs, with the default values
// taken from config.Default
func (f *runFlags) AddFlags(fs *pflag.FlagSet) {
	r := &f.run

	fs.StringVar(&r.Exp, "exp", r.Exp, "Experiment ID")
	fs.StringVar(&r.Device, "device", r.Device, "Device to train on")
	fs.StringVar(&r.EnvName, "env-name", r.EnvName,
		"Environment to evaluate in")
	fs.StringVar(&r.Dir, "dir", r.Dir, "Logging directory under "+
		config.ResultsDir)
	fs.Uint64Var(&r.Seed, "seed", r.Seed, "Random seed")

	fs.IntVar(&r.NumEpochs, "num-epochs", r.NumEpochs,
		"Number of epochs to train for")
	fs.IntVar(&r.StepsPerEpoch, "num-steps-per-epoch", r.StepsPerEpoch,
		"Number of updates per epoch")
	fs.IntVar(&r.EvalFreq, "eval-freq", r.EvalFreq,
		"Number of epochs between evaluations")
	fs.IntVar(&r.EvalEpisodes, "eval-episodes", r.EvalEpisodes,
		"Number of episodes per evaluation")
	fs.IntVar(&r.EvalMaxEpisodeSteps, "eval-max-episode-steps",
		r.EvalMaxEpisodeSteps, "Maximum length of an evaluation episode, "+
			"0 for no limit")
	fs.StringVar(&f.rewardTune, "reward-tune", string(r.RewardTune),
		"Reward tuning, one of "+join(dataset.RewardTunes()))
	fs.BoolVar(&r.SaveBestModel, "save-best-model", r.SaveBestModel,
		"Save the agent whenever its evaluation improves")

	fs.IntVar(&r.BatchSize, "batch-size", r.BatchSize, "Minibatch size")
	fs.Float64Var(&r.LearningRate, "lr", r.LearningRate, "Learning rate")
	fs.Float64Var(&r.Discount, "discount", r.Discount, "Discount factor")
	fs.Float64Var(&r.Tau, "tau", r.Tau, "Target network averaging rate")

	fs.IntVar(&r.T, "T", r.T, "Number of diffusion steps")
	fs.StringVar(&r.BetaSchedule, "beta-schedule", r.BetaSchedule,
		"Diffusion noise schedule")
	fs.StringVar(&r.Model, "model", r.Model, "Noise model")
	fs.StringVar(&f.algo, "algo", string(r.Algo),
		"Algorithm, one of "+join(agent.Types()))
	fs.IntVar(&r.NumSamplesMatch, "num-samples-match", r.NumSamplesMatch,
		"Number of samples to match")
	fs.Float64Var(&r.MMDSigma, "mmd-sigma", r.MMDSigma, "MMD kernel width")
	fs.Float64Var(&r.WGamma, "w-gamma", r.WGamma,
		"Wasserstein penalty weight")

	fs.StringVar(&r.Dataset, "dataset", r.Dataset, "Dataset file")
	fs.StringVar(&r.AgentConfigFile, "agent-config", r.AgentConfigFile,
		"JSON file with the agent configuration")
}

// Run returns the config.Run described by the flags
func (f *runFlags) Run() config.Run {
	r := f.run
	r.RewardTune = dataset.RewardTune(f.rewardTune)
	r.Algo = agent.Type(f.algo)
	return r
}

func join[T ~string](values []T) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += string(v)
	}
	return out
}
