// Package config implements the configuration of a single offline
// training run
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/samuelfneumann/bcrunner/agent"
	"github.com/samuelfneumann/bcrunner/dataset"
	"github.com/samuelfneumann/bcrunner/experiment"
)

const (
	// ResultsDir is the directory under which all runs are saved
	ResultsDir = "results"

	// VariantFile is the name of the file which a run's configuration
	// is recorded to
	VariantFile = "variant.json"

	// Version is recorded with every run's configuration
	Version = "Diffusion-RL"
)

// ErrInvalid is returned when a Run is invalid
var ErrInvalid = errors.New("invalid run configuration")

// Run is the configuration of a single run. Runs have value semantics
// and are never modified once validated.
type Run struct {
	Exp           string             `json:"exp"`
	Device        string             `json:"device"`
	EnvName       string             `json:"env_name"`
	Dir           string             `json:"dir"`
	Seed          uint64             `json:"seed"`
	NumEpochs     int                `json:"num_epochs"`
	StepsPerEpoch int                `json:"num_steps_per_epoch"`
	EvalFreq      int                `json:"eval_freq"`
	EvalEpisodes  int                `json:"eval_episodes"`
	RewardTune    dataset.RewardTune `json:"reward_tune"`
	SaveBestModel bool               `json:"save_best_model"`

	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"lr"`
	Discount     float64 `json:"discount"`
	Tau          float64 `json:"tau"`

	T               int        `json:"T"`
	BetaSchedule    string     `json:"beta_schedule"`
	Model           string     `json:"model"`
	Algo            agent.Type `json:"algo"`
	NumSamplesMatch int        `json:"num_samples_match"`
	MMDSigma        float64    `json:"mmd_sigma"`
	WGamma          float64    `json:"w_gamma"`

	// Dataset is the file to load the offline dataset from
	Dataset string `json:"dataset"`

	// AgentConfigFile is an optional file to load the agent configuration
	// from. If set, it takes precedence over the hyperparameters above.
	AgentConfigFile string `json:"agent_config,omitempty"`

	EvalMaxEpisodeSteps int `json:"eval_max_episode_steps"`
}

// Default returns the default Run
func Default() Run {
	return Run{
		Exp:           "exp_1",
		Device:        "cpu",
		EnvName:       "walker2d-expert-v2",
		Dir:           "tests",
		Seed:          0,
		NumEpochs:     500,
		StepsPerEpoch: 1000,
		EvalFreq:      50,
		EvalEpisodes:  10,
		RewardTune:    dataset.NoTune,

		BatchSize:    256,
		LearningRate: 3e-4,
		Discount:     0.99,
		Tau:          0.005,

		T:               100,
		BetaSchedule:    "linear",
		Model:           "MLP",
		Algo:            agent.BC,
		NumSamplesMatch: 10,
		MMDSigma:        20.0,
		WGamma:          5.0,

		EvalMaxEpisodeSteps: experiment.DefaultMaxEpisodeSteps,
	}
}

// Validate returns an error wrapping ErrInvalid if the Run is invalid.
// Validate does not check whether the environment or agent type are
// linked into the program.
func (r Run) Validate() error {
	if err := r.Experiment().Validate(); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}

	if _, err := dataset.ParseRewardTune(string(r.RewardTune)); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}

	known := false
	for _, t := range agent.Types() {
		known = known || t == r.Algo
	}

	switch {
	case !known:
		return errors.Wrapf(ErrInvalid, "unknown algorithm %q", r.Algo)
	case r.Dataset == "":
		return errors.Wrap(ErrInvalid, "no dataset")
	case r.EvalMaxEpisodeSteps < 0:
		return errors.Wrapf(ErrInvalid, "eval episode step limit must be "+
			"non-negative, got %v", r.EvalMaxEpisodeSteps)
	case r.LearningRate <= 0:
		return errors.Wrapf(ErrInvalid, "learning rate must be positive, "+
			"got %v", r.LearningRate)
	case r.T <= 0:
		return errors.Wrapf(ErrInvalid, "T must be positive, got %v", r.T)
	}
	return nil
}

// Name returns the name of the run, which identifies the run's
// directory
func (r Run) Name() string {
	return fmt.Sprintf("%v|%v|%v|T-%v|%v|%v|lr%.5f|%v", r.EnvName, r.Exp,
		r.BetaSchedule, r.T, r.Algo, r.Model, r.LearningRate, r.Seed)
}

// OutputDir returns the directory which the run's results are saved
// to
func (r Run) OutputDir() string {
	return filepath.Join(ResultsDir, r.Dir, r.Name())
}

// Experiment returns the configuration of the training loop
func (r Run) Experiment() experiment.Config {
	return experiment.Config{
		EnvName:       r.EnvName,
		Seed:          r.Seed,
		NumEpochs:     r.NumEpochs,
		StepsPerEpoch: r.StepsPerEpoch,
		EvalFreq:      r.EvalFreq,
		EvalEpisodes:  r.EvalEpisodes,
		BatchSize:     r.BatchSize,
	}
}

// Base returns the options shared by all agents
func (r Run) Base(stateDim, actionDim int, maxAction float64) agent.Base {
	return agent.Base{
		StateDim:     stateDim,
		ActionDim:    actionDim,
		MaxAction:    maxAction,
		Device:       r.Device,
		Discount:     r.Discount,
		Tau:          r.Tau,
		LearningRate: r.LearningRate,
	}
}

// Hyperparameters returns the algorithm-specific options of the run
func (r Run) Hyperparameters() agent.Hyperparameters {
	return agent.Hyperparameters{
		T:               r.T,
		BetaSchedule:    r.BetaSchedule,
		Model:           r.Model,
		NumSamplesMatch: r.NumSamplesMatch,
		MMDSigma:        r.MMDSigma,
		WGamma:          r.WGamma,
	}
}

// AgentConfig returns the configuration of the run's agent for an
// environment with the given dimensions and action bound.
//
// If the Run has an AgentConfigFile, the configuration is loaded
// from that file and only the options shared by all agents are
// overwritten with those of the Run. Otherwise, the default
// configuration of the Run's algorithm is used.
func (r Run) AgentConfig(stateDim, actionDim int,
	maxAction float64) (agent.Config, error) {
	base := r.Base(stateDim, actionDim, maxAction)

	if r.AgentConfigFile == "" {
		c, err := agent.NewConfig(r.Algo, base, r.Hyperparameters())
		return c, errors.Wrap(err, "agentConfig")
	}

	data, err := os.ReadFile(r.AgentConfigFile)
	if err != nil {
		return nil, errors.Wrap(err, "agentConfig")
	}

	var typed agent.TypedConfig
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, errors.Wrapf(err, "agentConfig: could not load %v",
			r.AgentConfigFile)
	}
	if typed.Type != r.Algo {
		return nil, errors.Wrapf(ErrInvalid, "agent config %v is for %q, "+
			"not %q", r.AgentConfigFile, typed.Type, r.Algo)
	}

	return typed.Config.WithOptions(base), nil
}

// Variant is the record of a run: its configuration, the environment
// it was run on, and the configuration of its agent
type Variant struct {
	Run
	Version   string            `json:"version"`
	StateDim  int               `json:"state_dim"`
	ActionDim int               `json:"action_dim"`
	MaxAction float64           `json:"max_action"`
	Agent     agent.TypedConfig `json:"agent"`
}

// Record saves the Variant of the run to dir
func (r Run) Record(dir string, c agent.Config) error {
	b := c.Options()
	v := Variant{
		Run:       r,
		Version:   Version,
		StateDim:  b.StateDim,
		ActionDim: b.ActionDim,
		MaxAction: b.MaxAction,
		Agent:     agent.NewTypedConfig(c),
	}

	data, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return errors.Wrap(err, "record")
	}
	return errors.Wrap(os.WriteFile(filepath.Join(dir, VariantFile), data,
		0644), "record")
}

// LoadVariant loads the Variant recorded in dir
func LoadVariant(dir string) (Variant, error) {
	data, err := os.ReadFile(filepath.Join(dir, VariantFile))
	if err != nil {
		return Variant{}, errors.Wrap(err, "loadVariant")
	}

	var v Variant
	if err := json.Unmarshal(data, &v); err != nil {
		return Variant{}, errors.Wrap(err, "loadVariant")
	}
	return v, nil
}
