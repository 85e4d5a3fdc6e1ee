package agent_test

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/bcrunner/agent"
	"github.com/samuelfneumann/bcrunner/dataset"
)

const fakeType agent.Type = "fake"

type fakeAgent struct{ seed uint64 }

func (f *fakeAgent) Train(dataset.Sampler, int, int) error { return nil }
func (f *fakeAgent) Save(string) error                   { return nil }
func (f *fakeAgent) SampleAction(s *mat.VecDense) (*mat.VecDense, error) {
	return s, nil
}

type fakeConfig struct {
	agent.Base
	Samples int
}

func (f fakeConfig) Create(seed uint64) (agent.Agent, error) {
	return &fakeAgent{seed}, nil
}

func (f fakeConfig) Validate() error {
	if f.Samples < 0 {
		return errors.New("negative samples")
	}
	return f.Base.Validate()
}

func (f fakeConfig) Type() agent.Type { return fakeType }

func (f fakeConfig) Configure(base agent.Base,
	hp agent.Hyperparameters) agent.Config {
	f.Base = base
	f.Samples = hp.NumSamplesMatch
	return f
}

func (f fakeConfig) Options() agent.Base { return f.Base }

func (f fakeConfig) WithOptions(base agent.Base) agent.Config {
	f.Base = base
	return f
}

func init() {
	agent.Register(fakeType, fakeConfig{})
}

func base() agent.Base {
	return agent.Base{
		StateDim:     3,
		ActionDim:    1,
		MaxAction:    1,
		Device:       "cpu",
		Discount:     0.99,
		Tau:          0.005,
		LearningRate: 3e-4,
	}
}

func TestNewConfig(t *testing.T) {
	c, err := agent.NewConfig(fakeType, base(),
		agent.Hyperparameters{NumSamplesMatch: 7})
	require.NoError(t, err)
	assert.Equal(t, fakeConfig{Base: base(), Samples: 7}, c)

	a, err := agent.Create(c, 42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), a.(*fakeAgent).seed)
}

func TestUnknownTypes(t *testing.T) {
	// Declared, but its package is not linked into the test binary
	_, err := agent.NewConfig(agent.BCGAN2, base(), agent.Hyperparameters{})
	assert.True(t, agent.IsUnknownType(err))

	_, err = agent.NewConfig("bc_dqn", base(), agent.Hyperparameters{})
	assert.True(t, agent.IsUnknownType(err))
	assert.Contains(t, agent.Types(), agent.BCW)
	assert.Contains(t, agent.Registered(), fakeType)
}

func TestCreateValidates(t *testing.T) {
	b := base()
	b.Tau = 0
	_, err := agent.Create(fakeConfig{Base: b}, 0)
	assert.Error(t, err)

	_, err = agent.Create(fakeConfig{Base: base(), Samples: -1}, 0)
	assert.Error(t, err)
}

func TestTypedConfigJSON(t *testing.T) {
	in := agent.NewTypedConfig(fakeConfig{Base: base(), Samples: 2})
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out agent.TypedConfig
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	err = json.Unmarshal([]byte(`{"Type": "bc_w", "Config": {}}`), &out)
	assert.True(t, agent.IsUnknownType(err))
}

func TestBaseValidate(t *testing.T) {
	assert.NoError(t, base().Validate())

	for _, mutate := range []func(*agent.Base){
		func(b *agent.Base) { b.StateDim = 0 },
		func(b *agent.Base) { b.ActionDim = -1 },
		func(b *agent.Base) { b.MaxAction = 0 },
		func(b *agent.Base) { b.Discount = 1.5 },
		func(b *agent.Base) { b.LearningRate = 0 },
	} {
		b := base()
		mutate(&b)
		assert.Error(t, b.Validate())
	}
}
