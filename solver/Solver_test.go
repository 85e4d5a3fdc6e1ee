package solver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	adam, err := NewDefaultAdam(3e-4, 256)
	require.NoError(t, err)

	data, err := json.Marshal(adam)
	require.NoError(t, err)

	var decoded Solver
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Adam, decoded.Type)
	assert.Equal(t, adam.Config, decoded.Config)
	assert.NotNil(t, decoded.Solver)
}

func TestValidate(t *testing.T) {
	_, err := NewDefaultAdam(-1, 256)
	assert.Error(t, err)

	_, err = NewAdam(1e-3, 1e-8, 1.0, 0.999, 32, -1)
	assert.Error(t, err)

	_, err = NewVanilla(0.1, 0, -1)
	assert.Error(t, err)

	_, err = NewRMSProp(0.1, 1e-8, 1.5, 32, -1)
	assert.Error(t, err)

	_, err = newSolver(Vanilla, AdamConfig{StepSize: 1, Batch: 1})
	assert.Error(t, err)
}

func TestUnknownType(t *testing.T) {
	var s Solver
	err := json.Unmarshal([]byte(`{"Type": "LBFGS", "Config": {}}`), &s)
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	rms, err := NewDefaultRMSProp(1e-3, 1)
	require.NoError(t, err)

	clone := rms.Clone()
	assert.Equal(t, rms.Type, clone.Type)
	assert.Equal(t, rms.Config, clone.Config)
	assert.NotSame(t, rms.Solver, clone.Solver)
}
