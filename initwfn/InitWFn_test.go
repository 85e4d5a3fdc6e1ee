package initwfn

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestSeededReproducible(t *testing.T) {
	for _, w := range []*InitWFn{
		NewGlorotU(1), NewGlorotN(1), NewHeU(1), NewHeN(1),
		NewGaussian(0, 0.1), NewUniform(-1, 1),
	} {
		first := w.Seeded(3)(tensor.Float64, 4, 5).([]float64)
		second := w.Seeded(3)(tensor.Float64, 4, 5).([]float64)

		assert.Len(t, first, 20, w.Type)
		assert.Equal(t, first, second, w.Type)
	}
}

func TestGlorotULimit(t *testing.T) {
	limit := math.Sqrt(6.0 / (30 + 10))
	v := NewGlorotU(1).Seeded(1)(tensor.Float64, 30, 10).([]float64)
	for _, x := range v {
		assert.LessOrEqual(t, math.Abs(x), limit)
	}
}

func TestConstants(t *testing.T) {
	assert.Equal(t, make([]float64, 6),
		NewZeroes().Seeded(0)(tensor.Float64, 2, 3))
}

func TestJSON(t *testing.T) {
	in := NewGlorotN(math.Sqrt2)
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out InitWFn
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, GlorotN, out.Type)
	assert.Equal(t, GlorotNConfig{Gain: math.Sqrt2}, out.Config)

	err = json.Unmarshal([]byte(`{"Type": "Orthogonal"}`), &out)
	assert.Error(t, err)
}
