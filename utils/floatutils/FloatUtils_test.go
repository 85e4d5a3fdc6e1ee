package floatutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	assert.Equal(t, 1.0, Clip(3, -1, 1))
	assert.Equal(t, -1.0, Clip(-3, -1, 1))
	assert.Equal(t, 0.5, Clip(0.5, -1, 1))
	assert.Equal(t, 2.0, ClipInterval(5, r1.Interval{Min: 0, Max: 2}))
	assert.Equal(t, -2.0, ClipSymmetric(-7, 2))
}

func TestClipAll(t *testing.T) {
	values := []float64{-3, 0.25, 3}
	out := ClipAll(values, 1)
	assert.Equal(t, []float64{-1, 0.25, 1}, values)
	assert.Equal(t, values, out)
}
