package plot

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	c := Curve{
		Title:  "halfcheetah-medium-v2",
		XLabel: "Epoch",
		YLabel: "Normalized Score",
		X:      []float64{50, 100, 150},
		Mean:   []float64{10, 20, 15},
		Std:    []float64{1, 2, 1.5},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, c))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, width, img.Bounds().Dx())
	assert.Equal(t, height, img.Bounds().Dy())
}

func TestSaveSinglePoint(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "eval.png")
	c := Curve{X: []float64{50}, Mean: []float64{3}}
	require.NoError(t, Save(filename, c))

	img, err := gg.LoadPNG(filename)
	require.NoError(t, err)
	assert.Equal(t, width, img.Bounds().Dx())
}

func TestValidate(t *testing.T) {
	assert.Error(t, Curve{}.Validate())
	assert.Error(t, Curve{X: []float64{1, 2}, Mean: []float64{1}}.Validate())
	assert.Error(t, Curve{
		X:    []float64{1},
		Mean: []float64{1},
		Std:  []float64{1, 2},
	}.Validate())
}
