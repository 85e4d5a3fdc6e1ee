package dataset

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/bcrunner/timestep"
)

// line returns a dataset of n transitions where every entry of
// transition i equals i
func line(n int) *Dataset {
	d := New(2, 1)
	for i := 0; i < n; i++ {
		v := float64(i)
		err := d.Add(ts.Transition{
			State:     mat.NewVecDense(2, []float64{v, v}),
			Action:    mat.NewVecDense(1, []float64{v}),
			Reward:    v,
			NextState: mat.NewVecDense(2, []float64{v, v}),
			Terminal:  i%5 == 4,
		})
		if err != nil {
			panic(err)
		}
	}
	return d
}

func TestAdd(t *testing.T) {
	d := line(10)
	require.NoError(t, d.Validate())
	assert.Equal(t, 10, d.Len())

	tr := d.Transition(4)
	assert.Equal(t, 4.0, tr.Reward)
	assert.True(t, tr.Terminal)
	assert.Equal(t, []float64{4, 4}, tr.State.RawVector().Data)

	err := d.Add(ts.Transition{
		State:     mat.NewVecDense(3, nil),
		Action:    mat.NewVecDense(1, nil),
		NextState: mat.NewVecDense(3, nil),
	})
	assert.Error(t, err)
	assert.Equal(t, 10, d.Len())
}

func TestSaveLoad(t *testing.T) {
	d := line(7)
	filename := filepath.Join(t.TempDir(), "data.gob")
	require.NoError(t, d.Save(filename))

	loaded, err := Load(filename)
	require.NoError(t, err)
	if diff := cmp.Diff(d, loaded); diff != "" {
		t.Errorf("loaded dataset differs (-want +got):\n%s", diff)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	d := line(3)
	d.Actions = d.Actions[:2]
	assert.Error(t, d.Validate())
}
