// Package dataset implements fixed offline datasets of environmental
// transitions and samplers that draw minibatches from them.
//
// A Dataset stores transitions as flat row-major arrays, one row per
// transition. Datasets are stored on disk as gob files.
package dataset

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/bcrunner/timestep"
)

// Dataset is a fixed collection of (s, a, r, s', not done) transitions
type Dataset struct {
	StateDim  int
	ActionDim int

	States     []float64
	Actions    []float64
	NextStates []float64
	Rewards    []float64
	NotDones   []float64
}

// New returns a new, empty Dataset for states and actions of the given
// dimensions
func New(stateDim, actionDim int) *Dataset {
	if stateDim <= 0 || actionDim <= 0 {
		panic(fmt.Sprintf("new: dimensions must be positive, got state "+
			"%v and action %v", stateDim, actionDim))
	}
	return &Dataset{StateDim: stateDim, ActionDim: actionDim}
}

// Len returns the number of transitions in the dataset
func (d *Dataset) Len() int {
	return len(d.Rewards)
}

// Add appends a transition to the dataset
func (d *Dataset) Add(t ts.Transition) error {
	if t.State.Len() != d.StateDim || t.NextState.Len() != d.StateDim {
		return errors.Errorf("add: states should be %d-dimensional, got "+
			"%d and %d", d.StateDim, t.State.Len(), t.NextState.Len())
	}
	if t.Action.Len() != d.ActionDim {
		return errors.Errorf("add: actions should be %d-dimensional, got %d",
			d.ActionDim, t.Action.Len())
	}

	d.States = append(d.States, t.State.RawVector().Data...)
	d.Actions = append(d.Actions, t.Action.RawVector().Data...)
	d.NextStates = append(d.NextStates, t.NextState.RawVector().Data...)
	d.Rewards = append(d.Rewards, t.Reward)

	notDone := 1.0
	if t.Terminal {
		notDone = 0.0
	}
	d.NotDones = append(d.NotDones, notDone)
	return nil
}

// Transition returns the transition at index i
func (d *Dataset) Transition(i int) ts.Transition {
	s, a := d.StateDim, d.ActionDim
	return ts.Transition{
		State:     mat.NewVecDense(s, clone(d.States[i*s:(i+1)*s])),
		Action:    mat.NewVecDense(a, clone(d.Actions[i*a:(i+1)*a])),
		Reward:    d.Rewards[i],
		NextState: mat.NewVecDense(s, clone(d.NextStates[i*s:(i+1)*s])),
		Terminal:  d.NotDones[i] == 0,
	}
}

// Validate checks that the flat arrays of the dataset agree with each
// other and with the state and action dimensions
func (d *Dataset) Validate() error {
	if d.StateDim <= 0 || d.ActionDim <= 0 {
		return errors.Errorf("validate: dimensions must be positive, got "+
			"state %v and action %v", d.StateDim, d.ActionDim)
	}

	n := d.Len()
	switch {
	case len(d.NotDones) != n:
		return errors.Errorf("validate: %d rewards but %d terminal flags",
			n, len(d.NotDones))
	case len(d.States) != n*d.StateDim:
		return errors.Errorf("validate: expected %d state entries, got %d",
			n*d.StateDim, len(d.States))
	case len(d.NextStates) != n*d.StateDim:
		return errors.Errorf("validate: expected %d next state entries, "+
			"got %d", n*d.StateDim, len(d.NextStates))
	case len(d.Actions) != n*d.ActionDim:
		return errors.Errorf("validate: expected %d action entries, got %d",
			n*d.ActionDim, len(d.Actions))
	}
	return nil
}

// Save saves the dataset to a gob file
func (d *Dataset) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "save: could not create dataset file")
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(err, "save: could not encode dataset")
	}
	return file.Close()
}

// Load loads a dataset from a gob file
func Load(filename string) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "load: could not open dataset file")
	}
	defer file.Close()

	var d Dataset
	dec := gob.NewDecoder(file)
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrapf(err, "load: could not decode dataset %s",
			filename)
	}

	if err := d.Validate(); err != nil {
		return nil, errors.Wrapf(err, "load %s", filename)
	}
	return &d, nil
}

func clone(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	return out
}
