package network

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Snapshot is a copy of the weights of an MLP which computes the same
// function as the MLP using Gonum matrices
type Snapshot struct {
	Weights     []*mat.Dense
	Biases      []*mat.VecDense
	Activations []*Activation
}

// Features returns the number of inputs of a single sample
func (s *Snapshot) Features() int {
	r, _ := s.Weights[0].Dims()
	return r
}

// Outputs returns the number of outputs of a single sample
func (s *Snapshot) Outputs() int {
	_, c := s.Weights[len(s.Weights)-1].Dims()
	return c
}

// Predict computes the output of the network for each row of x
func (s *Snapshot) Predict(x mat.Matrix) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if cols != s.Features() {
		return nil, errors.Errorf("predict: invalid number of features"+
			"\n\twant(%d)\n\thave(%d)", s.Features(), cols)
	}

	var in mat.Matrix = x
	var out *mat.Dense
	for i, w := range s.Weights {
		_, c := w.Dims()
		out = mat.NewDense(rows, c, nil)
		out.Mul(in, w)

		bias := s.Biases[i].RawVector().Data
		act := s.Activations[i]
		out.Apply(func(_, j int, v float64) float64 {
			return act.apply(v + bias[j])
		}, out)

		in = out
	}
	return out, nil
}

// Polyak sets the weights of s to the Polyak average
// (1 - tau) * s + tau * source
func (s *Snapshot) Polyak(source *Snapshot, tau float64) error {
	if len(s.Weights) != len(source.Weights) {
		return errors.Errorf("polyak: snapshots have %d and %d layers",
			len(s.Weights), len(source.Weights))
	}

	for i := range s.Weights {
		r, c := s.Weights[i].Dims()
		sr, sc := source.Weights[i].Dims()
		if r != sr || c != sc {
			return errors.Errorf("polyak: layer %d has shape %dx%d and "+
				"%dx%d", i, r, c, sr, sc)
		}

		var w mat.Dense
		w.Scale(tau, source.Weights[i])
		s.Weights[i].Scale(1-tau, s.Weights[i])
		s.Weights[i].Add(s.Weights[i], &w)

		s.Biases[i].ScaleVec(1-tau, s.Biases[i])
		s.Biases[i].AddScaledVec(s.Biases[i], tau, source.Biases[i])
	}
	return nil
}

// Clone returns a deep copy of the Snapshot
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Weights:     make([]*mat.Dense, len(s.Weights)),
		Biases:      make([]*mat.VecDense, len(s.Biases)),
		Activations: make([]*Activation, len(s.Activations)),
	}
	for i := range s.Weights {
		c.Weights[i] = mat.DenseCopyOf(s.Weights[i])
		c.Biases[i] = mat.VecDenseCopyOf(s.Biases[i])
		c.Activations[i] = s.Activations[i]
	}
	return c
}

// Save saves the Snapshot to a gob file
func (s *Snapshot) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "save: could not create file")
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(s); err != nil {
		return errors.Wrap(err, "save: could not encode snapshot")
	}
	return file.Close()
}

// LoadSnapshot loads a Snapshot from a gob file
func LoadSnapshot(filename string) (*Snapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "loadSnapshot: could not open file")
	}
	defer file.Close()

	var s Snapshot
	if err := gob.NewDecoder(file).Decode(&s); err != nil {
		return nil, errors.Wrapf(err, "loadSnapshot: could not decode %s",
			filename)
	}
	if len(s.Weights) == 0 || len(s.Weights) != len(s.Biases) ||
		len(s.Weights) != len(s.Activations) {
		return nil, errors.Errorf("loadSnapshot: malformed snapshot in %s",
			filename)
	}
	return &s, nil
}
