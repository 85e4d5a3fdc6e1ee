// Package network implements multi-layered perceptrons.
//
// An MLP is built on a Gorgonia computational graph and trained there.
// Its weights can be copied into a Snapshot, which computes the same
// function with Gonum matrices and is used for inference, target
// networks, and checkpoints.
package network

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP implements a multi-layered perceptron on a computational graph
type MLP struct {
	g      *G.ExprGraph
	layers []*fcLayer
	input  *G.Node

	prediction *G.Node
	predVal    G.Value

	learnables G.Nodes
}

// NewMLP creates and returns a new multi-layered perceptron with its
// input at the given node, which must be a matrix with one row per
// sample. The MLP has len(hiddenSizes) + 1 layers: for index i,
// hiddenSizes[i] is the number of nodes in hidden layer i and
// activations[i] its activation. A final linear layer of size outputs
// is always added. Every layer has a bias unit. Weights are
// initialized with init and biases with zeroes. Node names are
// prefixed by prefix so that many MLPs can share a graph.
func NewMLP(input *G.Node, outputs int, hiddenSizes []int,
	activations []*Activation, init G.InitWFn, prefix string) (*MLP, error) {
	if len(hiddenSizes) != len(activations) {
		return nil, errors.Errorf("newMLP: invalid number of activations"+
			"\n\twant(%d)\n\thave(%d)", len(hiddenSizes), len(activations))
	}
	if !input.IsMatrix() {
		return nil, errors.New("newMLP: input must be a matrix")
	}
	if outputs <= 0 {
		return nil, errors.Errorf("newMLP: outputs must be positive, got %d",
			outputs)
	}

	g := input.Graph()
	sizes := append(append([]int{}, hiddenSizes...), outputs)
	acts := append(append([]*Activation{}, activations...), Identity())

	layers := make([]*fcLayer, len(sizes))
	in := input.Shape()[1]
	for i, out := range sizes {
		weights := G.NewMatrix(g, tensor.Float64, G.WithShape(in, out),
			G.WithName(fmt.Sprintf("%sL%dW", prefix, i)), G.WithInit(init))
		bias := G.NewVector(g, tensor.Float64, G.WithShape(out),
			G.WithName(fmt.Sprintf("%sL%dB", prefix, i)),
			G.WithInit(G.Zeroes()))

		layers[i] = &fcLayer{weights: weights, bias: bias, act: acts[i]}
		in = out
	}

	m := &MLP{g: g, layers: layers, input: input}
	if err := m.fwd(); err != nil {
		return nil, errors.Wrap(err, "newMLP")
	}
	return m, nil
}

// fwd performs the forward pass of the MLP on the input node
func (m *MLP) fwd() error {
	pred := m.input
	var err error
	for i, l := range m.layers {
		if pred, err = l.fwd(pred); err != nil {
			return errors.Wrapf(err, "fwd: could not compute forward pass "+
				"of layer %v", i)
		}
	}

	m.prediction = pred
	G.Read(m.prediction, &m.predVal)
	return nil
}

// Graph returns the computational graph of the MLP
func (m *MLP) Graph() *G.ExprGraph {
	return m.g
}

// Input returns the input node of the MLP
func (m *MLP) Input() *G.Node {
	return m.input
}

// Prediction returns the node of the computational graph that stores
// the output of the MLP
func (m *MLP) Prediction() *G.Node {
	return m.prediction
}

// Output returns the value of the output of the MLP after the graph
// has been run
func (m *MLP) Output() G.Value {
	return m.predVal
}

// Features returns the number of inputs of a single sample
func (m *MLP) Features() int {
	return m.layers[0].in()
}

// Outputs returns the number of outputs of a single sample
func (m *MLP) Outputs() int {
	return m.layers[len(m.layers)-1].out()
}

// Learnables returns the learnable nodes in the MLP
func (m *MLP) Learnables() G.Nodes {
	// Lazy instantiation
	if m.learnables == nil {
		learnables := make(G.Nodes, 0, 2*len(m.layers))
		for _, l := range m.layers {
			learnables = append(learnables, l.weights, l.bias)
		}
		m.learnables = learnables
	}
	return m.learnables
}

// Model returns the learnables nodes with their gradients.
func (m *MLP) Model() []G.ValueGrad {
	return G.NodesToValueGrads(m.Learnables())
}

// Snapshot copies the current weights of the MLP into a Snapshot
func (m *MLP) Snapshot() (*Snapshot, error) {
	s := &Snapshot{
		Weights:     make([]*mat.Dense, len(m.layers)),
		Biases:      make([]*mat.VecDense, len(m.layers)),
		Activations: make([]*Activation, len(m.layers)),
	}

	for i, l := range m.layers {
		w, err := values(l.weights)
		if err != nil {
			return nil, errors.Wrapf(err, "snapshot: layer %d weights", i)
		}
		b, err := values(l.bias)
		if err != nil {
			return nil, errors.Wrapf(err, "snapshot: layer %d bias", i)
		}

		s.Weights[i] = mat.NewDense(l.in(), l.out(), w)
		s.Biases[i] = mat.NewVecDense(l.out(), b)
		s.Activations[i] = l.act
	}
	return s, nil
}

// Set sets the weights of the MLP to those of a Snapshot
func (m *MLP) Set(s *Snapshot) error {
	if len(s.Weights) != len(m.layers) {
		return errors.Errorf("set: snapshot has %d layers, MLP has %d",
			len(s.Weights), len(m.layers))
	}

	for i, l := range m.layers {
		r, c := s.Weights[i].Dims()
		if r != l.in() || c != l.out() {
			return errors.Errorf("set: layer %d weights should be %dx%d, "+
				"got %dx%d", i, l.in(), l.out(), r, c)
		}

		w := tensor.New(tensor.WithShape(r, c),
			tensor.WithBacking(mat.DenseCopyOf(s.Weights[i]).RawMatrix().Data))
		if err := G.Let(l.weights, w); err != nil {
			return errors.Wrapf(err, "set: layer %d weights", i)
		}

		bias := make([]float64, c)
		copy(bias, s.Biases[i].RawVector().Data)
		b := tensor.New(tensor.WithShape(c), tensor.WithBacking(bias))
		if err := G.Let(l.bias, b); err != nil {
			return errors.Wrapf(err, "set: layer %d bias", i)
		}
	}
	return nil
}

// values returns a copy of the float64 values stored in a node
func values(n *G.Node) ([]float64, error) {
	t, ok := n.Value().(*tensor.Dense)
	if !ok {
		return nil, errors.Errorf("node %v has no dense value", n.Name())
	}
	data, ok := t.Data().([]float64)
	if !ok {
		return nil, errors.Errorf("node %v is not float64", n.Name())
	}

	out := make([]float64, len(data))
	copy(out, data)
	return out, nil
}
