// Package op provides extended Gorgonia graph operations.
package op

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MSE returns the mean squared error between the prediction and the
// target, averaged over all elements
func MSE(prediction, target *G.Node) (*G.Node, error) {
	diff, err := G.Sub(prediction, target)
	if err != nil {
		return nil, err
	}
	sq, err := G.Square(diff)
	if err != nil {
		return nil, err
	}
	return G.Mean(sq)
}

// Columns returns columns [from, to) of the matrix x as a matrix. Unlike
// slicing, the result is always a matrix, even when a single column or
// a single row is selected.
func Columns(x *G.Node, from, to int) (*G.Node, error) {
	if !x.IsMatrix() {
		return nil, fmt.Errorf("columns: expected a matrix, got shape %v",
			x.Shape())
	}
	cols := x.Shape()[1]
	if from < 0 || to > cols || from >= to {
		return nil, fmt.Errorf("columns: illegal range [%d, %d) for %d "+
			"columns", from, to, cols)
	}

	backing := make([]float64, cols*(to-from))
	for j := from; j < to; j++ {
		backing[j*(to-from)+j-from] = 1
	}
	selector := G.NewMatrix(x.Graph(), tensor.Float64,
		G.WithShape(cols, to-from),
		G.WithName(fmt.Sprintf("%v[:, %d:%d]", x.Name(), from, to)),
		G.WithValue(tensor.New(tensor.WithShape(cols, to-from),
			tensor.WithBacking(backing))))

	return G.Mul(x, selector)
}

// Squash maps each element of x into [min, max] with a scaled tanh
func Squash(x *G.Node, min, max float64) (*G.Node, error) {
	x, err := G.Tanh(x)
	if err != nil {
		return nil, err
	}
	if x, err = G.Add(x, G.NewConstant(1.0)); err != nil {
		return nil, err
	}
	if x, err = G.Mul(x, G.NewConstant(0.5*(max-min))); err != nil {
		return nil, err
	}
	return G.Add(x, G.NewConstant(min))
}

// GaussianNLL returns the element-wise negative log-likelihood of
// actions under independent Gaussians with the given means and log
// standard deviations, up to the constant ½log(2π):
//
//	½((a - μ) / σ)² + log σ
//
// All nodes must have the same shape.
func GaussianNLL(mean, logStd, actions *G.Node) *G.Node {
	graph := mean.Graph()
	if graph != logStd.Graph() || graph != actions.Graph() {
		panic("gaussianNLL: all nodes must share the same graph")
	}

	z := G.Must(G.HadamardDiv(G.Must(G.Sub(actions, mean)),
		G.Must(G.Exp(logStd))))
	nll := G.Must(G.Mul(G.Must(G.Square(z)), G.NewConstant(0.5)))
	return G.Must(G.Add(nll, logStd))
}
