package network

import (
	G "gorgonia.org/gorgonia"
)

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x = G.Must(G.Mul(x, f.weights))

	// Broadcast the bias weights to all samples along the batch
	// dimension
	x = G.Must(G.BroadcastAdd(x, f.bias, nil, []byte{0}))

	return f.act.fwd(x)
}

// in returns the number of inputs to the layer
func (f *fcLayer) in() int {
	return f.weights.Shape()[0]
}

// out returns the number of outputs of the layer
func (f *fcLayer) out() int {
	return f.weights.Shape()[1]
}
