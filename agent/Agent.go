// Package agent defines the interface of offline policy-learning
// agents and a registry of agent types.
//
// Concrete agents live in their own packages, which register their
// Config type with this package from an init function. A program links
// an agent type by importing its package.
package agent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/bcrunner/dataset"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns weights from an
// offline dataset, and a Policy which chooses actions in each state.
type Agent interface {
	Learner
	Policy
	Saver
}

// A Closer is an agent that must be closed after it is done learning
type Closer interface {
	Agent
	Close() error
}

// Learner implements a learning algorithm that defines how weights are
// updated.
type Learner interface {
	// Train performs exactly iterations updates, each on a minibatch
	// of batchSize transitions drawn from s. Train only modifies the
	// weights of the Learner.
	Train(s dataset.Sampler, iterations, batchSize int) error
}

// Policy represents the policy of an agent
type Policy interface {
	// SampleAction returns the action to take in state. SampleAction
	// does not modify the weights of the agent.
	SampleAction(state *mat.VecDense) (*mat.VecDense, error)
}

// Saver is an agent that can persist its weights
type Saver interface {
	// Save saves a checkpoint of the agent into directory dir
	Save(dir string) error
}
