// Package checkpointer implements the selection of which evaluated
// policies are checkpointed during an experiment
package checkpointer

import "github.com/samuelfneumann/bcrunner/experiment/tracker"

// Saver is an object which can save itself to a directory
type Saver interface {
	Save(dir string) error
}

// Checkpointer decides, given the evaluation of a policy at some
// epoch, whether or not to checkpoint the policy. Consider reports
// whether the policy was checkpointed.
type Checkpointer interface {
	Consider(e tracker.Evaluation, epoch int) (bool, error)
}
