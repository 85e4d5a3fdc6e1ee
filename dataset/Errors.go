package dataset

import "github.com/pkg/errors"

// SampleError implements errors unique to sampling from an offline
// dataset
type SampleError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *SampleError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Cause returns the underlying error so that errors.Cause can unwrap
// a SampleError
func (e *SampleError) Cause() error { return e.Err }

// Unwrap supports errors.Is and errors.As from the standard library
func (e *SampleError) Unwrap() error { return e.Err }

// ErrEmptyDataset is returned when sampling from or tuning the rewards
// of a dataset with no transitions
var ErrEmptyDataset = errors.New("dataset empty")

// ErrUnknownRewardTune is returned when a reward tuning mode is not
// recognized
var ErrUnknownRewardTune = errors.New("unknown reward tune")

var errBatchSize = errors.New("batch size must be positive")

// IsEmptyDataset returns whether or not an error reports that a
// dataset is empty.
func IsEmptyDataset(err error) bool {
	if sampleErr, ok := err.(*SampleError); ok {
		err = sampleErr.Err
	}
	return errors.Cause(err) == ErrEmptyDataset
}
