package dataset

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Batch is a minibatch of transitions. Each row of the matrices and
// each entry of the vectors corresponds to a single transition.
type Batch struct {
	States     *mat.Dense
	Actions    *mat.Dense
	NextStates *mat.Dense
	Rewards    *mat.VecDense
	NotDones   *mat.VecDense
}

// Size returns the number of transitions in the batch
func (b Batch) Size() int {
	if b.Rewards == nil {
		return 0
	}
	return b.Rewards.Len()
}

// Sampler draws minibatches of transitions from an offline dataset
type Sampler interface {
	Sample(batchSize int) (Batch, error)
}

// UniformSampler samples transitions uniformly at random with
// replacement from the whole dataset
type UniformSampler struct {
	data    *Dataset
	rewards []float64
	tune    RewardTune
	rng     *rand.Rand
}

// NewSampler returns a new UniformSampler over d. The rewards of d are
// transformed once with tune; d itself is not modified.
func NewSampler(d *Dataset, tune RewardTune,
	seed uint64) (*UniformSampler, error) {
	if d == nil || d.Len() == 0 {
		return nil, &SampleError{Op: "newSampler", Err: ErrEmptyDataset}
	}
	if err := d.Validate(); err != nil {
		return nil, &SampleError{Op: "newSampler", Err: err}
	}

	rewards, err := tune.Apply(d.Rewards, d.NotDones)
	if err != nil {
		return nil, &SampleError{Op: "newSampler", Err: err}
	}

	return &UniformSampler{
		data:    d,
		rewards: rewards,
		tune:    tune,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// Tune returns the reward tuning mode of the sampler
func (u *UniformSampler) Tune() RewardTune {
	return u.tune
}

// Len returns the number of transitions available to the sampler
func (u *UniformSampler) Len() int {
	return u.data.Len()
}

// Sample samples a batch of batchSize transitions
func (u *UniformSampler) Sample(batchSize int) (Batch, error) {
	if batchSize <= 0 {
		return Batch{}, &SampleError{Op: "sample", Err: errBatchSize}
	}

	sDim, aDim := u.data.StateDim, u.data.ActionDim
	states := make([]float64, 0, batchSize*sDim)
	actions := make([]float64, 0, batchSize*aDim)
	nextStates := make([]float64, 0, batchSize*sDim)
	rewards := make([]float64, batchSize)
	notDones := make([]float64, batchSize)

	for i := 0; i < batchSize; i++ {
		index := u.rng.Intn(u.data.Len())

		states = append(states, u.data.States[index*sDim:(index+1)*sDim]...)
		actions = append(actions,
			u.data.Actions[index*aDim:(index+1)*aDim]...)
		nextStates = append(nextStates,
			u.data.NextStates[index*sDim:(index+1)*sDim]...)
		rewards[i] = u.rewards[index]
		notDones[i] = u.data.NotDones[index]
	}

	return Batch{
		States:     mat.NewDense(batchSize, sDim, states),
		Actions:    mat.NewDense(batchSize, aDim, actions),
		NextStates: mat.NewDense(batchSize, sDim, nextStates),
		Rewards:    mat.NewVecDense(batchSize, rewards),
		NotDones:   mat.NewVecDense(batchSize, notDones),
	}, nil
}

// Counter wraps a Sampler and calls a function after every sample
type Counter struct {
	Sampler
	onSample func()
}

// NewCounter returns a Sampler that calls onSample after every
// successful call to s.Sample
func NewCounter(s Sampler, onSample func()) *Counter {
	return &Counter{Sampler: s, onSample: onSample}
}

// Sample implements the Sampler interface
func (c *Counter) Sample(batchSize int) (Batch, error) {
	b, err := c.Sampler.Sample(batchSize)
	if err == nil && c.onSample != nil {
		c.onSample()
	}
	return b, errors.WithMessage(err, "counter")
}
