package experiment

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/bcrunner/dataset"
	"github.com/samuelfneumann/bcrunner/environment"
	ts "github.com/samuelfneumann/bcrunner/timestep"
)

// fakeEnv is a single-step environment whose episode i has return
// returns[i % len(returns)]. If endless, episodes never end.
type fakeEnv struct {
	returns []float64
	endless bool
	noScore bool

	seed     uint64
	episode  int
	stepNum  int
	closed   bool
	stepping bool
}

func (f *fakeEnv) Seed(seed uint64) { f.seed = seed }

func (f *fakeEnv) Reset() (ts.TimeStep, error) {
	f.stepNum = 0
	f.stepping = true
	return ts.New(ts.First, 0, 1, mat.NewVecDense(1, nil), 0), nil
}

func (f *fakeEnv) Step(*mat.VecDense) (ts.TimeStep, bool, error) {
	if !f.stepping {
		return ts.TimeStep{}, false, errors.New("step before reset")
	}
	f.stepNum++
	obs := mat.NewVecDense(1, nil)
	if f.endless {
		return ts.New(ts.Mid, 0, 1, obs, f.stepNum), false, nil
	}

	r := f.returns[f.episode%len(f.returns)]
	f.episode++
	f.stepping = false
	return ts.New(ts.Last, r, 0, obs, f.stepNum), true, nil
}

func (f *fakeEnv) NormalizedScore(raw float64) (float64, error) {
	if f.noScore {
		return 0, errors.New("no reference")
	}
	return raw / 100, nil
}

func (f *fakeEnv) ObservationSpec() environment.Spec {
	return spec(environment.Observation)
}

func (f *fakeEnv) ActionSpec() environment.Spec {
	return spec(environment.Action)
}

func (f *fakeEnv) Close() error {
	f.closed = true
	return nil
}

func spec(t environment.SpecType) environment.Spec {
	return environment.NewSpec(mat.NewVecDense(1, nil), t,
		mat.NewVecDense(1, []float64{-1}), mat.NewVecDense(1, []float64{1}),
		environment.Continuous)
}

// fakeMaker records every environment it makes. If shift, the k-th
// environment made starts from episode k.
type fakeMaker struct {
	returns []float64
	shift   bool
	made    []*fakeEnv
}

func (m *fakeMaker) Make(string) (environment.Environment, error) {
	env := &fakeEnv{returns: m.returns}
	if m.shift {
		env.episode = len(m.made)
	}
	m.made = append(m.made, env)
	return env, nil
}

// fakeAgent accumulates the rewards of every sampled batch into its
// single weight. Its policy samples actions from its own source of
// randomness.
type fakeAgent struct {
	weight     float64
	trainCalls []int
	actions    int
	saves      int
	rng        *rand.Rand
	noSample   bool
	trainErr   error
}

func newFakeAgent(seed uint64) *fakeAgent {
	return &fakeAgent{rng: rand.New(rand.NewSource(seed))}
}

func (f *fakeAgent) Train(s dataset.Sampler, iterations,
	batchSize int) error {
	f.trainCalls = append(f.trainCalls, iterations)
	if f.trainErr != nil {
		return f.trainErr
	}
	if f.noSample {
		return nil
	}
	for i := 0; i < iterations; i++ {
		b, err := s.Sample(batchSize)
		if err != nil {
			return err
		}
		f.weight += mat.Sum(b.Rewards)
	}
	return nil
}

func (f *fakeAgent) SampleAction(*mat.VecDense) (*mat.VecDense, error) {
	f.actions++
	return mat.NewVecDense(1, []float64{f.rng.Float64()}), nil
}

func (f *fakeAgent) Save(string) error {
	f.saves++
	return nil
}

// fakeDataset returns a dataset with n transitions with rewards
// 0, 1, ..., n-1
func fakeDataset(n int) *dataset.Dataset {
	d := dataset.New(1, 1)
	for i := 0; i < n; i++ {
		err := d.Add(ts.Transition{
			State:     mat.NewVecDense(1, []float64{float64(i)}),
			Action:    mat.NewVecDense(1, []float64{0}),
			Reward:    float64(i),
			NextState: mat.NewVecDense(1, []float64{float64(i + 1)}),
		})
		if err != nil {
			panic(err)
		}
	}
	return d
}
