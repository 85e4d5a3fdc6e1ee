package bc

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ScheduleType determines how the noise variances of the forward
// diffusion process change over the diffusion steps
type ScheduleType string

const (
	Linear ScheduleType = "linear"
	Cosine ScheduleType = "cosine"
	VP     ScheduleType = "vp" // Variance preserving
)

// schedule holds the per-step constants of a diffusion process with T
// steps. Index i corresponds to diffusion step i+1.
type schedule struct {
	betas         []float64
	alphasCumprod []float64

	sqrtAlphasCumprod          []float64
	sqrtOneMinusAlphasCumprod  []float64
	sqrtRecipAlphasCumprod     []float64
	sqrtRecipm1AlphasCumprod   []float64
	posteriorLogVarianceClip   []float64
	posteriorMeanCoefficientX0 []float64
	posteriorMeanCoefficientXt []float64
}

// newSchedule computes the constants of a diffusion process with T
// steps and the given schedule type
func newSchedule(t ScheduleType, T int) (*schedule, error) {
	if T <= 0 {
		return nil, errors.Errorf("newSchedule: T must be positive, got %v", T)
	}

	var betas []float64
	switch t {
	case Linear:
		betas = linearBetas(T)
	case Cosine:
		betas = cosineBetas(T)
	case VP:
		betas = vpBetas(T)
	default:
		return nil, errors.Errorf("newSchedule: unknown beta schedule %q", t)
	}

	s := &schedule{betas: betas}
	s.alphasCumprod = make([]float64, T)
	prod := 1.0
	for i, beta := range betas {
		prod *= 1 - beta
		s.alphasCumprod[i] = prod
	}

	s.sqrtAlphasCumprod = make([]float64, T)
	s.sqrtOneMinusAlphasCumprod = make([]float64, T)
	s.sqrtRecipAlphasCumprod = make([]float64, T)
	s.sqrtRecipm1AlphasCumprod = make([]float64, T)
	s.posteriorLogVarianceClip = make([]float64, T)
	s.posteriorMeanCoefficientX0 = make([]float64, T)
	s.posteriorMeanCoefficientXt = make([]float64, T)

	for i := 0; i < T; i++ {
		ac := s.alphasCumprod[i]
		acPrev := 1.0
		if i > 0 {
			acPrev = s.alphasCumprod[i-1]
		}
		beta := betas[i]

		s.sqrtAlphasCumprod[i] = math.Sqrt(ac)
		s.sqrtOneMinusAlphasCumprod[i] = math.Sqrt(1 - ac)
		s.sqrtRecipAlphasCumprod[i] = math.Sqrt(1 / ac)
		s.sqrtRecipm1AlphasCumprod[i] = math.Sqrt(1/ac - 1)

		variance := beta * (1 - acPrev) / (1 - ac)
		s.posteriorLogVarianceClip[i] = math.Log(math.Max(variance, 1e-20))
		s.posteriorMeanCoefficientX0[i] = beta * math.Sqrt(acPrev) / (1 - ac)
		s.posteriorMeanCoefficientXt[i] = (1 - acPrev) *
			math.Sqrt(1-beta) / (1 - ac)
	}
	return s, nil
}

// steps returns the number of diffusion steps
func (s *schedule) steps() int {
	return len(s.betas)
}

func linearBetas(T int) []float64 {
	const start, end = 1e-4, 2e-2
	betas := make([]float64, T)
	if T == 1 {
		betas[0] = start
		return betas
	}
	return floats.Span(betas, start, end)
}

func cosineBetas(T int) []float64 {
	const s = 0.008
	steps := T + 1

	alphasCumprod := make([]float64, steps)
	for i := range alphasCumprod {
		x := float64(i) / float64(T)
		alphasCumprod[i] = math.Pow(math.Cos((x+s)/(1+s)*math.Pi*0.5), 2)
	}
	floats.Scale(1/alphasCumprod[0], alphasCumprod)

	betas := make([]float64, T)
	for i := range betas {
		beta := 1 - alphasCumprod[i+1]/alphasCumprod[i]
		betas[i] = math.Min(math.Max(beta, 0), 0.999)
	}
	return betas
}

func vpBetas(T int) []float64 {
	const bMax, bMin = 10.0, 0.1
	t := float64(T)

	betas := make([]float64, T)
	for i := range betas {
		step := float64(i + 1)
		alpha := math.Exp(-bMin/t - 0.5*(bMax-bMin)*(2*step-1)/(t*t))
		betas[i] = 1 - alpha
	}
	return betas
}
