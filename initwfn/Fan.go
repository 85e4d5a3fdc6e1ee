package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// GlorotUConfig implements a configuration of the Glorot Uniform
// initialization algorithm.
type GlorotUConfig struct {
	Gain float64
}

// NewGlorotU returns a new Glorot Uniform weight initializer
func NewGlorotU(gain float64) *InitWFn {
	return New(GlorotUConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotUConfig) Type() Type {
	return GlorotU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GlorotUConfig) Create(src rand.Source) G.InitWFn {
	if src == nil {
		return G.GlorotU(g.Gain)
	}
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, out := fans(s)
		limit := g.Gain * math.Sqrt(6/(in+out))
		dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}
		return values(dt, s, dist.Rand)
	}
}

// GlorotNConfig implements a configuration of the Glorot Normal
// initialization algorithm.
type GlorotNConfig struct {
	Gain float64
}

// NewGlorotN returns a new Glorot Normal weight initializer.
func NewGlorotN(gain float64) *InitWFn {
	return New(GlorotNConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by the
// configuration.
func (g GlorotNConfig) Type() Type {
	return GlorotN
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GlorotNConfig) Create(src rand.Source) G.InitWFn {
	if src == nil {
		return G.GlorotN(g.Gain)
	}
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, out := fans(s)
		std := g.Gain * math.Sqrt(2/(in+out))
		dist := distuv.Normal{Mu: 0, Sigma: std, Src: src}
		return values(dt, s, dist.Rand)
	}
}

// HeUConfig implements a configuration of the He uniform
// initialization algorithm.
type HeUConfig struct {
	Gain float64
}

// NewHeU returns a new He Uniform weight initializer
func NewHeU(gain float64) *InitWFn {
	return New(HeUConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeUConfig) Type() Type {
	return HeU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (h HeUConfig) Create(src rand.Source) G.InitWFn {
	if src == nil {
		return G.HeU(h.Gain)
	}
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, _ := fans(s)
		limit := h.Gain * math.Sqrt(3/in)
		dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}
		return values(dt, s, dist.Rand)
	}
}

// HeNConfig implements a configuration of the He normal
// initialization algorithm.
type HeNConfig struct {
	Gain float64
}

// NewHeN returns a new He Normal weight initializer
func NewHeN(gain float64) *InitWFn {
	return New(HeNConfig{Gain: gain})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeNConfig) Type() Type {
	return HeN
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (h HeNConfig) Create(src rand.Source) G.InitWFn {
	if src == nil {
		return G.HeN(h.Gain)
	}
	return func(dt tensor.Dtype, s ...int) interface{} {
		in, _ := fans(s)
		dist := distuv.Normal{Mu: 0, Sigma: h.Gain / math.Sqrt(in), Src: src}
		return values(dt, s, dist.Rand)
	}
}
