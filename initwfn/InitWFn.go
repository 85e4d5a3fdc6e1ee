// Package initwfn implements functionality to wrap Gorgonia InitWFn
// so that they can be JSON serialized into configuration files.
//
// Random initializers can be created either from Gorgonia's own
// initializers, which draw from the global random source, or from a
// seeded source so that networks are initialized reproducibly.
package initwfn

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Type describes different types of InitWFn that are available.
// Type is used to implement a basic type system of InitWFn's.
type Type string

// Available InitWFn types
const (
	GlorotU  Type = "GlorotU"
	GlorotN  Type = "GlorotN"
	HeU      Type = "HeU"
	HeN      Type = "HeN"
	Zeroes   Type = "Zeroes"
	Ones     Type = "Ones"
	Constant Type = "Constant"
	Gaussian Type = "Gaussian"
	Uniform  Type = "Uniform"
)

var configTypes = map[Type]reflect.Type{
	GlorotU:  reflect.TypeOf(GlorotUConfig{}),
	GlorotN:  reflect.TypeOf(GlorotNConfig{}),
	HeU:      reflect.TypeOf(HeUConfig{}),
	HeN:      reflect.TypeOf(HeNConfig{}),
	Zeroes:   reflect.TypeOf(ZeroesConfig{}),
	Ones:     reflect.TypeOf(OnesConfig{}),
	Constant: reflect.TypeOf(ConstantConfig{}),
	Gaussian: reflect.TypeOf(GaussianConfig{}),
	Uniform:  reflect.TypeOf(UniformConfig{}),
}

// Config implements a Gorgonia InitWFn configuration and can be used to
// create the described Gorgonia InitWFn's.
type Config interface {
	// Create returns the Gorgonia InitWFn that the Config describes.
	// If src is nil, Gorgonia's initializer is returned.
	Create(src rand.Source) G.InitWFn

	// Type returns the type of Gorgonia InitWFn that is returned
	Type() Type
}

// InitWFn wraps Gorgonia InitWFn so that they can be JSON marshalled and
// unmarshalled.
type InitWFn struct {
	Type
	Config
}

// New returns a new InitWFn
func New(c Config) *InitWFn {
	return &InitWFn{Type: c.Type(), Config: c}
}

// InitWFn returns the wrapped Gorgonia InitWFn, drawing random values
// from Gorgonia's global source
func (w *InitWFn) InitWFn() G.InitWFn {
	return w.Config.Create(nil)
}

// Seeded returns the wrapped Gorgonia InitWFn, drawing random values
// from a source seeded with seed
func (w *InitWFn) Seeded(seed uint64) G.InitWFn {
	return w.Config.Create(rand.NewSource(seed))
}

// String implements the fmt.Stringer interface
func (w *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", w.Type, w.Config)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (w *InitWFn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "unmarshalJSON")
	}

	ty, ok := configTypes[raw.Type]
	if !ok {
		return errors.Errorf("unmarshalJSON: unknown InitWFn type %q",
			raw.Type)
	}

	value := reflect.New(ty)
	if len(raw.Config) > 0 && string(raw.Config) != "null" {
		if err := json.Unmarshal(raw.Config, value.Interface()); err != nil {
			return errors.Wrapf(err, "unmarshalJSON: %v config", raw.Type)
		}
	}

	w.Type = raw.Type
	w.Config = value.Elem().Interface().(Config)
	return nil
}

// values fills a new []float64 of the size given by shape with draws
// from rnd
func values(dt tensor.Dtype, shape []int, rnd func() float64) interface{} {
	if dt != tensor.Float64 {
		panic(fmt.Sprintf("initwfn: only float64 is supported, got %v", dt))
	}

	size := 1
	for _, s := range shape {
		size *= s
	}

	v := make([]float64, size)
	for i := range v {
		v[i] = rnd()
	}
	return v
}

// fans returns the fan in and fan out of a weight tensor
func fans(shape []int) (float64, float64) {
	switch len(shape) {
	case 0:
		return 1, 1
	case 1:
		return float64(shape[0]), float64(shape[0])
	default:
		receptive := 1
		for _, s := range shape[2:] {
			receptive *= s
		}
		return float64(shape[0] * receptive), float64(shape[1] * receptive)
	}
}
