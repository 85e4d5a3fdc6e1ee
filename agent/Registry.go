package agent

import (
	"encoding/json"
	"reflect"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Type represents a specific type of an agent Config.
// Config's with this type can create Agents of the corresponding type.
type Type string

const (
	BC     Type = "bc"      // Diffusion policy behaviour cloning
	BCMLE  Type = "bc_mle"  // Gaussian maximum likelihood
	BCCVAE Type = "bc_cvae" // Conditional VAE
	BCKL   Type = "bc_kl"
	BCMMD  Type = "bc_mmd"
	BCW    Type = "bc_w" // Wasserstein
	BCGAN  Type = "bc_gan"
	BCGAN2 Type = "bc_gan2"
)

// Types returns every known agent type, whether or not it is
// registered
func Types() []Type {
	return []Type{BC, BCMLE, BCCVAE, BCKL, BCMMD, BCW, BCGAN, BCGAN2}
}

// ErrUnknownType is returned when an agent type is not known or its
// package is not linked into the program
var ErrUnknownType = errors.New("unknown agent type")

// Registered types with the package. Once a Type has been registered
// with this map, a Config with that type can be created.
//
// No Type's are registered with this package upon initialization.
// Each separate package is in charge of registering its Type with
// the package separately to avoid circular imports.
var (
	mu              sync.RWMutex
	registeredTypes = map[Type]reflect.Type{}
)

// Register registers an agent's Type with a concrete Config type so
// that Configs of that Type can be created and deserialized.
func Register(agentType Type, config Config) {
	mu.Lock()
	defer mu.Unlock()
	registeredTypes[agentType] = reflect.TypeOf(config)
}

// Registered returns the sorted registered agent types
func Registered() []Type {
	mu.RLock()
	defer mu.RUnlock()

	types := make([]Type, 0, len(registeredTypes))
	for t := range registeredTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// lookup returns the concrete Config type registered for t
func lookup(t Type) (reflect.Type, error) {
	mu.RLock()
	ty, ok := registeredTypes[t]
	mu.RUnlock()
	if ok {
		return ty, nil
	}

	for _, known := range Types() {
		if known == t {
			return nil, errors.Wrapf(ErrUnknownType, "%q is not linked "+
				"into this program", t)
		}
	}
	return nil, errors.Wrapf(ErrUnknownType, "%q", t)
}

// NewConfig returns the default Config of agent type t configured with
// base and hp
func NewConfig(t Type, base Base, hp Hyperparameters) (Config, error) {
	ty, err := lookup(t)
	if err != nil {
		return nil, errors.Wrap(err, "newConfig")
	}

	config := reflect.Zero(ty).Interface().(Config)
	return config.Configure(base, hp), nil
}

// Create validates a Config and creates the agent it describes. The
// Config's Type must be registered.
func Create(config Config, seed uint64) (Agent, error) {
	if _, err := lookup(config.Type()); err != nil {
		return nil, errors.Wrap(err, "create")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "create: invalid %v config",
			config.Type())
	}

	a, err := config.Create(seed)
	if err != nil {
		return nil, errors.Wrapf(err, "create: %v", config.Type())
	}
	return a, nil
}

// IsUnknownType returns whether an error reports an unknown agent type
func IsUnknownType(err error) bool {
	return errors.Cause(err) == ErrUnknownType
}

// TypedConfig implements functionality for typing a Config. In this
// way, a Config can explicitly have its type stored so that when
// deserializing the Config, we can deserialize it into its concrete
// type without knowing beforehand its concrete type.
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig types the argument Config
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "unmarshalJSON")
	}

	ty, err := lookup(raw.Type)
	if err != nil {
		return errors.Wrap(err, "unmarshalJSON")
	}

	value := reflect.New(ty)
	if err := json.Unmarshal(raw.Config, value.Interface()); err != nil {
		return errors.Wrapf(err, "unmarshalJSON: %v config", raw.Type)
	}

	t.Type = raw.Type
	t.Config = value.Elem().Interface().(Config)
	return nil
}
