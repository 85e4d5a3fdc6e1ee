package environment

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownEnvironment is returned by Make when no registered Maker
// can construct an environment with the requested name
var ErrUnknownEnvironment = errors.New("unknown environment")

// Maker constructs a fresh, unseeded Environment with the given name
type Maker func(name string) (Environment, error)

// Registered makers. Environment packages register themselves in their
// init functions so that importing a package makes its environments
// available through Make. No environments are registered by this
// package.
var (
	mu       sync.RWMutex
	makers   = map[string]Maker{}
	prefixes = map[string]Maker{}
)

// Register registers a Maker for the environment with the exact name
func Register(name string, m Maker) {
	mu.Lock()
	defer mu.Unlock()
	makers[name] = m
}

// RegisterPrefix registers a Maker for every environment name that
// starts with prefix. Exact registrations take precedence over prefix
// registrations, and longer prefixes take precedence over shorter ones.
func RegisterPrefix(prefix string, m Maker) {
	mu.Lock()
	defer mu.Unlock()
	prefixes[prefix] = m
}

// Make constructs a fresh Environment with the given name. A new
// Environment is returned on every call, so that environments are never
// shared between callers.
func Make(name string) (Environment, error) {
	mu.RLock()
	maker, ok := makers[name]
	if !ok {
		best := ""
		for prefix, m := range prefixes {
			if strings.HasPrefix(name, prefix) && len(prefix) > len(best) {
				best, maker = prefix, m
			}
		}
		ok = best != ""
	}
	mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownEnvironment, "make %q", name)
	}

	env, err := maker(name)
	if err != nil {
		return nil, errors.Wrapf(err, "make %q", name)
	}
	return env, nil
}

// Registered returns the sorted exact names and prefixes that Make can
// construct environments for
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(makers)+len(prefixes))
	for name := range makers {
		names = append(names, name)
	}
	for prefix := range prefixes {
		names = append(names, prefix+"*")
	}
	sort.Strings(names)
	return names
}
