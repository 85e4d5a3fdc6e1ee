// Package score implements normalized scoring of episodic returns.
//
// A normalized score rescales the raw return of an episode using
// environment-specific reference returns so that results on different
// environments can be compared. With reference returns Min and Max,
// a raw return r is mapped to (r - Min) / (Max - Min), so that Min
// maps to 0 and Max maps to 1.
//
// Reference returns are registered per environment family. An
// environment name belongs to a family if it starts with the family
// name followed by a dash, e.g. "walker2d-expert-v2" belongs to the
// "walker2d" family. The longest matching family wins, so that
// "maze2d-umaze-v1" resolves to "maze2d-umaze" rather than a shorter
// registered family.
package score

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownEnvironment is returned when no reference returns are
// registered for an environment
var ErrUnknownEnvironment = errors.New("no reference scores for environment")

// Normalizer maps a raw episodic return to a normalized score
type Normalizer interface {
	Normalize(raw float64) float64
}

// Func adapts an ordinary function to the Normalizer interface
type Func func(float64) float64

// Normalize implements the Normalizer interface
func (f Func) Normalize(raw float64) float64 {
	return f(raw)
}

// Reference holds the reference returns of an environment family. Min
// is usually the return of a uniformly random policy and Max the return
// of an expert policy.
type Reference struct {
	Min float64
	Max float64
}

// Normalize implements the Normalizer interface
func (r Reference) Normalize(raw float64) float64 {
	return (raw - r.Min) / (r.Max - r.Min)
}

var (
	mu         sync.RWMutex
	references = map[string]Reference{}
)

func init() {
	for family, ref := range d4rl {
		references[family] = ref
	}
}

// Register registers the reference returns of an environment family.
// Registering a family twice overwrites the earlier reference.
func Register(family string, ref Reference) error {
	if ref.Max == ref.Min {
		return errors.Errorf("register: degenerate reference for %q, "+
			"min == max == %v", family, ref.Min)
	}

	mu.Lock()
	defer mu.Unlock()
	references[family] = ref
	return nil
}

// Lookup returns the reference returns for the environment with the
// given name. If no family matches the name, the returned error wraps
// ErrUnknownEnvironment.
func Lookup(name string) (Reference, error) {
	mu.RLock()
	defer mu.RUnlock()

	if ref, ok := references[name]; ok {
		return ref, nil
	}

	best := ""
	for family := range references {
		if strings.HasPrefix(name, family+"-") && len(family) > len(best) {
			best = family
		}
	}
	if best == "" {
		return Reference{}, errors.Wrapf(ErrUnknownEnvironment, "lookup %q",
			name)
	}
	return references[best], nil
}

// Families returns the sorted names of all registered families
func Families() []string {
	mu.RLock()
	defer mu.RUnlock()

	families := make([]string, 0, len(references))
	for family := range references {
		families = append(families, family)
	}
	sort.Strings(families)
	return families
}

// IsUnknownEnvironment returns whether an error reports that an
// environment has no reference returns
func IsUnknownEnvironment(err error) bool {
	return errors.Cause(err) == ErrUnknownEnvironment
}
