// Package contender names the column materialization strategies the
// benchmark compares and resolves user-supplied selections against the
// built-in registry.
package contender

import (
	"fmt"
	"strings"

	"github.com/iamkarasik/hardwood/internal/errors"
	"github.com/iamkarasik/hardwood/internal/source"
)

// Contender is one reader strategy under measurement.
type Contender struct {
	Key         string
	DisplayName string
	Parallel    bool
}

// All selects every registered contender.
const All = "all"

// registry lists the built-in contenders in presentation order.
var registry = []Contender{
	{Key: "single_threaded", DisplayName: "Go (single-threaded)", Parallel: false},
	{Key: "multi_threaded", DisplayName: "Go (multi-threaded)", Parallel: true},
}

// Registered returns the built-in contenders in registry order.
func Registered() []Contender {
	out := make([]Contender, len(registry))
	copy(out, registry)
	return out
}

// Keys returns the registered contender keys in registry order.
func Keys() []string {
	keys := make([]string, len(registry))
	for i, c := range registry {
		keys[i] = c.Key
	}
	return keys
}

// Resolve maps requested names onto registered contenders. An empty list
// selects every contender, as does the name "all", which expands in place.
// Names resolve in request order with duplicates preserved, and the first
// unknown name fails before any data is touched.
func Resolve(names []string) ([]Contender, error) {
	if len(names) == 0 {
		return Registered(), nil
	}

	out := make([]Contender, 0, len(names))
	for _, name := range names {
		key := strings.TrimSpace(name)
		if strings.EqualFold(key, All) {
			out = append(out, registry...)
			continue
		}
		c, ok := lookup(key)
		if !ok {
			valid := strings.Join(append(Keys(), All), ", ")
			return nil, errors.NewConfigError(errors.CodeUnknownContender,
				fmt.Sprintf("unknown contender %q (valid values: %s)", name, valid))
		}
		out = append(out, c)
	}
	return out, nil
}

func lookup(key string) (Contender, bool) {
	for _, c := range registry {
		if c.Key == key {
			return c, true
		}
	}
	return Contender{}, false
}

// Hint maps the contender onto the reader concurrency it benchmarks.
func (c Contender) Hint() source.ConcurrencyHint {
	if c.Parallel {
		return source.MaxParallelism()
	}
	return source.SingleThreaded
}

// Cores returns the number of CPU cores the contender is expected to use,
// which per-core throughput is normalized against.
func (c Contender) Cores() int {
	return c.Hint().Workers()
}
