// Package probe defines the pluggable discovery source contract and its
// implementations. Each probe is an independent strategy mapping a company
// name plus hints to an optional URL or record with a confidence score.
package probe

import (
	"context"
	"sync"

	"github.com/sells-group/prospect-scout/internal/model"
)

// Probe is one discovery source. Implementations must respect ctx deadlines
// and must not block past them; an unimplemented or unconfigured probe
// returns an empty zero-confidence result rather than an error.
type Probe interface {
	Name() string
	Discover(ctx context.Context, companyName string, hints model.Hints) (model.ProbeResult, error)
}

// Registry holds probes by name.
type Registry struct {
	mu     sync.RWMutex
	probes map[string]Probe
}

// NewRegistry creates a Registry from the given probes.
func NewRegistry(probes ...Probe) *Registry {
	r := &Registry{probes: make(map[string]Probe, len(probes))}
	for _, p := range probes {
		r.probes[p.Name()] = p
	}
	return r
}

// Register adds or replaces a probe.
func (r *Registry) Register(p Probe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes[p.Name()] = p
}

// Get returns the named probe, or nil.
func (r *Registry) Get(name string) Probe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.probes[name]
}

// Names returns the registered probe names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.probes))
	for name := range r.probes {
		names = append(names, name)
	}
	return names
}
