package decoder

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mdreader/llmstream/internal/provider"
)

// Factory builds a fresh Decoder for one request.
type Factory func() Decoder

// Registry maps provider kinds to decoder factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[provider.Kind]Factory
}

var getGlobalRegistry = sync.OnceValue(func() *Registry {
	return &Registry{factories: make(map[provider.Kind]Factory)}
})

// GetRegistry returns the process-wide registry populated by init
// registration in this package.
func GetRegistry() *Registry {
	return getGlobalRegistry()
}

// Register installs a factory for kind, replacing any previous one.
func (r *Registry) Register(kind provider.Kind, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// New builds a decoder for kind.
func (r *Registry) New(kind provider.Kind) (Decoder, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("decoder: no decoder registered for provider %q", kind)
	}
	return f(), nil
}

// Kinds returns the registered provider kinds in sorted order.
func (r *Registry) Kinds() []provider.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]provider.Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Register installs a factory in the global registry.
func Register(kind provider.Kind, f Factory) {
	GetRegistry().Register(kind, f)
}

// New builds a decoder for kind from the global registry.
func New(kind provider.Kind) (Decoder, error) {
	return GetRegistry().New(kind)
}

// Kinds lists the provider kinds the global registry can decode.
func Kinds() []provider.Kind {
	return GetRegistry().Kinds()
}
