package preview

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("preview not found")
	ErrEmptyName = errors.New("preview name is empty")
)

// Registry keeps the bytes behind every live preview handle so they can be
// served back to the browser until the owning attachment goes away.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	name        string
	contentType string
	data        []byte
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Handle is a revocable view on staged bytes. Release is safe to call more
// than once; only the first call has an effect.
type Handle struct {
	id       string
	registry *Registry
	once     sync.Once
}

func (r *Registry) Allocate(name, contentType string, data []byte) (*Handle, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	id := uuid.NewString()

	r.mu.Lock()
	r.entries[id] = entry{name: name, contentType: contentType, data: data}
	r.mu.Unlock()

	return &Handle{id: id, registry: r}, nil
}

func (h *Handle) ID() string {
	if h == nil {
		return ""
	}
	return h.id
}

func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.registry.mu.Lock()
		delete(h.registry.entries, h.id)
		h.registry.mu.Unlock()
	})
}

// Lookup returns the preview bytes for a live handle id.
func (r *Registry) Lookup(id string) (name, contentType string, data []byte, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return "", "", nil, ErrNotFound
	}
	return e.name, e.contentType, e.data, nil
}

// Live reports how many handles are currently allocated.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
