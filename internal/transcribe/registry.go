package transcribe

import (
	"strings"
	"sync"
)

// Handle is a lazily initialised local model resolved by the Registry.
type Handle struct {
	// Name is the canonical model name this handle was loaded for.
	Name string
	// BinaryPath is the resolved inference executable.
	BinaryPath string
}

// Registry owns the cache of loaded local model handles and the per-model
// inference locks. The local engine is not safe for concurrent inference on
// the same model, so callers must hold InferenceLock(model) for the duration
// of a transcription call. The registry is passed explicitly rather than
// living in package globals.
type Registry struct {
	mu     sync.Mutex
	models map[string]*Handle
	locks  map[string]*sync.Mutex
}

// NewRegistry returns an empty model registry.
func NewRegistry() *Registry {
	return &Registry{
		models: make(map[string]*Handle),
		locks:  make(map[string]*sync.Mutex),
	}
}

func canonicalModelName(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		return "base"
	}
	return model
}

// InferenceLock returns the mutex that serializes inference calls for one
// model name. The same *sync.Mutex is returned for every call with the same
// name.
func (r *Registry) InferenceLock(model string) *sync.Mutex {
	model = canonicalModelName(model)
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[model]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[model] = lock
	}
	return lock
}

// Model returns the cached handle for a model name, invoking load exactly
// once per name. Initialisation runs under the coarse registry lock so
// concurrent workers cannot race to load the same model twice.
func (r *Registry) Model(model string, load func(name string) (*Handle, error)) (*Handle, error) {
	model = canonicalModelName(model)
	r.mu.Lock()
	defer r.mu.Unlock()
	if handle, ok := r.models[model]; ok {
		return handle, nil
	}
	handle, err := load(model)
	if err != nil {
		return nil, err
	}
	r.models[model] = handle
	return handle, nil
}
