package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handler is a named unit of work that can be launched as a task
type Handler func(ctx context.Context) (interface{}, error)

// Registry manages task handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates a new handler registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register registers a handler under name
func (r *Registry) Register(name string, handler Handler) error {
	if name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler for '%s' cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("handler '%s' already registered", name)
	}

	r.handlers[name] = handler
	return nil
}

// Get retrieves a handler by name
func (r *Registry) Get(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, exists := r.handlers[name]
	if !exists {
		return nil, fmt.Errorf("no handler registered for '%s'", name)
	}

	return handler, nil
}

// Types returns all registered handler names in sorted order
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Launch starts one task per name, in the order given. Names may repeat.
// Every name is resolved before anything starts, so an unknown name
// launches nothing.
func (r *Registry) Launch(ctx context.Context, names ...string) ([]*Task[interface{}], error) {
	handlers := make([]Handler, len(names))
	for i, name := range names {
		h, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		handlers[i] = h
	}

	tasks := make([]*Task[interface{}], len(handlers))
	for i, h := range handlers {
		tasks[i] = Go(ctx, Func[interface{}](h))
	}
	return tasks, nil
}
