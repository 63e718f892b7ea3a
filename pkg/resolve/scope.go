package resolve

import (
	"errors"
	"sync/atomic"
)

// ErrNilRegistry is raised when a scope is opened without a registry
var ErrNilRegistry = errors.New("resolve: nil registry")

// Handle is one active registration of a designated module as a fallback
// listener. The module is borrowed; the handle never mutates it.
type Handle struct {
	module   Module
	registry Registry
	active   atomic.Bool
}

// Begin registers module as a fallback listener on registry and returns
// the open handle. A nil registry or module is an environment fault and
// panics.
func Begin(registry Registry, module Module) *Handle {
	if registry == nil {
		panic(ErrNilRegistry)
	}
	if module == nil {
		panic(ErrNilModule)
	}

	h := &Handle{module: module, registry: registry}
	h.active.Store(true)
	registry.AddListener(h)
	return h
}

// OnResolve answers with the bound module when fullName matches its
// fully qualified identity exactly. Inactive handles always decline.
func (h *Handle) OnResolve(fullName string) (Module, bool) {
	if !h.active.Load() {
		return nil, false
	}
	if fullName != h.module.FullName() {
		return nil, false
	}
	return h.module, true
}

// End deregisters the handle. Calling End on an inactive handle is a no-op.
func (h *Handle) End() {
	if !h.active.CompareAndSwap(true, false) {
		return
	}
	h.registry.RemoveListener(h)
}

// Close implements io.Closer; it never fails
func (h *Handle) Close() error {
	h.End()
	return nil
}

// Active reports whether the handle is still registered
func (h *Handle) Active() bool {
	return h.active.Load()
}

// Module returns the bound module
func (h *Handle) Module() Module {
	return h.module
}

// Within runs fn while module is registered on registry.
// The registration is released on every exit path, panics included.
func Within(registry Registry, module Module, fn func() error) error {
	h := Begin(registry, module)
	defer h.End()

	return fn()
}
