package resolve

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrNilModule is raised when a nil module is supplied
	ErrNilModule = errors.New("resolve: nil module")
	// ErrModuleNotFound is returned when neither the loaded table nor any listener resolves a name
	ErrModuleNotFound = errors.New("resolve: module not found")
	// ErrModuleConflict is returned when a different module is loaded under an existing name
	ErrModuleConflict = errors.New("resolve: conflicting module load")
)

// Resolution sources reported to an Observer
const (
	SourceLoaded   = "loaded"
	SourceListener = "listener"
	SourceMiss     = "miss"
)

// Listener is asked for every lookup the loaded table could not satisfy
type Listener interface {
	// OnResolve returns the module for fullName, or false to decline
	OnResolve(fullName string) (Module, bool)
}

// Registry is the registration point for fallback listeners.
// Listeners are matched by reference on removal.
type Registry interface {
	AddListener(l Listener)
	RemoveListener(l Listener)
}

// Observer receives resolution telemetry
type Observer interface {
	ObserveResolution(source string)
	// SetActiveListeners is called with the domain lock held and must not
	// call back into the domain.
	SetActiveListeners(count int)
}

// Option configures a Domain
type Option func(*Domain)

// WithLogger sets the domain logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Domain) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithObserver sets the domain telemetry observer
func WithObserver(observer Observer) Option {
	return func(d *Domain) {
		if observer != nil {
			d.observer = observer
		}
	}
}

// Domain is a host resolution layer: loaded modules plus fallback listeners
type Domain struct {
	mu        sync.RWMutex
	loaded    map[string]Module
	listeners []Listener
	logger    *zap.Logger
	observer  Observer
}

var defaultDomain = NewDomain()

// Default returns the process-wide domain
func Default() *Domain {
	return defaultDomain
}

// NewDomain creates a new resolution domain
func NewDomain(opts ...Option) *Domain {
	d := &Domain{
		loaded:   make(map[string]Module),
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load adds m to the loaded table so it resolves without any listener.
// Loading the same module twice is a no-op.
func (d *Domain) Load(m Module) error {
	if m == nil {
		return ErrNilModule
	}
	name := m.FullName()

	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.loaded[name]; ok {
		if old == m {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrModuleConflict, name)
	}
	d.loaded[name] = m

	d.logger.Debug("module loaded", zap.String("module", name))
	return nil
}

// Unload removes a module from the loaded table
func (d *Domain) Unload(fullName string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.loaded, fullName)
}

// Loaded returns the full names of loaded modules in sorted order
func (d *Domain) Loaded() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.loaded))
	for name := range d.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddListener appends l to the fallback chain
func (d *Domain) AddListener(l Listener) {
	if l == nil {
		return
	}

	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	count := len(d.listeners)
	// Published under the lock so concurrent updates land in order
	d.observer.SetActiveListeners(count)
	d.mu.Unlock()

	d.logger.Debug("resolution listener added", zap.Int("listeners", count))
}

// RemoveListener removes the most recently added occurrence of l.
// Removing a listener that is not registered does nothing.
func (d *Domain) RemoveListener(l Listener) {
	if l == nil {
		return
	}

	d.mu.Lock()
	removed := false
	for i := len(d.listeners) - 1; i >= 0; i-- {
		if d.listeners[i] == l {
			// Copy so snapshots handed to in-flight Resolve calls stay intact
			next := make([]Listener, 0, len(d.listeners)-1)
			next = append(next, d.listeners[:i]...)
			next = append(next, d.listeners[i+1:]...)
			d.listeners = next
			removed = true
			break
		}
	}
	count := len(d.listeners)
	if removed {
		d.observer.SetActiveListeners(count)
	}
	d.mu.Unlock()

	if !removed {
		return
	}
	d.logger.Debug("resolution listener removed", zap.Int("listeners", count))
}

// ListenerCount returns the number of registered listeners
func (d *Domain) ListenerCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}

// Resolve finds a module by fully qualified name.
// The loaded table is searched first, then listeners in registration order.
func (d *Domain) Resolve(fullName string) (Module, error) {
	d.mu.RLock()
	m, ok := d.loaded[fullName]
	listeners := d.listeners
	d.mu.RUnlock()

	if ok {
		d.observer.ObserveResolution(SourceLoaded)
		return m, nil
	}

	// Listeners run outside the lock so they may resolve or register themselves
	for _, l := range listeners {
		if m, ok := l.OnResolve(fullName); ok && m != nil {
			d.observer.ObserveResolution(SourceListener)
			return m, nil
		}
	}

	d.observer.ObserveResolution(SourceMiss)
	d.logger.Debug("module resolution missed",
		zap.String("module", fullName),
		zap.Int("listeners", len(listeners)))

	return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, fullName)
}

type nopObserver struct{}

func (nopObserver) ObserveResolution(string) {}
func (nopObserver) SetActiveListeners(int)   {}
