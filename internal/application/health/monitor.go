package health

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Domain is the part of resolve.Domain the monitor samples
type Domain interface {
	ListenerCount() int
	Loaded() []string
}

// Monitor monitors resolver health
type Monitor struct {
	domain       Domain
	interval     time.Duration
	maxListeners int
	logger       *zap.Logger

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Status represents the health status of the resolution domain
type Status struct {
	ActiveListeners int       `json:"active_listeners"`
	LoadedModules   int       `json:"loaded_modules"`
	MaxListeners    int       `json:"max_listeners"`
	Healthy         bool      `json:"healthy"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewMonitor creates a new health monitor
func NewMonitor(domain Domain, interval time.Duration, maxListeners int, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		domain:       domain,
		interval:     interval,
		maxListeners: maxListeners,
		logger:       logger,
	}
}

// Start starts the health monitor
func (h *Monitor) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running || h.interval <= 0 {
		return
	}
	h.running = true
	h.stopCh = make(chan struct{})
	h.doneCh = make(chan struct{})

	go h.run(h.stopCh, h.doneCh)
}

// Stop stops the health monitor and waits for the loop to exit
func (h *Monitor) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	stopCh, doneCh := h.stopCh, h.doneCh
	h.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// run is the main health monitoring loop
func (h *Monitor) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			h.checkHealth()
		}
	}
}

// checkHealth checks resolver health and logs status
func (h *Monitor) checkHealth() {
	status := h.GetStatus()

	h.logger.Debug("resolver health check",
		zap.Int("active_listeners", status.ActiveListeners),
		zap.Int("loaded_modules", status.LoadedModules),
		zap.Bool("healthy", status.Healthy))

	if !status.Healthy {
		h.logger.Warn("resolver listeners at ceiling - scopes may be leaking",
			zap.Int("active_listeners", status.ActiveListeners),
			zap.Int("max_listeners", status.MaxListeners))
	}
}

// GetStatus returns the current health status
func (h *Monitor) GetStatus() *Status {
	active := h.domain.ListenerCount()

	return &Status{
		ActiveListeners: active,
		LoadedModules:   len(h.domain.Loaded()),
		MaxListeners:    h.maxListeners,
		Healthy:         h.maxListeners <= 0 || active < h.maxListeners,
		Timestamp:       time.Now(),
	}
}

// IsHealthy returns true if the resolution domain is healthy
func (h *Monitor) IsHealthy() bool {
	return h.GetStatus().Healthy
}
