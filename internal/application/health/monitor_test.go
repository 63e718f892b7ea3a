package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/aescanero/botutils/pkg/resolve"
)

func TestMonitorStatus(t *testing.T) {
	d := resolve.NewDomain()
	mon := NewMonitor(d, time.Minute, 2, zaptest.NewLogger(t))

	assert.True(t, mon.IsHealthy())

	h1 := resolve.Begin(d, resolve.NewModule(resolve.Identity{Name: "A"}))
	h2 := resolve.Begin(d, resolve.NewModule(resolve.Identity{Name: "B"}))

	status := mon.GetStatus()
	assert.Equal(t, 2, status.ActiveListeners)
	assert.False(t, status.Healthy)

	h1.End()
	h2.End()
	assert.True(t, mon.IsHealthy())
}

func TestMonitorUnlimited(t *testing.T) {
	d := resolve.NewDomain()
	mon := NewMonitor(d, time.Minute, 0, nil)

	h := resolve.Begin(d, resolve.NewModule(resolve.Identity{Name: "A"}))
	defer h.End()

	assert.True(t, mon.IsHealthy())
}

func TestMonitorStartStop(t *testing.T) {
	d := resolve.NewDomain()
	mon := NewMonitor(d, time.Millisecond, 1, zaptest.NewLogger(t))

	mon.Start()
	mon.Start()
	time.Sleep(5 * time.Millisecond)
	mon.Stop()
	mon.Stop()

	// Restart after stop
	mon.Start()
	mon.Stop()
}
