package watchdog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthyUntilFirstHeartbeat(t *testing.T) {
	w := New(time.Millisecond)
	w.Register("gateway", 10*time.Millisecond)

	w.checkAll()
	assert.True(t, w.Status()["gateway"])
}

func TestStaleHeartbeatMarksUnhealthy(t *testing.T) {
	w := New(time.Millisecond)
	w.Register("janitor", 5*time.Millisecond)

	w.Heartbeat("janitor")
	assert.True(t, w.Status()["janitor"])

	time.Sleep(10 * time.Millisecond)
	w.checkAll()
	assert.False(t, w.Status()["janitor"])

	w.Heartbeat("janitor")
	assert.True(t, w.Status()["janitor"])
}

func TestStatusReportsAllComponents(t *testing.T) {
	w := New(time.Millisecond)
	w.Register("gateway", time.Minute)
	w.Register("janitor", time.Minute)

	status := w.Status()
	assert.Len(t, status, 2)
	assert.True(t, status["gateway"])
	assert.True(t, status["janitor"])
}

func TestHeartbeatUnknownComponent(t *testing.T) {
	w := New(time.Millisecond)
	assert.NotPanics(t, func() { w.Heartbeat("nobody") })
	assert.NotContains(t, w.Status(), "nobody")
}
