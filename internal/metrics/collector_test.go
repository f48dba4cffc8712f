package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/diagramhub/internal/core"
)

func TestCollectorObservesCoreActivity(t *testing.T) {
	c := New()
	hub := core.NewHub(c, nil)
	reg := core.NewRegistry(hub, core.RegistryConfig{DefaultDocument: "<doc/>"}, c, nil)

	alice := core.NewSession(reg, "r1", core.NewClient("a", 16), c, nil)
	bob := core.NewSession(reg, "r1", core.NewClient("b", 16), c, nil)
	require.NoError(t, alice.Open())
	require.NoError(t, bob.Open())

	alice.Handle(core.Command{Kind: core.CommandLockElement, ElementID: "Task_1"})
	bob.Handle(core.Command{Kind: core.CommandUnlockElement, ElementID: "Task_1"})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.roomsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.participantsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.commands.WithLabelValues("lock_element", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.commands.WithLabelValues("unlock_element", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.deliveries.WithLabelValues("lock")))

	alice.Close()
	bob.Close()
	assert.Equal(t, 0.0, testutil.ToFloat64(c.participantsActive))
}

func TestCollectorHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.RoomCreated("r1")
	c.SubscriberDropped("r1")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, "diagramhub_rooms_active 1"), text)
	assert.True(t, strings.Contains(text, "diagramhub_slow_consumers_dropped_total 1"), text)
}
