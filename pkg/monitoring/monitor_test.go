package monitoring

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudpulse/cloudpulse/pkg/config"
	"github.com/cloudpulse/cloudpulse/pkg/models"
)

func testMonitor(t *testing.T) *Monitor {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Probe.ProbeInterval = config.Duration(150 * time.Millisecond)
	cfg.Probe.RTTTimeout = config.Duration(500 * time.Millisecond)

	monitor, err := NewMonitor(cfg)
	require.NoError(t, err)

	return monitor
}

func listenTCP(t *testing.T) (host string, port uint16) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}

			_ = conn.Close()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)

	return "127.0.0.1", uint16(addr.Port)
}

func TestAddEndpoint(t *testing.T) {
	monitor := testMonitor(t)

	endpoint := models.NewEndpoint("ep-1", "example.com", 443, models.ProbeTCP)
	require.NoError(t, monitor.AddEndpoint(endpoint))

	assert.ErrorIs(t, monitor.AddEndpoint(endpoint), errDuplicateEndpoint)
	assert.ErrorIs(t, monitor.AddEndpoint(models.Endpoint{}), errInvalidEndpoint)

	assert.Equal(t, 1, monitor.EndpointCount())
	assert.Equal(t, []string{"ep-1"}, monitor.EndpointIDs())

	got, ok := monitor.GetEndpoint("ep-1")
	require.True(t, ok)
	assert.Equal(t, "example.com", got.Host)
}

func TestRemoveEndpoint(t *testing.T) {
	monitor := testMonitor(t)

	endpoint := models.NewEndpoint("ep-1", "example.com", 443, models.ProbeTCP)
	require.NoError(t, monitor.AddEndpoint(endpoint))

	assert.True(t, monitor.RemoveEndpoint("ep-1"))
	assert.False(t, monitor.RemoveEndpoint("ep-1"))
	assert.Equal(t, 0, monitor.EndpointCount())
}

func TestEndpointsSorted(t *testing.T) {
	monitor := testMonitor(t)

	require.NoError(t, monitor.AddEndpoint(models.NewEndpoint("b", "b.example.com", 80, models.ProbeTCP)))
	require.NoError(t, monitor.AddEndpoint(models.NewEndpoint("a", "a.example.com", 80, models.ProbeTCP)))

	endpoints := monitor.Endpoints()
	require.Len(t, endpoints, 2)
	assert.Equal(t, "a", endpoints[0].ID)
	assert.Equal(t, "b", endpoints[1].ID)
}

func TestMonitorEndToEnd(t *testing.T) {
	monitor := testMonitor(t)

	host, port := listenTCP(t)
	require.NoError(t, monitor.AddEndpoint(models.NewEndpoint("local", host, port, models.ProbeTCP)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, monitor.Start(ctx))
	assert.ErrorIs(t, monitor.Start(ctx), errAlreadyStarted)

	require.Eventually(t, func() bool {
		result, ok := monitor.EndpointScore("local")
		return ok && result.Score > 0
	}, 5*time.Second, 50*time.Millisecond)

	state, ok := monitor.EndpointState("local")
	require.True(t, ok)
	assert.Positive(t, state.TotalRecvShort)

	scores := monitor.Scores()
	assert.Contains(t, scores, "local")

	summary := monitor.Summary()
	assert.Equal(t, 1, summary.TotalEndpoints)

	require.NoError(t, monitor.Stop(context.Background()))
}

func TestAddEndpointWhileRunning(t *testing.T) {
	monitor := testMonitor(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, monitor.Start(ctx))

	host, port := listenTCP(t)
	require.NoError(t, monitor.AddEndpoint(models.NewEndpoint("late", host, port, models.ProbeTCP)))

	require.Eventually(t, func() bool {
		_, ok := monitor.EndpointState("late")
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, monitor.Stop(context.Background()))
}

func TestAlertHandlerAndBroadcast(t *testing.T) {
	monitor := testMonitor(t)

	var handled atomic.Int32

	monitor.AddAlertHandler(func(_ context.Context, _ models.Alert) {
		handled.Add(1)
	})

	sub := monitor.Subscribe()
	defer monitor.Unsubscribe(sub)

	alert := models.NewAlert("ep-1", models.HighLatency(350))
	monitor.dispatchAlert(context.Background(), alert)

	assert.Equal(t, int32(1), handled.Load())

	select {
	case event := <-sub:
		assert.Equal(t, EventAlert, event.Kind)
		require.NotNil(t, event.Alert)
		assert.Equal(t, "ep-1", event.Alert.EndpointID)
	case <-time.After(time.Second):
		t.Fatal("expected broadcast alert event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	monitor := testMonitor(t)

	sub := monitor.Subscribe()
	assert.Equal(t, 1, monitor.events.subscriberCount())

	monitor.Unsubscribe(sub)
	assert.Equal(t, 0, monitor.events.subscriberCount())

	_, open := <-sub
	assert.False(t, open)

	// Double unsubscribe is a no-op.
	monitor.Unsubscribe(sub)
}

func TestSlowSubscriberLosesEvents(t *testing.T) {
	monitor := testMonitor(t)

	sub := monitor.Subscribe()
	defer monitor.Unsubscribe(sub)

	for i := 0; i < subscriberBuffer+10; i++ {
		monitor.events.broadcast(Event{Kind: EventScores, Timestamp: time.Now()})
	}

	assert.Len(t, sub, subscriberBuffer)
}

func TestConfigValidateRepairsSnapshotInterval(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, config.Duration(60*time.Second), cfg.SnapshotInterval)
}
