package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cloudpulse/cloudpulse/pkg/aggregator"
	"github.com/cloudpulse/cloudpulse/pkg/db"
	"github.com/cloudpulse/cloudpulse/pkg/metrics"
	"github.com/cloudpulse/cloudpulse/pkg/models"
	"github.com/cloudpulse/cloudpulse/pkg/monitoring"
	"github.com/cloudpulse/cloudpulse/pkg/scoring"
)

type fakeMonitor struct {
	endpoints map[string]models.Endpoint
	states    map[string]*metrics.AggregatorState
	scores    map[string]scoring.ComprehensiveScoreResult
	summary   aggregator.SummaryStats
	events    chan monitoring.Event
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{
		endpoints: make(map[string]models.Endpoint),
		states:    make(map[string]*metrics.AggregatorState),
		scores:    make(map[string]scoring.ComprehensiveScoreResult),
		events:    make(chan monitoring.Event, 16),
	}
}

func (f *fakeMonitor) Endpoints() []models.Endpoint {
	endpoints := make([]models.Endpoint, 0, len(f.endpoints))
	for _, e := range f.endpoints {
		endpoints = append(endpoints, e)
	}

	return endpoints
}

func (f *fakeMonitor) GetEndpoint(id string) (models.Endpoint, bool) {
	e, ok := f.endpoints[id]
	return e, ok
}

func (f *fakeMonitor) EndpointState(id string) (*metrics.AggregatorState, bool) {
	s, ok := f.states[id]
	return s, ok
}

func (f *fakeMonitor) EndpointScore(id string) (scoring.ComprehensiveScoreResult, bool) {
	r, ok := f.scores[id]
	return r, ok
}

func (f *fakeMonitor) Scores() map[string]scoring.ComprehensiveScoreResult { return f.scores }
func (f *fakeMonitor) Summary() aggregator.SummaryStats                    { return f.summary }
func (f *fakeMonitor) Subscribe() chan monitoring.Event                    { return f.events }
func (f *fakeMonitor) Unsubscribe(chan monitoring.Event)                   {}

func newTestServer(t *testing.T) (*fakeMonitor, db.Service, *httptest.Server) {
	t.Helper()

	monitor := newFakeMonitor()

	store, err := db.New(filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(NewAPIServer(monitor, store).Router())
	t.Cleanup(srv.Close)

	return monitor, store, srv
}

func getJSON(t *testing.T, url string, into interface{}) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK && into != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}

	return resp.StatusCode
}

func TestGetEndpoints(t *testing.T) {
	monitor, _, srv := newTestServer(t)
	monitor.endpoints["ep-1"] = models.NewEndpoint("ep-1", "example.com", 443, models.ProbeHTTP)

	var endpoints []models.Endpoint

	status := getJSON(t, srv.URL+"/api/endpoints", &endpoints)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, endpoints, 1)
	assert.Equal(t, "ep-1", endpoints[0].ID)
}

func TestGetEndpointDetail(t *testing.T) {
	monitor, _, srv := newTestServer(t)

	monitor.endpoints["ep-1"] = models.NewEndpoint("ep-1", "example.com", 443, models.ProbeHTTP)

	state := metrics.NewAggregatorState("ep-1", 0, 0)
	for i := 0; i < 10; i++ {
		state.AddRecord(models.SuccessRecord("ep-1", 25.0), 0.0625)
	}

	monitor.states["ep-1"] = state
	monitor.scores["ep-1"] = scoring.ComputeScore(state, scoring.DefaultWeights())

	var detail EndpointDetail

	status := getJSON(t, srv.URL+"/api/endpoints/ep-1", &detail)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ep-1", detail.Endpoint.ID)
	assert.Equal(t, metrics.HealthExcellent, detail.Health)
	require.NotNil(t, detail.Score)
	assert.Greater(t, detail.Score.Score, 80.0)
}

func TestGetEndpointNotFound(t *testing.T) {
	_, _, srv := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/endpoints/nope", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/endpoints/nope/score", nil))
}

func TestGetStatus(t *testing.T) {
	monitor, _, srv := newTestServer(t)
	monitor.summary = aggregator.SummaryStats{TotalEndpoints: 3, Healthy: 2, Degraded: 1, AverageScore: 82.5}

	var summary aggregator.SummaryStats

	status := getJSON(t, srv.URL+"/api/status", &summary)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, summary.TotalEndpoints)
	assert.InDelta(t, 82.5, summary.AverageScore, 1e-9)
}

func TestGetAlerts(t *testing.T) {
	_, store, srv := newTestServer(t)

	a1 := models.NewAlert("ep-1", models.HighLatency(250))
	a2 := models.NewAlert("ep-2", models.HighJitter(60))
	require.NoError(t, store.StoreAlert(&a1))
	require.NoError(t, store.StoreAlert(&a2))

	var alerts []models.Alert

	status := getJSON(t, srv.URL+"/api/alerts", &alerts)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, alerts, 2)

	alerts = nil

	status = getJSON(t, srv.URL+"/api/alerts?endpoint=ep-1", &alerts)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, alerts, 1)
	assert.Equal(t, "ep-1", alerts[0].EndpointID)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/alerts?limit=bogus", nil))
}

func TestGetAlertsStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := db.NewMockService(ctrl)
	store.EXPECT().GetRecentAlerts(gomock.Any()).Return(nil, errors.New("disk I/O error"))

	srv := httptest.NewServer(NewAPIServer(newFakeMonitor(), store).Router())
	defer srv.Close()

	assert.Equal(t, http.StatusInternalServerError, getJSON(t, srv.URL+"/api/alerts", nil))
}

func TestGetAlertsEmptyIsArray(t *testing.T) {
	_, _, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/alerts")
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	var body []models.Alert
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body)
	assert.Empty(t, body)
}

func TestAcknowledgeAlert(t *testing.T) {
	_, store, srv := newTestServer(t)

	alert := models.NewAlert("ep-1", models.SustainedLoss(8))
	require.NoError(t, store.StoreAlert(&alert))

	resp, err := http.Post(srv.URL+"/api/alerts/"+alert.ID+"/acknowledge", "application/json", http.NoBody)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	got, err := store.GetAlert(alert.ID)
	require.NoError(t, err)
	assert.True(t, got.Acknowledged)

	resp, err = http.Post(srv.URL+"/api/alerts/nope/acknowledge", "application/json", http.NoBody)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSHeaders(t *testing.T) {
	_, _, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebsocketEventStream(t *testing.T) {
	monitor, _, srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
		_ = conn.Close()
	}()

	alert := models.NewAlert("ep-1", models.HighLatency(300))
	monitor.events <- monitoring.Event{
		Kind:      monitoring.EventAlert,
		Timestamp: time.Now(),
		Alert:     &alert,
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var event monitoring.Event
	require.NoError(t, conn.ReadJSON(&event))

	assert.Equal(t, monitoring.EventAlert, event.Kind)
	require.NotNil(t, event.Alert)
	assert.Equal(t, "ep-1", event.Alert.EndpointID)
}
