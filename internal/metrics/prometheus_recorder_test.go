package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_Counters(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncBuildOutcome(OutcomeSuccess)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.IncBuildOutcome(OutcomeFailed)
	pr.IncTransform(TransformRefresh)
	pr.IncCoalescedEvents()
	pr.IncBroadcast()
	pr.IncDeliveryFailure()
	pr.SetConnectedClients(4)
	pr.ObserveBuildDuration(120 * time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("failed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.transforms.WithLabelValues("refresh")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.coalesced), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(pr.clients), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.broadcasts), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.deliveryFailures), 0)
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBroadcast()

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "hotbundle_hmr_broadcasts_total")
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncBuildOutcome(OutcomeWarning)
	r.SetConnectedClients(1)
}
