package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.NodesDecodedTotal == nil || r.SimulationDuration == nil || r.AlertsFiredTotal == nil {
		t.Error("metrics not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var r *Registry
	r.RecordNodeDecoded("job")
	r.RecordDecodeFailure("node")
	r.RecordGraphValidation(true)
	r.RecordEventEncoded("scan_request", false, 10)
	r.RecordSimulation("ok", time.Millisecond)
	r.RecordSnapshotIngested()
	r.RecordTrend("maturity", "improved")
	r.RecordProposalTransition("draft", "pending", nil)
	r.RecordAlertFired("warning")
	r.RecordAlertDelivery("slack", true)
	r.SetTrackedGraphs(3)
}

func TestRecordNodeDecoded(t *testing.T) {
	r := NewRegistry()
	r.RecordNodeDecoded("job")
	r.RecordNodeDecoded("job")
	r.RecordNodeDecoded("step")

	c, err := r.NodesDecodedTotal.GetMetricWithLabelValues("job")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := counterValue(t, c); got != 2 {
		t.Errorf("job counter = %v, want 2", got)
	}
}

func TestRecordProposalTransition(t *testing.T) {
	r := NewRegistry()
	r.RecordProposalTransition("draft", "pending", nil)
	r.RecordProposalTransition("draft", "approved", errors.New("invalid"))

	ok, _ := r.ProposalTransitionsTotal.GetMetricWithLabelValues("draft", "pending", "ok")
	if got := counterValue(t, ok); got != 1 {
		t.Errorf("ok transitions = %v, want 1", got)
	}
	rejected, _ := r.ProposalTransitionsTotal.GetMetricWithLabelValues("draft", "approved", "rejected")
	if got := counterValue(t, rejected); got != 1 {
		t.Errorf("rejected transitions = %v, want 1", got)
	}
}

func TestRecordAlerts(t *testing.T) {
	r := NewRegistry()
	r.RecordAlertFired("critical")
	r.RecordAlertDelivery("slack", true)
	r.RecordAlertDelivery("slack", false)
	r.SetTrackedGraphs(4)

	fired, _ := r.AlertsFiredTotal.GetMetricWithLabelValues("critical")
	if got := counterValue(t, fired); got != 1 {
		t.Errorf("fired = %v, want 1", got)
	}
	delivered, _ := r.AlertsDeliveredTotal.GetMetricWithLabelValues("slack", "true")
	if got := counterValue(t, delivered); got != 1 {
		t.Errorf("delivered = %v, want 1", got)
	}

	var metric dto.Metric
	if err := r.TrackedGraphs.Write(&metric); err != nil {
		t.Fatal(err)
	}
	if metric.Gauge.GetValue() != 4 {
		t.Errorf("tracked graphs = %v, want 4", metric.Gauge.GetValue())
	}
}

func TestRecordSimulationAndGather(t *testing.T) {
	r := NewRegistry()
	r.RecordSimulation("ok", 20*time.Millisecond)
	r.RecordEventEncoded("parse_result", true, 2048)

	families, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{"atlas_simulations_total", "atlas_simulation_duration_seconds", "atlas_event_payload_bytes"} {
		if !found[name] {
			t.Errorf("metric family %s not gathered", name)
		}
	}
}
