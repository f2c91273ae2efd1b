package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/warefleet/agvsim/core/metrics"
)

func newTestSink(t *testing.T) coremetrics.MetricsSink {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	return sink
}

func TestPromSinkRecordTick(t *testing.T) {
	sink := newTestSink(t)
	ev := coremetrics.TickEvent{
		Tick:    1,
		Backlog: 12,
		Waiting: 3,
		States:  map[string]int{"IDLE": 2, "WAITING": 3},
		Time:    time.Now(),
	}
	if err := sink.RecordTick(ev); err != nil {
		t.Fatalf("record tick: %v", err)
	}
	ps := sink.(*PromSink)
	if got := testutil.ToFloat64(ps.ticks); got != 1 {
		t.Fatalf("expected 1 tick got %v", got)
	}
	if got := testutil.ToFloat64(ps.waiting); got != 3 {
		t.Fatalf("expected waiting 3 got %v", got)
	}
	if got := testutil.ToFloat64(ps.backlog); got != 12 {
		t.Fatalf("expected backlog 12 got %v", got)
	}
	if got := testutil.ToFloat64(ps.states.WithLabelValues("IDLE")); got != 2 {
		t.Fatalf("expected 2 idle got %v", got)
	}
}

func TestPromSinkRecordTaskCompletion(t *testing.T) {
	sink := newTestSink(t)
	rec, ok := sink.(coremetrics.TaskCompletionRecorder)
	if !ok {
		t.Fatalf("prom sink must record task completions")
	}
	for i := 0; i < 4; i++ {
		if err := rec.RecordTaskCompletion(coremetrics.TaskEvent{TaskID: "t", VehicleID: "agv0001"}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if got := testutil.ToFloat64(sink.(*PromSink).completed); got != 4 {
		t.Fatalf("expected 4 completions got %v", got)
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration must reuse collectors: %v", err)
	}
}
