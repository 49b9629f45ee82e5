package runtime_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/weft-ui/weft/pkg/runtime"
)

func TestMetricsRecordedThroughSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := runtime.NewMetrics(
		runtime.WithRegistry(reg),
		runtime.WithNamespace("weft_test"),
	)

	cfg := runtime.DefaultSessionConfig()
	cfg.Metrics = metrics

	sess := runtime.NewSession(func() string { return "<p>hi</p>" }, cfg)
	defer sess.Close()

	sess.Mount()

	// A second request while one is already queued is counted as coalesced.
	sess.RequestRender()
	sess.RequestRender()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}

	for _, name := range []string{
		"weft_test_renders_total",
		"weft_test_render_duration_seconds",
		"weft_test_coalesced_requests_total",
	} {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestMetricsRecordHelpers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := runtime.NewMetrics(runtime.WithRegistry(reg))

	m.RecordRender(5 * time.Millisecond)
	m.RecordEvent("click")
	m.RecordHandlerPanic()
	m.RecordSessionCreate()
	m.RecordSessionDetach()
	m.RecordSessionResume()
	m.RecordSessionDestroy()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("no metric families gathered")
	}
}
