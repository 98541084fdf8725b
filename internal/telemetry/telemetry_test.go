package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/fueltrackr/internal/config"
	"go.opentelemetry.io/otel"
)

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	shutdown := Setup(context.Background(), config.TracingConfig{}, "fueltrackr-web")
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
	fields := otel.GetTextMapPropagator().Fields()
	if !strings.Contains(strings.Join(fields, ","), "traceparent") {
		t.Fatalf("trace context propagator must be installed, got %v", fields)
	}
}

func TestSampler(t *testing.T) {
	cases := map[float64]string{
		0:    "AlwaysOnSampler",
		1:    "AlwaysOnSampler",
		0.25: "TraceIDRatioBased{0.25}",
	}
	for ratio, want := range cases {
		if got := sampler(ratio).Description(); !strings.Contains(got, want) {
			t.Errorf("sampler(%v) = %s, want %s", ratio, got, want)
		}
	}
}
