package metrics

import (
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/observability"
)

func withCollector(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = original })
	return collector
}

func TestRecordGenerationEmitsCounterAndHistogram(t *testing.T) {
	collector := withCollector(t)

	RecordGeneration("powerpoint", "auto", "success", 25*time.Millisecond)

	assert.Greater(t, collector.CountMetricsByName(GenerationsTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(GenerationDuration), 0)
}

func TestRecordersAreNoopsWithoutTelemetry(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = original })

	RecordGeneration("text", "direct", "error", time.Second)
	RecordTriage("simple")
	RecordProviderCall("executor", "groq", false, time.Second)
	RecordImageLookup("error")
	RecordDeckSlides(3)
	RecordError("INTERNAL_ERROR", 500)
	RecordPanic()
}

func TestRecordImageLookupAndTriage(t *testing.T) {
	collector := withCollector(t)

	RecordImageLookup("found")
	RecordTriage("complex")
	RecordProviderCall("planner", "groq", true, time.Millisecond)

	assert.Greater(t, collector.CountMetricsByName(ImageLookupsTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(TriageTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(ProviderCallsTotal), 0)
}
