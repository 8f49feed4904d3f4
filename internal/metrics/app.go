package metrics

import (
	"time"

	"github.com/promptdeck/promptdeck/internal/observability"
)

// Application metric names.
const (
	GenerationsTotal      = "generations_total"
	GenerationDuration    = "generation_duration_ms"
	TriageTotal           = "triage_total"
	ProviderCallsTotal    = "provider_calls_total"
	ProviderCallDuration  = "provider_call_duration_ms"
	ImageLookupsTotal     = "image_lookups_total"
	DeckSlidesRendered    = "deck_slides_rendered"
	ServerStartTimeSecond = "app_server_start_time_seconds"
)

// RecordGeneration records one finished /generate pipeline run.
func RecordGeneration(format, mode, status string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	labels := map[string]string{
		"format": format,
		"mode":   mode,
		"status": status,
	}
	_ = observability.TelemetrySystem.Counter(GenerationsTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(GenerationDuration, duration, labels)
}

// RecordTriage records the complexity class chosen by the triage call.
func RecordTriage(complexity string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(TriageTotal, 1, map[string]string{
		"complexity": complexity,
	})
}

// RecordProviderCall records a chat-completion call for a pipeline role.
func RecordProviderCall(role, provider string, success bool, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	_ = observability.TelemetrySystem.Counter(ProviderCallsTotal, 1, map[string]string{
		"role":     role,
		"provider": provider,
		"status":   status,
	})
	_ = observability.TelemetrySystem.Histogram(ProviderCallDuration, duration, map[string]string{
		"role":     role,
		"provider": provider,
	})
}

// RecordImageLookup records a stock photo lookup outcome
// ("found", "not_found", "error", "skipped").
func RecordImageLookup(status string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ImageLookupsTotal, 1, map[string]string{
		"status": status,
	})
}

// RecordDeckSlides records the slide count of a rendered deck.
func RecordDeckSlides(count int) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(DeckSlidesRendered, float64(count), nil)
}

// SetServerStartTime records the server start time (Unix seconds).
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(ServerStartTimeSecond, float64(timestamp), nil)
}
