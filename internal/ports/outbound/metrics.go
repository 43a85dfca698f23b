package outbound

import "time"

// MetricsRecorder receives the business and upstream metrics of the finder
type MetricsRecorder interface {
	RecordOutcome(outcome string)
	EnrichmentFailed(field string)
	UpstreamCall(service, operation, status string, duration time.Duration)
}
