package otel

// Metric prefixes for each service.
const (
	PrefixEventScheduler = "eventsched"
	PrefixTransport      = "eventsched_http"
)
