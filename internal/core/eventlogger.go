package core

// EventLogger receives a structured event for every successful store
// mutation. It is satisfied by an adapter over the observability event log,
// so core never imports observability.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}
