package events

// Event represents a structured state change emitted by the settlement layer.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. CLI, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is the default for engines whose events nobody subscribed to.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}
