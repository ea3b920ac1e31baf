package types

// Event is the generic representation of a state change emitted by the
// settlement engines. Attributes carry enough identifying data for an
// external indexer to reconstruct full history without replaying reads.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
