package schema

// Laser is an ephemeral pointer stroke. It is relayed once, never stored,
// and every receiver removes it locally 2 seconds after receipt.
type Laser struct {
	Points    []Point `json:"points"`
	Color     string  `json:"color,omitempty"`
	Timestamp int64   `json:"timestamp"`
}
