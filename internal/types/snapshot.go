package types

// Snapshot is the read-only view handed to consumers after each commit.
type Snapshot struct {
	Filters FilterState `json:"filters"`
	Loading bool        `json:"loading"`
	// Generation is the newest fetch generation started. While Loading is true it
	// is ahead of Points, which still hold the last committed series.
	Generation uint64 `json:"generation"`
	// RequestID identifies the fetch that produced the raw series
	RequestID string        `json:"requestId,omitempty"`
	Points    DerivedSeries `json:"points"`
}
