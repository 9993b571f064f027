package ingest

// Result holds the outcome of a segment import.
type Result struct {
	SegmentsReceived int      `json:"segments_received"`
	SegmentsAdded    int      `json:"segments_added"`
	SegmentsValid    int      `json:"segments_valid"`
	SegmentsInvalid  int      `json:"segments_invalid"`
	InvalidLines     []int    `json:"invalid_lines,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`

	Message string `json:"message,omitempty"`
}
