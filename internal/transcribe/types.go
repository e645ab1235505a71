// Package transcribe maps audio chunks to a time-ordered transcript using
// one of two interchangeable speech-to-text backends.
package transcribe

import "encoding/json"

// LanguageUnknown is the language reported when no backend could identify
// the spoken language.
const LanguageUnknown = "unknown"

// Word is a single recognized word with absolute timing and confidence.
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Segment is a contiguous stretch of recognized speech. Words may be empty
// when the backend did not produce word-level timestamps.
type Segment struct {
	ID            int     `json:"id"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	Text          string  `json:"text"`
	Words         []Word  `json:"words"`
	AvgConfidence float64 `json:"avg_confidence"`
	ChunkIndex    int     `json:"chunk_index"`
}

// Result aggregates the transcription of a full audio source. Segments are
// sorted by (start, chunk index, id) and Raw carries the backend payloads
// for debugging.
type Result struct {
	Segments []Segment
	Language string
	Raw      []json.RawMessage
}
