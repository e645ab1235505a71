package transcribe

import "context"

// Response is the normalized verbose_json shape every backend must return.
// All timestamps are relative to the start of the transcribed chunk.
type Response struct {
	Language string            `json:"language"`
	Segments []ResponseSegment `json:"segments"`
}

// ResponseSegment mirrors one segment of a verbose_json transcription.
type ResponseSegment struct {
	ID         int            `json:"id"`
	Start      float64        `json:"start"`
	End        float64        `json:"end"`
	Text       string         `json:"text"`
	Confidence *float64       `json:"confidence,omitempty"`
	Words      []ResponseWord `json:"words,omitempty"`
}

// ResponseWord mirrors one word entry of a verbose_json transcription.
// Confidence is nil when the backend does not expose per-word confidence;
// parsing defaults it to 1.0.
type ResponseWord struct {
	Word       string   `json:"word"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Backend transcribes one audio chunk file with a given language hint and
// model name. Implementations must be safe for concurrent use; a backend
// whose underlying engine cannot run concurrent inference for one model
// must serialize internally (see Registry).
type Backend interface {
	Transcribe(ctx context.Context, audioPath, language, model string) (Response, error)
}
