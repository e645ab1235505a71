// Package report persists the run artifacts: transcript JSON, censor log,
// masked subtitles, and the clean plain-text transcript.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zkrige/DialogSafe/internal/profanity"
	"github.com/zkrige/DialogSafe/internal/transcribe"
)

// MaskToken replaces profane words in subtitles and the clean transcript.
const MaskToken = "****"

// transcriptDocument is the persisted transcript artifact shape.
type transcriptDocument struct {
	Language string               `json:"language"`
	Metadata map[string]string    `json:"metadata,omitempty"`
	Segments []transcribe.Segment `json:"segments"`
}

// SaveTranscript writes the aggregated transcript (segments and words) to
// JSON for downstream analysis.
func SaveTranscript(result transcribe.Result, metadata map[string]string, path string) error {
	doc := transcriptDocument{
		Language: result.Language,
		Metadata: metadata,
		Segments: result.Segments,
	}
	if doc.Segments == nil {
		doc.Segments = []transcribe.Segment{}
	}
	return writeJSON(path, doc)
}

// censorLogEntry is one line of the censor log, carrying the representative
// (highest-confidence) hit of a span.
type censorLogEntry struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context"`
}

// SaveCensorLog writes one entry per censorship span, ordered by span start.
func SaveCensorLog(spans []profanity.Span, path string) error {
	entries := make([]censorLogEntry, 0, len(spans))
	for _, span := range spans {
		entry := censorLogEntry{
			Start: span.Start,
			End:   span.End,
		}
		if best, ok := span.BestHit(); ok {
			entry.Word = best.Word
			entry.Context = best.Context
			entry.Confidence = best.Confidence
		}
		entries = append(entries, entry)
	}
	return writeJSON(path, entries)
}

func writeJSON(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create artifact dir: %w", err)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
