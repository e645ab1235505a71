package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zkrige/DialogSafe/internal/profanity"
	"github.com/zkrige/DialogSafe/internal/transcribe"
)

// WriteSubtitles generates an SRT file with one cue per censorship span. The
// cue text is the context snippet of the span's best hit with every detected
// word in the span masked. Spans without hits or without context produce no
// cue; cue numbering stays contiguous.
func WriteSubtitles(spans []profanity.Span, path string) error {
	var lines []string
	index := 1

	for _, span := range spans {
		best, ok := span.BestHit()
		if !ok || best.Context == "" {
			continue
		}

		masked := best.Context
		for _, hit := range span.Hits {
			if hit.Word == "" {
				continue
			}
			masked = profanity.NewTerm(hit.Word).Mask(masked, MaskToken)
		}

		lines = append(lines,
			fmt.Sprintf("%d", index),
			formatSRTTimestamp(span.Start)+" --> "+formatSRTTimestamp(span.End),
			masked,
			"",
		)
		index++
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create artifact dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

// formatSRTTimestamp renders seconds as HH:MM:SS,mmm. Rounding happens on
// the total once, so a fraction near the next second carries into the
// seconds field instead of producing a four-digit millisecond part.
func formatSRTTimestamp(t float64) string {
	if t < 0 {
		t = 0
	}
	ms := int(t*1000 + 0.5)
	hours := ms / 3600000
	minutes := ms % 3600000 / 60000
	seconds := ms % 60000 / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// CleanTranscript renders the transcript as plain text with every word that
// falls inside a censorship span replaced by the mask token. Segments without
// word timings are emitted verbatim, matching the audio path where such
// segments are censored wholesale only through their hits.
func CleanTranscript(result transcribe.Result, spans []profanity.Span) string {
	inSpan := func(t float64) bool {
		for _, span := range spans {
			if span.Start <= t && t <= span.End {
				return true
			}
		}
		return false
	}

	lines := make([]string, 0, len(result.Segments))
	for _, seg := range result.Segments {
		if len(seg.Words) == 0 {
			lines = append(lines, seg.Text)
			continue
		}
		tokens := make([]string, 0, len(seg.Words))
		for _, w := range seg.Words {
			if inSpan(w.Start) || inSpan(w.End) {
				tokens = append(tokens, MaskToken)
			} else {
				tokens = append(tokens, w.Word)
			}
		}
		lines = append(lines, strings.Join(tokens, " "))
	}
	return strings.Join(lines, "\n")
}

// SaveCleanTranscript writes the masked plain-text transcript.
func SaveCleanTranscript(result transcribe.Result, spans []profanity.Span, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create artifact dir: %w", err)
	}
	text := CleanTranscript(result, spans)
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
