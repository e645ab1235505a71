package transcribe

import (
	"strings"

	"github.com/zkrige/DialogSafe/internal/audio"
)

// parseResponse converts a normalized backend response for one chunk into
// absolute-time segments by shifting every timestamp by the chunk's start
// offset.
func parseResponse(resp Response, chunk audio.Chunk) (string, []Segment) {
	language := strings.TrimSpace(resp.Language)
	if language == "" {
		language = LanguageUnknown
	}

	segments := make([]Segment, 0, len(resp.Segments))
	for i, seg := range resp.Segments {
		start := seg.Start
		end := seg.End
		if end < start {
			end = start
		}

		var (
			words         []Word
			confidenceSum float64
		)
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" {
				continue
			}
			wordStart := w.Start
			wordEnd := w.End
			if wordEnd < wordStart {
				wordEnd = wordStart
			}
			confidence := 1.0
			if w.Confidence != nil {
				confidence = *w.Confidence
			}
			confidenceSum += confidence
			words = append(words, Word{
				Word:       text,
				Start:      wordStart + chunk.Start,
				End:        wordEnd + chunk.Start,
				Confidence: confidence,
			})
		}

		avgConfidence := 1.0
		switch {
		case len(words) > 0:
			avgConfidence = confidenceSum / float64(len(words))
		case seg.Confidence != nil:
			avgConfidence = *seg.Confidence
		}

		id := seg.ID
		if id == 0 {
			id = i
		}

		segments = append(segments, Segment{
			ID:            id,
			Start:         start + chunk.Start,
			End:           end + chunk.Start,
			Text:          strings.TrimSpace(seg.Text),
			Words:         words,
			AvgConfidence: avgConfidence,
			ChunkIndex:    chunk.Index,
		})
	}
	return language, segments
}
