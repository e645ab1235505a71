package profanity

import (
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/zkrige/DialogSafe/internal/config"
	"github.com/zkrige/DialogSafe/internal/transcribe"
)

// ErrNoTerms reports that detection was attempted with an empty term list.
var ErrNoTerms = errors.New("profanity: empty term list")

// tokenStrip removes everything that is not a word character or apostrophe.
var tokenStrip = regexp.MustCompile(`[^\p{L}\p{N}_']+`)

// normalizeToken lowercases a transcript word and strips punctuation so it
// can be compared against canonical term text.
func normalizeToken(word string) string {
	return strings.ToLower(tokenStrip.ReplaceAllString(word, ""))
}

// Options tunes the detection confidence policy.
type Options struct {
	MinConfidence float64
	Mode          config.Mode
}

// Detect scans transcript segments for profanity and returns hits sorted by
// (start, end).
//
// Word-timed segments match normalized tokens exactly against term text; a
// hit below MinConfidence is dropped unless the run is in mute mode, where
// timestamps must stay trustworthy even for words the recognizer was unsure
// about. Segments without word timing fall back to a word-boundary regex
// over the whole segment text; that path gets no mute-mode exemption.
func Detect(result transcribe.Result, terms []Term, opts Options, logger *slog.Logger) ([]Hit, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}

	termSet := make(map[string]Term, len(terms))
	for _, t := range terms {
		termSet[t.Text] = t
	}

	var hits []Hit
	for _, seg := range result.Segments {
		context := strings.TrimSpace(seg.Text)

		for _, w := range seg.Words {
			norm := normalizeToken(w.Word)
			if norm == "" {
				continue
			}
			if _, ok := termSet[norm]; !ok {
				continue
			}
			if w.Confidence < opts.MinConfidence {
				if opts.Mode != config.ModeMute {
					logger.Debug("skipping low-confidence profanity token",
						"word", norm,
						"confidence", w.Confidence,
						"min_confidence", opts.MinConfidence,
						"mode", opts.Mode,
					)
					continue
				}
				// Mute spans must stay time-accurate, so the matched token
				// is kept despite the low confidence.
				logger.Debug("keeping low-confidence profanity token in mute mode",
					"word", norm,
					"confidence", w.Confidence,
					"min_confidence", opts.MinConfidence,
				)
			}
			hits = append(hits, Hit{
				Word:       norm,
				Start:      w.Start,
				End:        w.End,
				Confidence: w.Confidence,
				Context:    context,
				SegmentID:  seg.ID,
				ChunkIndex: seg.ChunkIndex,
			})
		}

		if len(seg.Words) == 0 {
			segText := strings.ToLower(seg.Text)
			for _, term := range terms {
				for range term.Occurrences(segText) {
					if seg.AvgConfidence < opts.MinConfidence {
						logger.Debug("skipping segment-level profanity match",
							"term", term.Text,
							"avg_confidence", seg.AvgConfidence,
							"min_confidence", opts.MinConfidence,
						)
						continue
					}
					// Whole-segment timing is imperfect but better than
					// dropping the match entirely.
					hits = append(hits, Hit{
						Word:       term.Text,
						Start:      seg.Start,
						End:        seg.End,
						Confidence: seg.AvgConfidence,
						Context:    context,
						SegmentID:  seg.ID,
						ChunkIndex: seg.ChunkIndex,
					})
				}
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Start != hits[j].Start {
			return hits[i].Start < hits[j].Start
		}
		return hits[i].End < hits[j].End
	})
	return hits, nil
}
