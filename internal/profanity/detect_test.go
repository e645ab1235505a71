package profanity

import (
	"errors"
	"testing"

	"github.com/zkrige/DialogSafe/internal/config"
	"github.com/zkrige/DialogSafe/internal/transcribe"
)

func wordedSegment(id int, text string, words ...transcribe.Word) transcribe.Segment {
	seg := transcribe.Segment{ID: id, Text: text, Words: words, AvgConfidence: 1.0}
	if len(words) > 0 {
		seg.Start = words[0].Start
		seg.End = words[len(words)-1].End
	}
	return seg
}

func word(text string, start, end, confidence float64) transcribe.Word {
	return transcribe.Word{Word: text, Start: start, End: end, Confidence: confidence}
}

func TestDetectMatchesNormalizedTokens(t *testing.T) {
	result := transcribe.Result{Segments: []transcribe.Segment{
		wordedSegment(0, "What a classy ass move!",
			word("What", 0.0, 0.2, 0.95),
			word("a", 0.2, 0.3, 0.95),
			word("classy", 0.3, 0.8, 0.95),
			word("Ass,", 0.8, 1.0, 0.92),
			word("move!", 1.0, 1.4, 0.95),
		),
	}}

	hits, err := Detect(result, LoadTerms([]string{"ass"}), Options{MinConfidence: 0.6, Mode: config.ModeMute}, nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	h := hits[0]
	if h.Word != "ass" {
		t.Errorf("word = %q, want normalized term text", h.Word)
	}
	if h.Start != 0.8 || h.End != 1.0 {
		t.Errorf("hit times = [%g, %g]", h.Start, h.End)
	}
	if h.Context != "What a classy ass move!" {
		t.Errorf("context = %q", h.Context)
	}
}

func TestDetectIgnoresSubstrings(t *testing.T) {
	result := transcribe.Result{Segments: []transcribe.Segment{
		wordedSegment(0, "classic assessment",
			word("classic", 0.0, 0.5, 0.9),
			word("assessment", 0.5, 1.2, 0.9),
		),
	}}

	hits, err := Detect(result, LoadTerms([]string{"ass"}), Options{MinConfidence: 0.6, Mode: config.ModeMute}, nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("hits = %d, want none for substrings", len(hits))
	}
}

func TestDetectConfidenceGateDependsOnMode(t *testing.T) {
	result := transcribe.Result{Segments: []transcribe.Segment{
		wordedSegment(0, "damn it",
			word("damn", 1.0, 1.3, 0.2),
			word("it", 1.3, 1.5, 0.9),
		),
	}}
	terms := LoadTerms([]string{"damn"})

	// Bleep mode drops the low-confidence token.
	hits, err := Detect(result, terms, Options{MinConfidence: 0.6, Mode: config.ModeBleep}, nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("bleep hits = %d, want 0", len(hits))
	}

	// Mute mode keeps it so the gate timing stays accurate.
	hits, err = Detect(result, terms, Options{MinConfidence: 0.6, Mode: config.ModeMute}, nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("mute hits = %d, want 1", len(hits))
	}
	if hits[0].Confidence != 0.2 {
		t.Errorf("confidence = %g, want the raw word confidence", hits[0].Confidence)
	}
}

func TestDetectSegmentFallbackWithoutWords(t *testing.T) {
	result := transcribe.Result{Segments: []transcribe.Segment{
		{ID: 3, Start: 10, End: 12, Text: "Damn, that damn thing", AvgConfidence: 0.8, ChunkIndex: 1},
	}}

	hits, err := Detect(result, LoadTerms([]string{"damn"}), Options{MinConfidence: 0.6, Mode: config.ModeMute}, nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want one per text occurrence", len(hits))
	}
	for _, h := range hits {
		if h.Start != 10 || h.End != 12 {
			t.Errorf("fallback hit should span the whole segment, got [%g, %g]", h.Start, h.End)
		}
		if h.SegmentID != 3 || h.ChunkIndex != 1 {
			t.Errorf("hit identity = (%d, %d)", h.SegmentID, h.ChunkIndex)
		}
	}
}

func TestDetectSegmentFallbackMatchesAccentedTerms(t *testing.T) {
	result := transcribe.Result{Segments: []transcribe.Segment{
		{ID: 0, Start: 0, End: 2, Text: "Qué cabrón eres", AvgConfidence: 0.9},
	}}

	hits, err := Detect(result, LoadTerms([]string{"cabrón"}), Options{MinConfidence: 0.6, Mode: config.ModeMute}, nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want accented term matched", len(hits))
	}
	if hits[0].Word != "cabrón" {
		t.Errorf("word = %q", hits[0].Word)
	}
}

func TestDetectSegmentFallbackHasNoMuteExemption(t *testing.T) {
	result := transcribe.Result{Segments: []transcribe.Segment{
		{ID: 0, Start: 0, End: 2, Text: "damn", AvgConfidence: 0.3},
	}}

	// Even in mute mode the fallback path honours the confidence gate:
	// whole-segment timing is too coarse to trust a shaky match.
	hits, err := Detect(result, LoadTerms([]string{"damn"}), Options{MinConfidence: 0.6, Mode: config.ModeMute}, nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("hits = %d, want low-confidence segment match dropped", len(hits))
	}
}

func TestDetectEmptyTermsIsAnError(t *testing.T) {
	_, err := Detect(transcribe.Result{}, nil, Options{MinConfidence: 0.6, Mode: config.ModeMute}, nil)
	if !errors.Is(err, ErrNoTerms) {
		t.Fatalf("expected ErrNoTerms, got %v", err)
	}
}

func TestDetectSortsHits(t *testing.T) {
	result := transcribe.Result{Segments: []transcribe.Segment{
		wordedSegment(1, "shit happens",
			word("shit", 5.0, 5.3, 0.9),
			word("happens", 5.3, 5.8, 0.9),
		),
		wordedSegment(0, "oh shit",
			word("oh", 1.0, 1.2, 0.9),
			word("shit", 1.2, 1.5, 0.9),
		),
	}}

	hits, err := Detect(result, LoadTerms([]string{"shit"}), Options{MinConfidence: 0.6, Mode: config.ModeMute}, nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d", len(hits))
	}
	if hits[0].Start > hits[1].Start {
		t.Fatalf("hits not sorted by start: %g before %g", hits[0].Start, hits[1].Start)
	}
}

func TestNormalizeToken(t *testing.T) {
	cases := map[string]string{
		"Hello,":  "hello",
		" Ass!! ": "ass",
		"don't":   "don't",
		"...":     "",
		"Naïve":   "naïve",
	}
	for input, want := range cases {
		if got := normalizeToken(input); got != want {
			t.Errorf("normalizeToken(%q) = %q, want %q", input, got, want)
		}
	}
}
