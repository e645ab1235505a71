package profanity

// MergeSpans clusters time-sorted hits into non-overlapping censorship
// spans. Hits whose gap to the open span is at most maxGapMS are folded in;
// a larger gap closes the span and opens a new one. Single pass, O(n),
// stable: the relative order of hits within a span is preserved.
func MergeSpans(hits []Hit, maxGapMS int) []Span {
	if len(hits) == 0 {
		return nil
	}

	maxGap := float64(maxGapMS) / 1000.0

	var merged []Span
	curStart := hits[0].Start
	curEnd := hits[0].End
	curHits := []Hit{hits[0]}

	flush := func() {
		span := Span{
			Start: curStart,
			End:   curEnd,
			Hits:  curHits,
		}
		for _, h := range curHits {
			if h.Confidence > span.MaxConfidence {
				span.MaxConfidence = h.Confidence
			}
		}
		merged = append(merged, span)
	}

	for _, h := range hits[1:] {
		gap := h.Start - curEnd
		if gap <= maxGap {
			if h.End > curEnd {
				curEnd = h.End
			}
			curHits = append(curHits, h)
			continue
		}
		flush()
		curStart = h.Start
		curEnd = h.End
		curHits = []Hit{h}
	}
	flush()

	return merged
}
