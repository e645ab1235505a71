// Package censor compiles merged profanity spans into the ffmpeg filter
// graph and stream-mapping plan that produces the censored output.
package censor

import (
	"fmt"
	"strings"

	"github.com/zkrige/DialogSafe/internal/profanity"
)

const (
	// MuteEndPadding extends every mute gate past the span end so the
	// trailing consonant/air of a profane word is fully covered.
	MuteEndPadding = 0.150

	// BleepFrequencyHz is the masking tone frequency.
	BleepFrequencyHz = 1000

	// MinBleepSeconds is the shortest audible tone generated for a span.
	MinBleepSeconds = 0.1

	// audioOutputLabel names the filtered audio in the filter graph.
	audioOutputLabel = "aout"
)

// BuildMuteFilter returns the chain of volume gates silencing every span on
// the primary audio path, or "" when there are no spans. Each gate is active
// on [start, end+MuteEndPadding].
func BuildMuteFilter(spans []profanity.Span) string {
	if len(spans) == 0 {
		return ""
	}
	parts := make([]string, 0, len(spans))
	for _, span := range spans {
		start := span.Start
		if start < 0 {
			start = 0
		}
		end := span.End
		if end < start {
			end = start
		}
		end += MuteEndPadding
		parts = append(parts, fmt.Sprintf("volume=enable='between(t,%.3f,%.3f)':volume=0", start, end))
	}
	return strings.Join(parts, ",")
}

// BuildBleepFilter returns a filter_complex graph that synthesizes one
// fixed-frequency tone per span, delays it to the span's absolute start, and
// mixes all tones with the original audio. The mix is not normalized: the
// tone is simply summed and relies on being audibly dominant.
func BuildBleepFilter(spans []profanity.Span, sampleRate int) string {
	if len(spans) == 0 {
		return ""
	}
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	chains := []string{"[0:a:0]anull[a0]"}
	labels := make([]string, 0, len(spans))

	for i, span := range spans {
		start := span.Start
		if start < 0 {
			start = 0
		}
		end := span.End
		if end < start {
			end = start
		}
		duration := end - start
		if duration < MinBleepSeconds {
			duration = MinBleepSeconds
		}
		delayMS := int(start*1000 + 0.5)

		tone := fmt.Sprintf("tone%d", i)
		beep := fmt.Sprintf("b%d", i)
		chains = append(chains,
			fmt.Sprintf("aevalsrc=0.5*sin(2*PI*%d*t):s=%d:d=%.3f[%s]", BleepFrequencyHz, sampleRate, duration, tone),
			fmt.Sprintf("[%s]adelay=%d|%d[%s]", tone, delayMS, delayMS, beep),
		)
		labels = append(labels, "["+beep+"]")
	}

	mix := fmt.Sprintf("[a0]%samix=inputs=%d:normalize=0[%s]",
		strings.Join(labels, ""), 1+len(labels), audioOutputLabel)
	chains = append(chains, mix)

	return strings.Join(chains, ";")
}
