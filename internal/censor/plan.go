package censor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/zkrige/DialogSafe/internal/config"
	"github.com/zkrige/DialogSafe/internal/media"
	"github.com/zkrige/DialogSafe/internal/profanity"
)

// Plan is the compiled remux instruction set: the filter graph for the
// derived clean audio plus the encoder/bit-rate choice for it. The actual
// remux is delegated to the ffmpeg collaborator.
type Plan struct {
	// Passthrough means no spans were found: stream copy only, no
	// re-encoding and no marker stream.
	Passthrough bool

	FilterComplex string

	// Encoder and BitRateBPS apply to the appended clean stream.
	Encoder    string
	BitRateBPS int

	// cleanAudioIndex is the audio-stream index of the appended stream.
	cleanAudioIndex int
}

// encoderForCodec maps a probed codec name to the ffmpeg encoder used for
// the clean stream, falling back to AAC for unrecognized codecs.
func encoderForCodec(codec string, logger *slog.Logger) string {
	switch strings.ToLower(strings.TrimSpace(codec)) {
	case "aac":
		return "aac"
	case "ac3":
		return "ac3"
	case "eac3":
		return "eac3"
	case "":
		return "aac"
	}
	logger.Warn("unsupported input audio codec; falling back to AAC", "codec", codec)
	return "aac"
}

// Compile turns spans plus probed stream metadata into a remux plan. Only
// the primary audio stream feeds the filter graph; every original stream is
// preserved and the filtered audio is appended as a new stream carrying the
// clean marker.
func Compile(mode config.Mode, spans []profanity.Span, probe media.ProbeResult, sampleRate int, logger *slog.Logger) Plan {
	if logger == nil {
		logger = slog.Default()
	}
	if len(spans) == 0 {
		// Avoid a lossy re-encode when there is nothing to censor.
		return Plan{Passthrough: true}
	}

	var filterComplex string
	if mode == config.ModeBleep {
		filterComplex = BuildBleepFilter(spans, sampleRate)
	} else {
		filterComplex = fmt.Sprintf("[0:a:0]%s[%s]", BuildMuteFilter(spans), audioOutputLabel)
	}

	plan := Plan{
		FilterComplex:   filterComplex,
		Encoder:         "aac",
		cleanAudioIndex: probe.AudioStreamCount(),
	}
	if primary, ok := probe.PrimaryAudio(); ok {
		plan.Encoder = encoderForCodec(primary.CodecName, logger)
		plan.BitRateBPS = primary.BitRateBPS()
	}
	return plan
}

// FFmpegArgs renders the plan into the argument list for the remux
// collaborator. All original streams, chapters, and container metadata are
// copied verbatim; the filtered audio is appended re-encoded with the
// stream title marker.
func (p Plan) FFmpegArgs(input, output string) []string {
	if p.Passthrough {
		return []string{
			"-y",
			"-i", input,
			"-map", "0",
			"-c", "copy",
			"-map_metadata", "0",
			"-map_chapters", "0",
			output,
		}
	}

	clean := fmt.Sprintf("a:%d", p.cleanAudioIndex)
	args := []string{
		"-y",
		"-i", input,
		"-filter_complex", p.FilterComplex,
		"-map", "0",
		"-map", "[" + audioOutputLabel + "]",
		"-c", "copy",
		"-c:" + clean, p.Encoder,
	}
	if p.BitRateBPS > 0 {
		args = append(args, "-b:"+clean, fmt.Sprintf("%d", p.BitRateBPS))
	}
	args = append(args,
		"-map_metadata", "0",
		"-map_chapters", "0",
		"-metadata:s:"+clean, "title="+CleanTitle,
		output,
	)
	return args
}
