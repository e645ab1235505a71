// Package media invokes the external ffmpeg/ffprobe collaborators: stream
// probing, mono PCM extraction, and the final censor remux.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ToolError reports a failed external tool invocation: non-zero exit or
// missing/undecodable output. It is fatal to the run.
type ToolError struct {
	Tool   string
	Err    error
	Output string
}

func (e *ToolError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("media: %s failed: %v: %s", e.Tool, e.Err, e.Output)
	}
	return fmt.Sprintf("media: %s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// ProbeResult represents the parsed output from an ffprobe inspection.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int               `json:"index"`
	CodecName string            `json:"codec_name"`
	CodecType string            `json:"codec_type"`
	BitRate   string            `json:"bit_rate"`
	Channels  int               `json:"channels"`
	Tags      map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Title returns the stream's title tag, if any.
func (s Stream) Title() string {
	return strings.TrimSpace(s.Tags["title"])
}

// BitRateBPS returns the stream bit rate in bits per second, or 0 when
// unavailable.
func (s Stream) BitRateBPS() int {
	rate, err := strconv.Atoi(strings.TrimSpace(s.BitRate))
	if err != nil || rate < 0 {
		return 0
	}
	return rate
}

// AudioStreams returns the container's audio streams in declaration order.
func (r ProbeResult) AudioStreams() []Stream {
	var streams []Stream
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			streams = append(streams, stream)
		}
	}
	return streams
}

// AudioStreamCount returns the number of audio streams discovered.
func (r ProbeResult) AudioStreamCount() int {
	return len(r.AudioStreams())
}

// PrimaryAudio returns the first audio stream, when present.
func (r ProbeResult) PrimaryAudio() (Stream, bool) {
	streams := r.AudioStreams()
	if len(streams) == 0 {
		return Stream{}, false
	}
	return streams[0], true
}

// Probe executes ffprobe against the provided path and decodes the JSON
// response, including per-stream tags used for marker detection.
func Probe(ctx context.Context, binary, path string) (ProbeResult, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return ProbeResult{}, errors.New("media: probe: empty path")
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", path,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return ProbeResult{}, &ToolError{Tool: "ffprobe", Err: err, Output: strings.TrimSpace(string(output))}
	}

	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return ProbeResult{}, &ToolError{Tool: "ffprobe", Err: fmt.Errorf("parse output: %w", err)}
	}
	return result, nil
}
