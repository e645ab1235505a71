package media

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const sampleProbeJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video"},
    {"index": 1, "codec_name": "ac3", "codec_type": "audio", "bit_rate": "384000", "channels": 6, "tags": {"language": "eng"}},
    {"index": 2, "codec_name": "aac", "codec_type": "audio", "bit_rate": "128000", "channels": 2, "tags": {"title": "Clean"}}
  ],
  "format": {"filename": "movie.mkv", "nb_streams": 3, "duration": "5400.040000", "format_name": "matroska,webm"}
}`

func TestProbeResultDecoding(t *testing.T) {
	var result ProbeResult
	if err := json.Unmarshal([]byte(sampleProbeJSON), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if result.Format.Filename != "movie.mkv" || result.Format.NBStreams != 3 {
		t.Errorf("format = %+v", result.Format)
	}

	audio := result.AudioStreams()
	if len(audio) != 2 {
		t.Fatalf("audio streams = %d, want 2", len(audio))
	}
	if result.AudioStreamCount() != 2 {
		t.Errorf("count = %d", result.AudioStreamCount())
	}

	primary, ok := result.PrimaryAudio()
	if !ok {
		t.Fatal("expected a primary audio stream")
	}
	if primary.CodecName != "ac3" || primary.BitRateBPS() != 384000 {
		t.Errorf("primary = %+v", primary)
	}
	if primary.Title() != "" {
		t.Errorf("primary title = %q, want empty", primary.Title())
	}
	if audio[1].Title() != "Clean" {
		t.Errorf("second title = %q", audio[1].Title())
	}
}

func TestPrimaryAudioAbsent(t *testing.T) {
	result := ProbeResult{Streams: []Stream{{CodecType: "video"}}}
	if _, ok := result.PrimaryAudio(); ok {
		t.Fatal("no audio stream should yield ok=false")
	}
}

func TestBitRateBPS(t *testing.T) {
	cases := map[string]int{
		"128000":  128000,
		" 64000 ": 64000,
		"":        0,
		"N/A":     0,
		"-5":      0,
	}
	for input, want := range cases {
		s := Stream{BitRate: input}
		if got := s.BitRateBPS(); got != want {
			t.Errorf("BitRateBPS(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestToolError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &ToolError{Tool: "ffprobe", Err: cause, Output: "No such file or directory"}

	if !errors.Is(err, cause) {
		t.Error("ToolError should unwrap to its cause")
	}
	msg := err.Error()
	for _, want := range []string{"ffprobe", "exit status 1", "No such file"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}

	bare := &ToolError{Tool: "ffmpeg", Err: cause}
	if strings.HasSuffix(bare.Error(), ": ") {
		t.Errorf("bare error malformed: %q", bare.Error())
	}
}
