package censor

import (
	"strings"
	"testing"

	"github.com/zkrige/DialogSafe/internal/config"
	"github.com/zkrige/DialogSafe/internal/media"
	"github.com/zkrige/DialogSafe/internal/profanity"
)

func probeWith(streams ...media.Stream) media.ProbeResult {
	return media.ProbeResult{Streams: streams}
}

func audioStream(codec, bitRate, title string) media.Stream {
	s := media.Stream{CodecType: "audio", CodecName: codec, BitRate: bitRate}
	if title != "" {
		s.Tags = map[string]string{"title": title}
	}
	return s
}

func TestCompilePassthroughWithoutSpans(t *testing.T) {
	plan := Compile(config.ModeMute, nil, probeWith(audioStream("aac", "128000", "")), 16000, nil)
	if !plan.Passthrough {
		t.Fatal("expected passthrough plan")
	}

	args := plan.FFmpegArgs("in.mkv", "out.mkv")
	joined := strings.Join(args, " ")
	for _, want := range []string{"-map 0", "-c copy", "-map_metadata 0", "-map_chapters 0"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %q", want, joined)
		}
	}
	if strings.Contains(joined, "title=") {
		t.Error("passthrough must not add the clean marker")
	}
	if strings.Contains(joined, "-filter_complex") {
		t.Error("passthrough must not carry a filter graph")
	}
}

func TestCompileMutePlan(t *testing.T) {
	spans := []profanity.Span{{Start: 1.0, End: 2.0}}
	probe := probeWith(
		media.Stream{CodecType: "video", CodecName: "h264"},
		audioStream("ac3", "384000", ""),
		audioStream("aac", "128000", "Commentary"),
	)

	plan := Compile(config.ModeMute, spans, probe, 16000, nil)
	if plan.Passthrough {
		t.Fatal("unexpected passthrough")
	}
	if plan.Encoder != "ac3" {
		t.Errorf("encoder = %q, want the primary stream's codec", plan.Encoder)
	}
	if plan.BitRateBPS != 384000 {
		t.Errorf("bit rate = %d", plan.BitRateBPS)
	}
	if !strings.HasPrefix(plan.FilterComplex, "[0:a:0]volume=") || !strings.HasSuffix(plan.FilterComplex, "[aout]") {
		t.Errorf("filter = %q", plan.FilterComplex)
	}

	args := plan.FFmpegArgs("in.mkv", "out.mkv")
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-filter_complex",
		"-map 0",
		"-map [aout]",
		"-c copy",
		// Two original audio streams, so the appended one is a:2.
		"-c:a:2 ac3",
		"-b:a:2 384000",
		"-metadata:s:a:2 title=Clean",
		"-map_metadata 0",
		"-map_chapters 0",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %q", want, joined)
		}
	}
	if args[len(args)-1] != "out.mkv" {
		t.Errorf("output must be the final argument, got %q", args[len(args)-1])
	}
}

func TestCompileBleepPlanUsesGraph(t *testing.T) {
	spans := []profanity.Span{{Start: 1.0, End: 2.0}}
	plan := Compile(config.ModeBleep, spans, probeWith(audioStream("aac", "", "")), 16000, nil)
	if !strings.Contains(plan.FilterComplex, "aevalsrc=") {
		t.Errorf("filter = %q, want bleep graph", plan.FilterComplex)
	}
	if !strings.Contains(plan.FilterComplex, "amix=") {
		t.Errorf("filter = %q, want mix stage", plan.FilterComplex)
	}
}

func TestCompileUnknownCodecFallsBackToAAC(t *testing.T) {
	spans := []profanity.Span{{Start: 0, End: 1}}
	cases := map[string]string{
		"aac":  "aac",
		"AC3":  "ac3",
		"eac3": "eac3",
		"dts":  "aac",
		"opus": "aac",
		"":     "aac",
	}
	for codec, want := range cases {
		plan := Compile(config.ModeMute, spans, probeWith(audioStream(codec, "", "")), 16000, nil)
		if plan.Encoder != want {
			t.Errorf("codec %q: encoder = %q, want %q", codec, plan.Encoder, want)
		}
	}
}

func TestCompileNoAudioStreamStillPlans(t *testing.T) {
	spans := []profanity.Span{{Start: 0, End: 1}}
	plan := Compile(config.ModeMute, spans, probeWith(media.Stream{CodecType: "video"}), 16000, nil)
	if plan.Encoder != "aac" {
		t.Errorf("encoder = %q, want default", plan.Encoder)
	}
	if plan.BitRateBPS != 0 {
		t.Errorf("bit rate = %d, want unset", plan.BitRateBPS)
	}
	args := plan.FFmpegArgs("in.mkv", "out.mkv")
	if strings.Contains(strings.Join(args, " "), "-b:a:0") {
		t.Error("no bit rate flag expected without a probed rate")
	}
}

func TestHasCleanMarker(t *testing.T) {
	cases := []struct {
		name  string
		probe media.ProbeResult
		want  bool
	}{
		{"no streams", probeWith(), false},
		{"untitled audio", probeWith(audioStream("aac", "", "")), false},
		{"other title", probeWith(audioStream("aac", "", "Commentary")), false},
		{"clean marker", probeWith(audioStream("aac", "", "Clean")), true},
		{"marker on later stream", probeWith(
			audioStream("ac3", "", ""),
			audioStream("aac", "", "Clean"),
		), true},
		{"marker on video ignored", probeWith(media.Stream{
			CodecType: "video",
			Tags:      map[string]string{"title": "Clean"},
		}), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasCleanMarker(tc.probe); got != tc.want {
				t.Fatalf("HasCleanMarker = %v, want %v", got, tc.want)
			}
		})
	}
}
