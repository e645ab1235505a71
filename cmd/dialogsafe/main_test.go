package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zkrige/DialogSafe/internal/config"
)

func TestSampleConfigCommand(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"sample-config"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "whisper_backend") {
		t.Fatalf("sample config output incomplete:\n%s", out.String())
	}
}

func TestFlagsOverrideLoadedConfig(t *testing.T) {
	root := newRootCommand()
	if err := root.ParseFlags([]string{
		"--input", "in.mkv",
		"--output", "out.mkv",
		"--mode", "bleep",
		"--min-confidence", "0.8",
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := config.Config{Mode: config.ModeMute, MinConfidence: 0.6, MaxGapCombineMS: 500}
	flags := flagValues{
		input:         "in.mkv",
		output:        "out.mkv",
		mode:          "bleep",
		minConfidence: 0.8,
	}
	if err := applyFlags(&cfg, root, flags); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}

	if cfg.Mode != config.ModeBleep {
		t.Errorf("mode = %q, want flag to win", cfg.Mode)
	}
	if cfg.MinConfidence != 0.8 {
		t.Errorf("min confidence = %g", cfg.MinConfidence)
	}
	// Untouched flags leave merged values alone.
	if cfg.MaxGapCombineMS != 500 {
		t.Errorf("max gap = %d, must not be reset by unset flag", cfg.MaxGapCombineMS)
	}
	if cfg.InputPath != "in.mkv" || cfg.OutputPath != "out.mkv" {
		t.Errorf("paths = %q/%q", cfg.InputPath, cfg.OutputPath)
	}
}

func TestApplyFlagsRejectsBadMode(t *testing.T) {
	root := newRootCommand()
	if err := root.ParseFlags([]string{"--mode", "silence"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := config.Config{}
	if err := applyFlags(&cfg, root, flagValues{mode: "silence"}); err == nil {
		t.Fatal("expected error for invalid mode flag")
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[float64]string{
		0:     "0:00.000",
		1.5:   "0:01.500",
		65.25: "1:05.250",
		600:   "10:00.000",
		-2:    "0:00.000",
	}
	for input, want := range cases {
		if got := formatClock(input); got != want {
			t.Errorf("formatClock(%g) = %q, want %q", input, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		"info":    "INFO",
		"":        "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for input, want := range cases {
		if got := parseLevel(input).Level().String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}
