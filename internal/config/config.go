package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Mode selects how detected profanity is censored in the output audio.
type Mode string

const (
	// ModeMute silences profanity spans.
	ModeMute Mode = "mute"
	// ModeBleep overlays a masking tone on profanity spans.
	ModeBleep Mode = "bleep"
)

// BackendKind selects the speech-to-text backend used for transcription.
type BackendKind string

const (
	// BackendLocalWhisper runs a locally resident Whisper model.
	BackendLocalWhisper BackendKind = "local_whisper"
	// BackendOpenAIAPI calls the hosted OpenAI transcription endpoint.
	BackendOpenAIAPI BackendKind = "openai_api"
)

const (
	DefaultMode               = ModeMute
	DefaultAudioLanguage      = "en"
	DefaultChunkLengthSeconds = 300
	DefaultMinConfidence      = 0.6
	DefaultMaxGapCombineMS    = 500
	DefaultOutputDir          = "out"
	DefaultBackend            = BackendLocalWhisper
	DefaultModel              = "base"
	DefaultLogLevel           = "info"
	DefaultFFmpegBinary       = "ffmpeg"
	DefaultFFprobeBinary      = "ffprobe"
	DefaultWhisperBinary      = "whisper"
)

// Config captures the merged run configuration (flags > environment > file >
// defaults).
type Config struct {
	InputPath  string
	OutputPath string

	Mode               Mode
	AudioLanguage      string
	ChunkLengthSeconds int
	MinConfidence      float64
	MaxGapCombineMS    int

	OutputDir           string
	EmitCleanTranscript bool
	EmitSubtitles       bool
	DebugDumpAudio      bool

	// Force bypasses the already-clean marker check and processes the input
	// regardless of prior runs.
	Force bool

	Backend BackendKind
	Model   string

	ProfanityListPath string
	ProfanityTerms    []string

	OpenAIAPIKey string

	FFmpegBinary  string
	FFprobeBinary string
	WhisperBinary string

	Verbose  bool
	LogLevel string
	LogFile  string
}

// Validate applies defaults, checks required fields, and rejects out-of-range
// values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return fmt.Errorf("config: input path is required")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("config: output path is required")
	}
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	if c.Mode != ModeMute && c.Mode != ModeBleep {
		return fmt.Errorf("config: invalid mode %q, expected %q or %q", c.Mode, ModeMute, ModeBleep)
	}
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.Backend != BackendLocalWhisper && c.Backend != BackendOpenAIAPI {
		return fmt.Errorf("config: invalid backend %q, expected %q or %q", c.Backend, BackendLocalWhisper, BackendOpenAIAPI)
	}
	if c.AudioLanguage == "" {
		c.AudioLanguage = DefaultAudioLanguage
	}
	if _, err := language.Parse(c.AudioLanguage); err != nil {
		return fmt.Errorf("config: invalid audio language %q: %w", c.AudioLanguage, err)
	}
	if c.ChunkLengthSeconds == 0 {
		c.ChunkLengthSeconds = DefaultChunkLengthSeconds
	}
	if c.ChunkLengthSeconds < 0 {
		return fmt.Errorf("config: chunk length must be positive, got %d", c.ChunkLengthSeconds)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("config: min confidence must be within [0,1], got %g", c.MinConfidence)
	}
	if c.MaxGapCombineMS < 0 {
		return fmt.Errorf("config: max gap must be >= 0 ms, got %d", c.MaxGapCombineMS)
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.FFmpegBinary == "" {
		c.FFmpegBinary = DefaultFFmpegBinary
	}
	if c.FFprobeBinary == "" {
		c.FFprobeBinary = DefaultFFprobeBinary
	}
	if c.WhisperBinary == "" {
		c.WhisperBinary = DefaultWhisperBinary
	}
	return nil
}

// ParseMode converts a user-provided censorship mode selector.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ModeMute):
		return ModeMute, nil
	case string(ModeBleep):
		return ModeBleep, nil
	}
	return "", fmt.Errorf("config: invalid mode %q, expected %q or %q", value, ModeMute, ModeBleep)
}

// ParseBackend converts a user-provided backend selector. Only canonical
// values are accepted, case-insensitively.
func ParseBackend(value string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(BackendLocalWhisper):
		return BackendLocalWhisper, nil
	case string(BackendOpenAIAPI):
		return BackendOpenAIAPI, nil
	}
	return "", fmt.Errorf("config: invalid backend %q, expected %q or %q", value, BackendLocalWhisper, BackendOpenAIAPI)
}
