package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Sample returns the annotated sample configuration file.
func Sample() string { return sampleConfig }

// fileConfig mirrors the TOML configuration file. Zero values mean "not set"
// and leave the corresponding Config field untouched.
type fileConfig struct {
	Mode                string  `toml:"mode"`
	AudioLanguage       string  `toml:"audio_language"`
	ChunkLengthSeconds  int     `toml:"chunk_length_seconds"`
	MinConfidence       float64 `toml:"min_confidence"`
	MaxGapCombineMS     int     `toml:"max_gap_combine_ms"`
	OutputDir           string  `toml:"output_dir"`
	EmitCleanTranscript *bool   `toml:"emit_clean_transcript"`
	EmitSubtitles       *bool   `toml:"emit_subtitles"`
	Backend             string  `toml:"whisper_backend"`
	Model               string  `toml:"whisper_model"`
	ProfanityList       string  `toml:"profanity_list"`
	FFmpegBinary        string  `toml:"ffmpeg_binary"`
	FFprobeBinary       string  `toml:"ffprobe_binary"`
	WhisperBinary       string  `toml:"whisper_binary"`
	LogLevel            string  `toml:"log_level"`
	LogFile             string  `toml:"log_file"`
}

// Loader merges configuration from an optional TOML file and environment
// variables. Tests can override Lookup to inject deterministic maps and
// ReadFile to avoid touching the filesystem.
type Loader struct {
	// ConfigPath points at a TOML file; when empty, DIALOGSAFE_CONFIG is
	// consulted and a missing file is not an error.
	ConfigPath string

	Lookup   func(string) (string, bool)
	ReadFile func(string) ([]byte, error)
}

// Load produces a Config with file and environment values applied on top of
// the built-in defaults. Flag handling and validation are left to the caller.
func (l Loader) Load() (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}
	if l.ReadFile == nil {
		l.ReadFile = os.ReadFile
	}

	cfg := Config{
		Mode:               DefaultMode,
		AudioLanguage:      DefaultAudioLanguage,
		ChunkLengthSeconds: DefaultChunkLengthSeconds,
		MinConfidence:      DefaultMinConfidence,
		MaxGapCombineMS:    DefaultMaxGapCombineMS,
		OutputDir:          DefaultOutputDir,
		Backend:            DefaultBackend,
		Model:              DefaultModel,
		LogLevel:           DefaultLogLevel,
		FFmpegBinary:       DefaultFFmpegBinary,
		FFprobeBinary:      DefaultFFprobeBinary,
		WhisperBinary:      DefaultWhisperBinary,
	}

	if err := l.applyFile(&cfg); err != nil {
		return Config{}, err
	}
	if err := l.applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (l Loader) applyFile(cfg *Config) error {
	path := strings.TrimSpace(l.ConfigPath)
	explicit := path != ""
	if !explicit {
		if value, ok := l.Lookup("DIALOGSAFE_CONFIG"); ok {
			path = strings.TrimSpace(value)
		}
	}
	if path == "" {
		return nil
	}

	data, err := l.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var file fileConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}

	if file.Mode != "" {
		mode, err := ParseMode(file.Mode)
		if err != nil {
			return err
		}
		cfg.Mode = mode
	}
	if file.Backend != "" {
		backend, err := ParseBackend(file.Backend)
		if err != nil {
			return err
		}
		cfg.Backend = backend
	}
	setString(&cfg.AudioLanguage, file.AudioLanguage)
	setString(&cfg.OutputDir, file.OutputDir)
	setString(&cfg.Model, file.Model)
	setString(&cfg.ProfanityListPath, file.ProfanityList)
	setString(&cfg.FFmpegBinary, file.FFmpegBinary)
	setString(&cfg.FFprobeBinary, file.FFprobeBinary)
	setString(&cfg.WhisperBinary, file.WhisperBinary)
	setString(&cfg.LogLevel, file.LogLevel)
	setString(&cfg.LogFile, file.LogFile)
	if file.ChunkLengthSeconds != 0 {
		cfg.ChunkLengthSeconds = file.ChunkLengthSeconds
	}
	if file.MinConfidence != 0 {
		cfg.MinConfidence = file.MinConfidence
	}
	if file.MaxGapCombineMS != 0 {
		cfg.MaxGapCombineMS = file.MaxGapCombineMS
	}
	if file.EmitCleanTranscript != nil {
		cfg.EmitCleanTranscript = *file.EmitCleanTranscript
	}
	if file.EmitSubtitles != nil {
		cfg.EmitSubtitles = *file.EmitSubtitles
	}
	return nil
}

func (l Loader) applyEnv(cfg *Config) error {
	if value, ok := l.lookupTrimmed("MODE"); ok {
		mode, err := ParseMode(value)
		if err != nil {
			return err
		}
		cfg.Mode = mode
	}
	if value, ok := l.lookupTrimmed("WHISPER_BACKEND"); ok {
		backend, err := ParseBackend(value)
		if err != nil {
			return err
		}
		cfg.Backend = backend
	}

	l.overrideString("AUDIO_LANGUAGE", &cfg.AudioLanguage)
	l.overrideString("WHISPER_MODEL", &cfg.Model)
	l.overrideString("OUTPUT_DIR", &cfg.OutputDir)
	l.overrideString("PROFANITY_LIST", &cfg.ProfanityListPath)
	l.overrideString("OPENAI_API_KEY", &cfg.OpenAIAPIKey)
	l.overrideString("FFMPEG_BINARY", &cfg.FFmpegBinary)
	l.overrideString("FFPROBE_BINARY", &cfg.FFprobeBinary)
	l.overrideString("WHISPER_BINARY", &cfg.WhisperBinary)
	l.overrideString("LOG_LEVEL", &cfg.LogLevel)
	l.overrideString("LOG_FILE", &cfg.LogFile)

	if err := l.overrideInt("CHUNK_LENGTH_SECONDS", &cfg.ChunkLengthSeconds); err != nil {
		return err
	}
	if err := l.overrideInt("MAX_GAP_COMBINE_MS", &cfg.MaxGapCombineMS); err != nil {
		return err
	}
	if err := l.overrideFloat("MIN_CONFIDENCE", &cfg.MinConfidence); err != nil {
		return err
	}
	if err := l.overrideBool("EMIT_CLEAN_TRANSCRIPT", &cfg.EmitCleanTranscript); err != nil {
		return err
	}
	if err := l.overrideBool("EMIT_SUBTITLES", &cfg.EmitSubtitles); err != nil {
		return err
	}
	if err := l.overrideBool("VERBOSE", &cfg.Verbose); err != nil {
		return err
	}
	if err := l.overrideBool("DEBUG_DUMP_AUDIO", &cfg.DebugDumpAudio); err != nil {
		return err
	}
	if err := l.overrideBool("FORCE", &cfg.Force); err != nil {
		return err
	}
	return nil
}

func (l Loader) lookupTrimmed(key string) (string, bool) {
	value, ok := l.Lookup(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

func (l Loader) overrideString(key string, target *string) {
	if value, ok := l.lookupTrimmed(key); ok {
		*target = value
	}
}

func (l Loader) overrideInt(key string, target *int) error {
	value, ok := l.lookupTrimmed(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("config: invalid integer for %s=%q", key, value)
	}
	*target = parsed
	return nil
}

func (l Loader) overrideFloat(key string, target *float64) error {
	value, ok := l.lookupTrimmed(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("config: invalid float for %s=%q", key, value)
	}
	*target = parsed
	return nil
}

func (l Loader) overrideBool(key string, target *bool) error {
	value, ok := l.lookupTrimmed(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(value) {
	case "true":
		*target = true
	case "false":
		*target = false
	default:
		return fmt.Errorf("config: invalid boolean for %s=%q, expected 'true' or 'false'", key, value)
	}
	return nil
}

func setString(target *string, value string) {
	if strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}
