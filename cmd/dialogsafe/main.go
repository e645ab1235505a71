// Command dialogsafe censors profanity in a media file: it transcribes the
// audio, locates profane words, and remuxes the input with an appended clean
// audio track.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zkrige/DialogSafe/internal/buildinfo"
	"github.com/zkrige/DialogSafe/internal/config"
	"github.com/zkrige/DialogSafe/internal/pipeline"
	"github.com/zkrige/DialogSafe/internal/telemetry"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, pipeline.ErrAlreadyClean) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

// flagValues holds raw flag input before it is merged into the configuration.
type flagValues struct {
	input               string
	output              string
	mode                string
	backend             string
	model               string
	profanityList       string
	audioLanguage       string
	chunkLengthSeconds  int
	minConfidence       float64
	maxGapCombineMS     int
	outputDir           string
	emitCleanTranscript bool
	emitSubtitles       bool
	debugDumpAudio      bool
	force               bool
	verbose             bool
	configPath          string
	logLevel            string
	logFile             string
}

func newRootCommand() *cobra.Command {
	var flags flagValues

	cmd := &cobra.Command{
		Use:     "dialogsafe",
		Version: buildinfo.Version(),
		Short:   "Censor profanity in a media file's audio track",
		Long: `dialogsafe transcribes a media file's audio, detects profanity with
word-level timing, and writes a copy of the input with an additional
censored audio track (muted or bleeped).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "input media file (required)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output media file (required)")
	cmd.Flags().StringVar(&flags.mode, "mode", "", "censorship mode: mute or bleep")
	cmd.Flags().StringVar(&flags.backend, "whisper-backend", "", "transcription backend: local_whisper or openai_api")
	cmd.Flags().StringVar(&flags.model, "whisper-model", "", "model name for the selected backend")
	cmd.Flags().StringVar(&flags.profanityList, "profanity-list", "", "term list file (json, yaml, or plain text)")
	cmd.Flags().StringVar(&flags.audioLanguage, "audio-language", "", "expected audio language (BCP 47)")
	cmd.Flags().IntVar(&flags.chunkLengthSeconds, "chunk-length-seconds", 0, "transcription chunk length in seconds")
	cmd.Flags().Float64Var(&flags.minConfidence, "min-confidence", 0, "minimum word confidence for detection")
	cmd.Flags().IntVar(&flags.maxGapCombineMS, "max-gap-combine-ms", 0, "merge hits closer than this gap (ms)")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "directory for run artifacts")
	cmd.Flags().BoolVar(&flags.emitCleanTranscript, "emit-clean-transcript", false, "write a masked plain-text transcript")
	cmd.Flags().BoolVar(&flags.emitSubtitles, "emit-subtitles", false, "write censored SRT subtitles")
	cmd.Flags().BoolVar(&flags.debugDumpAudio, "debug-dump-audio", false, "keep extracted audio and chunks for inspection")
	cmd.Flags().BoolVar(&flags.force, "force", false, "process inputs that already carry a clean track")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "TOML configuration file")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "rotating log file (stdout when unset)")

	cmd.AddCommand(newSampleConfigCommand())
	return cmd
}

func newSampleConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sample-config",
		Short: "Print an annotated sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.Sample())
			return err
		},
	}
}

func run(cmd *cobra.Command, flags flagValues) error {
	cfg, err := config.Loader{ConfigPath: flags.configPath}.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return err
	}
	if err := applyFlags(&cfg, cmd, flags); err != nil {
		slog.Error("invalid flag value", "error", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}
	if err := cfg.LoadTerms(); err != nil {
		slog.Error("failed to load profanity terms", "error", err)
		return err
	}

	logger, closeLogger := newLogger(cfg)
	defer closeLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.NewRecorder(logger)
	p, err := pipeline.New(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		return err
	}

	summary, err := p.Run(ctx)
	switch {
	case errors.Is(err, pipeline.ErrAlreadyClean):
		fmt.Fprintln(cmd.OutOrStdout(), "Input already carries a clean audio track; nothing to do (use --force to reprocess).")
		return err
	case errors.Is(err, context.Canceled):
		logger.Warn("run cancelled")
		return err
	case err != nil:
		logger.Error("run failed", "error", err)
		return err
	}

	printSummary(cmd.OutOrStdout(), summary)

	snapshot := metrics.Snapshot()
	logger.Info("telemetry totals",
		"chunks_transcribed", snapshot.ChunksTranscribed,
		"chunks_failed", snapshot.ChunksFailed,
		"segments", snapshot.Segments,
		"hits", snapshot.Hits,
		"spans", snapshot.Spans,
		"tool_invocations", snapshot.ToolInvocations,
	)
	return nil
}

// applyFlags overlays explicitly set flags onto the merged configuration.
// Unset flags leave file and environment values untouched.
func applyFlags(cfg *config.Config, cmd *cobra.Command, flags flagValues) error {
	cfg.InputPath = flags.input
	cfg.OutputPath = flags.output

	if cmd.Flags().Changed("mode") {
		mode, err := config.ParseMode(flags.mode)
		if err != nil {
			return err
		}
		cfg.Mode = mode
	}
	if cmd.Flags().Changed("whisper-backend") {
		backend, err := config.ParseBackend(flags.backend)
		if err != nil {
			return err
		}
		cfg.Backend = backend
	}
	if cmd.Flags().Changed("whisper-model") {
		cfg.Model = flags.model
	}
	if cmd.Flags().Changed("profanity-list") {
		cfg.ProfanityListPath = flags.profanityList
	}
	if cmd.Flags().Changed("audio-language") {
		cfg.AudioLanguage = flags.audioLanguage
	}
	if cmd.Flags().Changed("chunk-length-seconds") {
		cfg.ChunkLengthSeconds = flags.chunkLengthSeconds
	}
	if cmd.Flags().Changed("min-confidence") {
		cfg.MinConfidence = flags.minConfidence
	}
	if cmd.Flags().Changed("max-gap-combine-ms") {
		cfg.MaxGapCombineMS = flags.maxGapCombineMS
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = flags.outputDir
	}
	if cmd.Flags().Changed("emit-clean-transcript") {
		cfg.EmitCleanTranscript = flags.emitCleanTranscript
	}
	if cmd.Flags().Changed("emit-subtitles") {
		cfg.EmitSubtitles = flags.emitSubtitles
	}
	if cmd.Flags().Changed("debug-dump-audio") {
		cfg.DebugDumpAudio = flags.debugDumpAudio
	}
	if cmd.Flags().Changed("force") {
		cfg.Force = flags.force
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flags.verbose
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	return nil
}
