// Package pipeline wires the full censoring run: probe, extract, split,
// transcribe, detect, merge, and remux.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/zkrige/DialogSafe/internal/audio"
	"github.com/zkrige/DialogSafe/internal/buildinfo"
	"github.com/zkrige/DialogSafe/internal/censor"
	"github.com/zkrige/DialogSafe/internal/config"
	"github.com/zkrige/DialogSafe/internal/media"
	"github.com/zkrige/DialogSafe/internal/profanity"
	"github.com/zkrige/DialogSafe/internal/report"
	"github.com/zkrige/DialogSafe/internal/telemetry"
	"github.com/zkrige/DialogSafe/internal/transcribe"
)

// extractSampleRate is the mono PCM rate fed to the transcription backends.
const extractSampleRate = 16000

// ErrAlreadyClean reports an input that carries the clean marker from a
// previous run and was skipped.
var ErrAlreadyClean = errors.New("pipeline: input already carries a clean audio track")

// ErrLocked reports that another run already holds the output lock.
var ErrLocked = errors.New("pipeline: another run is in progress for this output")

// Summary is the outcome of one run, feeding the CLI's end-of-run report.
type Summary struct {
	RunID       string
	Language    string
	Chunks      int
	Segments    int
	Hits        []profanity.Hit
	Spans       []profanity.Span
	Passthrough bool
	OutputPath  string
	Elapsed     time.Duration
	Metrics     telemetry.Snapshot
}

// Pipeline executes censoring runs for one configuration.
type Pipeline struct {
	cfg     config.Config
	backend transcribe.Backend
	log     *slog.Logger
	metrics *telemetry.Recorder

	// inspect runs the container inspection; swapped out in tests.
	inspect func(ctx context.Context, binary, path string) (media.ProbeResult, error)
}

// New builds a Pipeline, selecting the transcription backend from the
// configuration. A shared registry serializes local model inference.
func New(cfg config.Config, logger *slog.Logger, metrics *telemetry.Recorder) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewRecorder(logger)
	}

	var backend transcribe.Backend
	switch cfg.Backend {
	case config.BackendOpenAIAPI:
		backend = transcribe.NewOpenAIBackend(cfg.OpenAIAPIKey, logger)
	case config.BackendLocalWhisper:
		backend = transcribe.NewLocalBackend(transcribe.NewRegistry(), cfg.WhisperBinary, logger)
	default:
		return nil, fmt.Errorf("pipeline: unsupported backend %q", cfg.Backend)
	}

	return &Pipeline{
		cfg:     cfg,
		backend: backend,
		log:     logger.With("component", "pipeline"),
		metrics: metrics,
		inspect: media.Probe,
	}, nil
}

// Run executes the full pipeline once. The run is exclusive per output path;
// a concurrent run against the same output returns ErrLocked.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	runID := uuid.NewString()
	log := p.log.With("run_id", runID)

	summary := Summary{RunID: runID, OutputPath: p.cfg.OutputPath}

	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return summary, fmt.Errorf("pipeline: create output dir: %w", err)
	}
	if dir := filepath.Dir(p.cfg.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return summary, fmt.Errorf("pipeline: create output dir: %w", err)
		}
	}

	lock := flock.New(p.cfg.OutputPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("pipeline: acquire run lock: %w", err)
	}
	if !ok {
		return summary, ErrLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("failed to release run lock", "error", err)
		}
		_ = os.Remove(lock.Path())
	}()

	log.Info("starting run",
		"input", p.cfg.InputPath,
		"output", p.cfg.OutputPath,
		"mode", p.cfg.Mode,
		"backend", p.cfg.Backend,
		"model", p.cfg.Model,
	)

	probe, err := p.inspect(ctx, p.cfg.FFprobeBinary, p.cfg.InputPath)
	if err != nil {
		return summary, err
	}
	if censor.HasCleanMarker(probe) {
		if !p.cfg.Force {
			log.Info("input already processed; skipping", "input", p.cfg.InputPath)
			return summary, ErrAlreadyClean
		}
		log.Warn("input already processed; continuing because the run is forced")
	}

	workDir, err := os.MkdirTemp("", "dialogsafe_")
	if err != nil {
		return summary, fmt.Errorf("pipeline: create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	monoWAV := filepath.Join(workDir, "audio.wav")
	extractStart := time.Now()
	if err := media.ExtractMonoPCM(ctx, p.cfg.FFmpegBinary, p.cfg.InputPath, monoWAV, extractSampleRate, log); err != nil {
		return summary, err
	}
	p.metrics.RecordTool("ffmpeg", time.Since(extractStart))

	chunks, err := audio.Split(monoWAV, p.cfg.ChunkLengthSeconds, workDir, log)
	if err != nil {
		return summary, err
	}
	summary.Chunks = len(chunks)
	log.Info("audio prepared", "chunks", len(chunks))

	if p.cfg.DebugDumpAudio {
		if err := p.dumpDebugAudio(monoWAV, chunks, log); err != nil {
			log.Warn("failed to dump debug audio", "error", err)
		}
	}

	orch := transcribe.New(p.backend, transcribe.NormalizedOptions(p.cfg), log, p.metrics)
	result, err := orch.Run(ctx, chunks)
	if err != nil {
		return summary, err
	}
	summary.Language = result.Language
	summary.Segments = len(result.Segments)
	log.Info("transcription complete",
		"segments", len(result.Segments),
		"language", result.Language,
	)

	terms := profanity.LoadTerms(p.cfg.ProfanityTerms)
	hits, err := profanity.Detect(result, terms, profanity.Options{
		MinConfidence: p.cfg.MinConfidence,
		Mode:          p.cfg.Mode,
	}, log)
	if err != nil {
		return summary, err
	}
	spans := profanity.MergeSpans(hits, p.cfg.MaxGapCombineMS)
	p.metrics.RecordDetection(len(hits), len(spans))
	summary.Hits = hits
	summary.Spans = spans
	log.Info("detection complete", "hits", len(hits), "spans", len(spans))

	if err := p.writeArtifacts(result, spans, log); err != nil {
		return summary, err
	}

	plan := censor.Compile(p.cfg.Mode, spans, probe, extractSampleRate, log)
	summary.Passthrough = plan.Passthrough
	remuxStart := time.Now()
	if err := media.RunFFmpeg(ctx, p.cfg.FFmpegBinary, plan.FFmpegArgs(p.cfg.InputPath, p.cfg.OutputPath), log); err != nil {
		return summary, err
	}
	p.metrics.RecordTool("ffmpeg", time.Since(remuxStart))

	summary.Elapsed = time.Since(started)
	summary.Metrics = p.metrics.Snapshot()
	log.Info("run complete",
		"output", p.cfg.OutputPath,
		"spans", len(spans),
		"passthrough", plan.Passthrough,
		"elapsed", summary.Elapsed.Round(time.Millisecond),
	)
	return summary, nil
}

// writeArtifacts persists the transcript, censor log, and the optional clean
// transcript and subtitle outputs under the output directory.
func (p *Pipeline) writeArtifacts(result transcribe.Result, spans []profanity.Span, log *slog.Logger) error {
	transcriptPath := filepath.Join(p.cfg.OutputDir, "transcript.json")
	metadata := buildinfo.RunMetadata(p.cfg.Model, result.Language)
	if err := report.SaveTranscript(result, metadata, transcriptPath); err != nil {
		return err
	}
	censorLogPath := filepath.Join(p.cfg.OutputDir, "censor_log.json")
	if err := report.SaveCensorLog(spans, censorLogPath); err != nil {
		return err
	}
	log.Info("artifacts written", "transcript", transcriptPath, "censor_log", censorLogPath)

	if p.cfg.EmitCleanTranscript {
		cleanPath := filepath.Join(p.cfg.OutputDir, "transcript_clean.txt")
		if err := report.SaveCleanTranscript(result, spans, cleanPath); err != nil {
			return err
		}
		log.Info("clean transcript written", "path", cleanPath)
	}
	if p.cfg.EmitSubtitles {
		srtPath := filepath.Join(p.cfg.OutputDir, "censored_subtitles.srt")
		if err := report.WriteSubtitles(spans, srtPath); err != nil {
			return err
		}
		log.Info("subtitles written", "path", srtPath)
	}
	return nil
}

// dumpDebugAudio copies the extracted WAV and every chunk into the output
// directory for inspection.
func (p *Pipeline) dumpDebugAudio(monoWAV string, chunks []audio.Chunk, log *slog.Logger) error {
	debugDir := filepath.Join(p.cfg.OutputDir, "debug_audio")
	if err := os.MkdirAll(debugDir, 0o755); err != nil {
		return err
	}
	if err := copyFile(monoWAV, filepath.Join(debugDir, filepath.Base(monoWAV))); err != nil {
		return err
	}
	for _, chunk := range chunks {
		if err := copyFile(chunk.Path, filepath.Join(debugDir, filepath.Base(chunk.Path))); err != nil {
			return err
		}
	}
	log.Info("debug audio dumped", "dir", debugDir, "files", len(chunks)+1)
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
