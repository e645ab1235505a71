package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zkrige/DialogSafe/internal/audio"
	"github.com/zkrige/DialogSafe/internal/config"
	"github.com/zkrige/DialogSafe/internal/telemetry"
)

const (
	// DefaultMaxRetries bounds the attempts per model per chunk.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the fixed pause between attempts.
	DefaultRetryDelay = 2 * time.Second
	// maxWorkers caps the transcription worker pool.
	maxWorkers = 8
	// fallbackWorkers is used when available parallelism cannot be determined.
	fallbackWorkers = 4
)

// Options configures the transcription run.
type Options struct {
	Language      string
	PrimaryModel  string
	FallbackModel string
	MaxRetries    int
	RetryDelay    time.Duration
	// Workers overrides the pool size; 0 selects min(8, available parallelism).
	Workers int
}

// ExhaustedError reports that every retry and fallback attempt failed for
// one chunk. The failure is isolated: the orchestrator logs it and excludes
// the chunk from the aggregate instead of aborting the run.
type ExhaustedError struct {
	Chunk int
	Model string
	Err   error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("transcribe: chunk %d exhausted all attempts (last model %s): %v", e.Chunk, e.Model, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Orchestrator fans chunk transcriptions out over a bounded worker pool and
// aggregates the fragments into one deterministic, time-ordered result.
type Orchestrator struct {
	backend Backend
	opts    Options
	log     *slog.Logger
	metrics *telemetry.Recorder
}

// New returns an Orchestrator. The model names in opts must already be
// normalized for the backend (see NormalizeModel).
func New(backend Backend, opts Options, logger *slog.Logger, metrics *telemetry.Recorder) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewRecorder(logger)
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if strings.TrimSpace(opts.FallbackModel) == "" {
		opts.FallbackModel = opts.PrimaryModel
	}
	return &Orchestrator{
		backend: backend,
		opts:    opts,
		log:     logger.With("component", "transcribe.orchestrator"),
		metrics: metrics,
	}
}

// NormalizedOptions builds Options from the run configuration, translating
// the configured model name for the selected backend.
func NormalizedOptions(cfg config.Config) Options {
	model := NormalizeModel(cfg.Model, cfg.Backend)
	return Options{
		Language:      cfg.AudioLanguage,
		PrimaryModel:  model,
		FallbackModel: model,
		MaxRetries:    DefaultMaxRetries,
		RetryDelay:    DefaultRetryDelay,
	}
}

type chunkResult struct {
	language string
	segments []Segment
	raw      json.RawMessage
}

// Run transcribes every chunk concurrently and merges the fragments. Failed
// chunks are logged and excluded; the only returned error is context
// cancellation.
func (o *Orchestrator) Run(ctx context.Context, chunks []audio.Chunk) (Result, error) {
	workers := o.workerCount()
	o.log.Info("transcribing chunks",
		"chunks", len(chunks),
		"workers", workers,
		"primary_model", o.opts.PrimaryModel,
		"fallback_model", o.opts.FallbackModel,
	)

	// Completion order across workers is unspecified; results land in a
	// slice keyed by position and ordering is restored by the final sort.
	results := make([]*chunkResult, len(chunks))

	g := &errgroup.Group{}
	g.SetLimit(workers)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			res, err := o.transcribeChunk(ctx, chunk)
			if err != nil {
				// Isolated failure: siblings keep running.
				o.log.Error("failed to transcribe chunk", "chunk", chunk.Index, "error", err)
				o.metrics.RecordChunkFailure()
				return nil
			}
			o.metrics.RecordChunk(len(res.segments))
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	return aggregate(results), nil
}

func (o *Orchestrator) workerCount() int {
	if o.opts.Workers > 0 {
		return o.opts.Workers
	}
	parallelism := runtime.NumCPU()
	if parallelism <= 0 {
		return fallbackWorkers
	}
	if parallelism > maxWorkers {
		return maxWorkers
	}
	return parallelism
}

// chunkState is the per-chunk retry/fallback state machine.
type chunkState int

const (
	tryingPrimary chunkState = iota
	tryingFallback
	exhausted
)

// transcribeChunk runs the retry/fallback state machine for one chunk:
// the primary model gets up to MaxRetries attempts; an unknown-language
// result abandons its remaining retries and falls through to the fallback
// model under a fresh retry budget, whose result is accepted as-is.
func (o *Orchestrator) transcribeChunk(ctx context.Context, chunk audio.Chunk) (*chunkResult, error) {
	var lastErr error
	lastModel := o.opts.PrimaryModel

	for state := tryingPrimary; state != exhausted; {
		model := o.opts.PrimaryModel
		finalModel := state == tryingFallback
		if finalModel {
			model = o.opts.FallbackModel
		}
		lastModel = model

		result, fallThrough, err := o.runModel(ctx, chunk, model, finalModel)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, err
		case err != nil:
			lastErr = err
		case fallThrough:
			// keep lastErr from the primary round, if any
		default:
			return result, nil
		}

		if finalModel {
			state = exhausted
		} else {
			state = tryingFallback
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("transcribe: no usable transcription for chunk %d", chunk.Index)
	}
	return nil, &ExhaustedError{Chunk: chunk.Index, Model: lastModel, Err: lastErr}
}

// runModel drives the retry loop for a single model. fallThrough reports an
// unknown-language result that should abandon this model in favour of the
// fallback.
func (o *Orchestrator) runModel(ctx context.Context, chunk audio.Chunk, model string, finalModel bool) (*chunkResult, bool, error) {
	var lastErr error
	for attempt := 1; attempt <= o.opts.MaxRetries; attempt++ {
		o.log.Info("transcribing chunk",
			"chunk", chunk.Index,
			"model", model,
			"attempt", attempt,
			"max_attempts", o.opts.MaxRetries,
		)

		resp, err := o.backend.Transcribe(ctx, chunk.Path, o.opts.Language, model)
		if err != nil {
			if ctx.Err() != nil {
				return nil, false, ctx.Err()
			}
			lastErr = err
			o.log.Warn("transcription attempt failed",
				"chunk", chunk.Index,
				"model", model,
				"attempt", attempt,
				"error", err,
			)
			if attempt < o.opts.MaxRetries {
				if err := sleepCtx(ctx, o.opts.RetryDelay); err != nil {
					return nil, false, err
				}
			}
			continue
		}

		language, segments := parseResponse(resp, chunk)
		if language == LanguageUnknown && !finalModel {
			o.log.Warn("chunk returned unknown language; retrying with fallback model",
				"chunk", chunk.Index,
				"model", model,
			)
			return nil, true, lastErr
		}

		raw, err := json.Marshal(resp)
		if err != nil {
			raw = nil
		}
		return &chunkResult{language: language, segments: segments, raw: raw}, false, nil
	}
	return nil, false, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// aggregate merges per-chunk fragments: segments re-sorted by
// (start, chunk index, id) so output ordering is deterministic regardless of
// scheduling, and the dominant language is the first non-unknown one in
// chunk order.
func aggregate(results []*chunkResult) Result {
	var out Result
	out.Language = LanguageUnknown

	for _, res := range results {
		if res == nil {
			continue
		}
		out.Segments = append(out.Segments, res.segments...)
		if res.raw != nil {
			out.Raw = append(out.Raw, res.raw)
		}
		if out.Language == LanguageUnknown && res.language != "" && res.language != LanguageUnknown {
			out.Language = res.language
		}
	}

	sort.SliceStable(out.Segments, func(i, j int) bool {
		a, b := out.Segments[i], out.Segments[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.ChunkIndex != b.ChunkIndex {
			return a.ChunkIndex < b.ChunkIndex
		}
		return a.ID < b.ID
	})
	return out
}
