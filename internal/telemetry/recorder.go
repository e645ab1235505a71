// Package telemetry tracks pipeline-run counters for the end-of-run summary.
package telemetry

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Recorder accumulates counters across one or more pipeline runs. All
// methods are safe for concurrent use by transcription workers.
type Recorder struct {
	log *slog.Logger

	chunksTranscribed atomic.Uint64
	chunksFailed      atomic.Uint64
	segments          atomic.Uint64
	hits              atomic.Uint64
	spans             atomic.Uint64
	toolInvocations   atomic.Uint64
}

// Snapshot captures cumulative metrics recorded so far.
type Snapshot struct {
	ChunksTranscribed uint64
	ChunksFailed      uint64
	Segments          uint64
	Hits              uint64
	Spans             uint64
	ToolInvocations   uint64
}

// NewRecorder constructs a Recorder using the provided logger.
func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		log: logger.With("component", "telemetry.Recorder"),
	}
}

// RecordChunk counts one successfully transcribed chunk and its segments.
func (r *Recorder) RecordChunk(segments int) {
	if r == nil {
		return
	}
	r.chunksTranscribed.Add(1)
	if segments > 0 {
		r.segments.Add(uint64(segments))
	}
}

// RecordChunkFailure counts a chunk whose transcription was exhausted.
func (r *Recorder) RecordChunkFailure() {
	if r == nil {
		return
	}
	r.chunksFailed.Add(1)
}

// RecordDetection counts the hits and merged spans of one detection pass.
func (r *Recorder) RecordDetection(hits, spans int) {
	if r == nil {
		return
	}
	if hits > 0 {
		r.hits.Add(uint64(hits))
	}
	if spans > 0 {
		r.spans.Add(uint64(spans))
	}
}

// RecordTool counts one external tool invocation and logs its duration.
func (r *Recorder) RecordTool(tool string, duration time.Duration) {
	if r == nil {
		return
	}
	r.toolInvocations.Add(1)
	r.log.Debug("external tool finished",
		"tool", tool,
		"duration_ms", duration.Milliseconds(),
	)
}

// Snapshot returns an immutable view of the recorder totals.
func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		ChunksTranscribed: r.chunksTranscribed.Load(),
		ChunksFailed:      r.chunksFailed.Load(),
		Segments:          r.segments.Load(),
		Hits:              r.hits.Load(),
		Spans:             r.spans.Load(),
		ToolInvocations:   r.toolInvocations.Load(),
	}
}
