// Package audio splits extracted mono PCM audio into bounded chunks for
// transcription.
package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// MinChunkSeconds is the shortest chunk worth transcribing. Transcription
// backends reject audio shorter than ~0.1 s, so tail windows below this
// floor are consumed without being emitted.
const MinChunkSeconds = 0.11

// ErrChunkLength reports a non-positive chunk length configuration.
var ErrChunkLength = errors.New("audio: chunk length must be positive")

// ErrNotMono reports source audio that is not single-channel.
var ErrNotMono = errors.New("audio: expected mono audio")

// Chunk is one bounded slice of the source audio, written to its own WAV
// file with an absolute start offset into the full recording.
type Chunk struct {
	Index    int
	Path     string
	Start    float64
	Duration float64
}

// Split divides a mono WAV file into windows of chunkSeconds (the last may be
// shorter) and writes each window to destDir. Windows shorter than
// MinChunkSeconds are skipped, but their frames are still consumed so chunk
// indices stay stable.
func Split(inputWAV string, chunkSeconds int, destDir string, logger *slog.Logger) ([]Chunk, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if chunkSeconds <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrChunkLength, chunkSeconds)
	}

	src, err := os.Open(inputWAV)
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", inputWAV, err)
	}
	defer src.Close()

	format, err := parseWAV(src)
	if err != nil {
		return nil, err
	}
	if format.channels != 1 {
		return nil, fmt.Errorf("%w, got %d channels", ErrNotMono, format.channels)
	}
	if format.sampleRate == 0 || format.blockAlign == 0 {
		return nil, fmt.Errorf("audio: invalid WAV format in %s", inputWAV)
	}

	totalFrames := int64(format.frames())
	framesPerChunk := int64(chunkSeconds) * int64(format.sampleRate)
	totalChunks := (totalFrames + framesPerChunk - 1) / framesPerChunk

	chunks := make([]Chunk, 0, totalChunks)
	bytesPerFrame := int64(format.blockAlign)

	for index := int64(0); index < totalChunks; index++ {
		startFrame := index * framesPerChunk
		framesToRead := min(framesPerChunk, totalFrames-startFrame)
		if framesToRead <= 0 {
			break
		}

		duration := float64(framesToRead) / float64(format.sampleRate)
		if duration < MinChunkSeconds {
			// Consume the frames so later indices stay aligned with the
			// window positions, but do not emit a chunk the backend would
			// reject as too short.
			if _, err := src.Seek(framesToRead*bytesPerFrame, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("audio: skip short window %d: %w", index, err)
			}
			logger.Debug("dropping short tail window",
				"index", index,
				"duration", duration,
			)
			continue
		}

		data := make([]byte, framesToRead*bytesPerFrame)
		if _, err := io.ReadFull(src, data); err != nil {
			return nil, fmt.Errorf("audio: read window %d: %w", index, err)
		}

		chunkPath := filepath.Join(destDir, fmt.Sprintf("chunk_%03d.wav", index))
		if err := writeWAV(chunkPath, format, data); err != nil {
			return nil, err
		}

		chunks = append(chunks, Chunk{
			Index:    int(index),
			Path:     chunkPath,
			Start:    float64(startFrame) / float64(format.sampleRate),
			Duration: duration,
		})
	}

	logger.Debug("audio split complete",
		"input", inputWAV,
		"chunks", len(chunks),
		"sample_rate", format.sampleRate,
	)
	return chunks, nil
}
