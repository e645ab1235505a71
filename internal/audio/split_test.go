package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeTestWAV(t *testing.T, path string, channels int, sampleRate int, seconds float64) {
	t.Helper()
	blockAlign := channels * 2
	frames := int(math.Round(seconds * float64(sampleRate)))
	format := wavFormat{
		audioFormat:   1,
		channels:      uint16(channels),
		sampleRate:    uint32(sampleRate),
		blockAlign:    uint16(blockAlign),
		bitsPerSample: 16,
	}
	if err := writeWAV(path, format, make([]byte, frames*blockAlign)); err != nil {
		t.Fatalf("writeWAV: %v", err)
	}
}

func TestSplitExactWindows(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.wav")
	writeTestWAV(t, input, 1, 16000, 2.0)

	chunks, err := Split(input, 1, dir, nil)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	wantStarts := []float64{0.0, 1.0}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d: index = %d", i, chunk.Index)
		}
		if chunk.Start != wantStarts[i] {
			t.Errorf("chunk %d: start = %g, want %g", i, chunk.Start, wantStarts[i])
		}
		if math.Abs(chunk.Duration-1.0) > 1e-9 {
			t.Errorf("chunk %d: duration = %g, want 1.0", i, chunk.Duration)
		}
		if _, err := os.Stat(chunk.Path); err != nil {
			t.Errorf("chunk %d: missing file: %v", i, err)
		}
	}
}

func TestSplitDropsShortTail(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.wav")
	// 2.05 s leaves a 0.05 s tail window, below the emission floor.
	writeTestWAV(t, input, 1, 16000, 2.05)

	chunks, err := Split(input, 1, dir, nil)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected short tail to be dropped, got %d chunks", len(chunks))
	}
	if chunks[1].Start != 1.0 {
		t.Errorf("second chunk start = %g, want 1.0", chunks[1].Start)
	}
}

func TestSplitKeepsShortFinalChunkAboveFloor(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.wav")
	writeTestWAV(t, input, 1, 16000, 2.5)

	chunks, err := Split(input, 1, dir, nil)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	last := chunks[2]
	if last.Start != 2.0 {
		t.Errorf("last chunk start = %g, want 2.0", last.Start)
	}
	if math.Abs(last.Duration-0.5) > 1e-9 {
		t.Errorf("last chunk duration = %g, want 0.5", last.Duration)
	}
}

func TestSplitRejectsStereo(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.wav")
	writeTestWAV(t, input, 2, 16000, 1.0)

	_, err := Split(input, 1, dir, nil)
	if !errors.Is(err, ErrNotMono) {
		t.Fatalf("expected ErrNotMono, got %v", err)
	}
}

func TestSplitRejectsNonPositiveChunkLength(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.wav")
	writeTestWAV(t, input, 1, 16000, 1.0)

	for _, length := range []int{0, -5} {
		if _, err := Split(input, length, dir, nil); !errors.Is(err, ErrChunkLength) {
			t.Fatalf("chunk length %d: expected ErrChunkLength, got %v", length, err)
		}
	}
}

func TestSplitChunkFilesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.wav")
	writeTestWAV(t, input, 1, 8000, 1.5)

	chunks, err := Split(input, 1, dir, nil)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	for _, chunk := range chunks {
		f, err := os.Open(chunk.Path)
		if err != nil {
			t.Fatalf("open chunk: %v", err)
		}
		format, err := parseWAV(f)
		f.Close()
		if err != nil {
			t.Fatalf("parse chunk %d: %v", chunk.Index, err)
		}
		if format.channels != 1 {
			t.Errorf("chunk %d: channels = %d", chunk.Index, format.channels)
		}
		if format.sampleRate != 8000 {
			t.Errorf("chunk %d: sample rate = %d", chunk.Index, format.sampleRate)
		}
		gotDuration := float64(format.frames()) / float64(format.sampleRate)
		if math.Abs(gotDuration-chunk.Duration) > 1e-9 {
			t.Errorf("chunk %d: file duration = %g, want %g", chunk.Index, gotDuration, chunk.Duration)
		}
	}
}
