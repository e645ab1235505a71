package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// LocalBackend transcribes chunks with a locally resident Whisper model via
// the whisper CLI. The underlying engine is not safe for concurrent
// inference on one loaded model, so calls are serialized per model name
// through the shared Registry.
type LocalBackend struct {
	log      *slog.Logger
	registry *Registry
	binary   string
}

// NewLocalBackend returns a backend running the given whisper executable.
func NewLocalBackend(registry *Registry, binary string, logger *slog.Logger) *LocalBackend {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if strings.TrimSpace(binary) == "" {
		binary = "whisper"
	}
	return &LocalBackend{
		log:      logger.With("component", "transcribe.local"),
		registry: registry,
		binary:   binary,
	}
}

// localResult is the JSON document the whisper CLI writes next to the input.
// Word confidence is exposed as "probability".
type localResult struct {
	Language string `json:"language"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
		Words []struct {
			Word        string   `json:"word"`
			Start       float64  `json:"start"`
			End         float64  `json:"end"`
			Probability *float64 `json:"probability"`
		} `json:"words"`
	} `json:"segments"`
}

// Transcribe implements Backend.
func (b *LocalBackend) Transcribe(ctx context.Context, audioPath, language, model string) (Response, error) {
	handle, err := b.registry.Model(model, func(name string) (*Handle, error) {
		path, err := exec.LookPath(b.binary)
		if err != nil {
			return nil, fmt.Errorf("transcribe: whisper executable %q not found: %w", b.binary, err)
		}
		b.log.Info("local model ready", "model", name, "binary", path)
		return &Handle{Name: name, BinaryPath: path}, nil
	})
	if err != nil {
		return Response{}, err
	}

	lock := b.registry.InferenceLock(handle.Name)
	waitStart := time.Now()
	lock.Lock()
	defer lock.Unlock()
	if waited := time.Since(waitStart); waited > 10*time.Millisecond {
		b.log.Debug("waited for per-model inference lock",
			"model", handle.Name,
			"waited_ms", waited.Milliseconds(),
		)
	}

	outDir, err := os.MkdirTemp("", "dialogsafe_whisper_")
	if err != nil {
		return Response{}, fmt.Errorf("transcribe: create output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		audioPath,
		"--model", handle.Name,
		"--task", "transcribe",
		"--language", language,
		"--word_timestamps", "True",
		"--output_format", "json",
		"--output_dir", outDir,
		"--fp16", "False",
		"--verbose", "False",
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, handle.BinaryPath, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Response{}, fmt.Errorf("transcribe: whisper inference failed: %w: %s",
			err, strings.TrimSpace(stderr.String()))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return Response{}, fmt.Errorf("transcribe: whisper produced no result file: %w", err)
	}

	var raw localResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return Response{}, fmt.Errorf("transcribe: decode whisper result: %w", err)
	}
	return normalizeLocalResult(raw), nil
}

// normalizeLocalResult converts the whisper CLI document into the shared
// verbose_json shape so the rest of the pipeline reuses one parser.
func normalizeLocalResult(raw localResult) Response {
	resp := Response{Language: raw.Language}
	if strings.TrimSpace(resp.Language) == "" {
		resp.Language = LanguageUnknown
	}

	for _, seg := range raw.Segments {
		out := ResponseSegment{
			ID:    seg.ID,
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		}
		if out.End < out.Start {
			out.End = out.Start
		}

		var sum float64
		var counted int
		for _, w := range seg.Words {
			word := strings.TrimSpace(w.Word)
			if word == "" {
				continue
			}
			confidence := 1.0
			if w.Probability != nil {
				confidence = *w.Probability
			}
			sum += confidence
			counted++
			out.Words = append(out.Words, ResponseWord{
				Word:       word,
				Start:      w.Start,
				End:        w.End,
				Confidence: &confidence,
			})
		}
		if counted > 0 {
			avg := sum / float64(counted)
			out.Confidence = &avg
		}
		resp.Segments = append(resp.Segments, out)
	}
	return resp
}
