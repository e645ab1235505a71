package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// OpenAIBackend transcribes chunks through the hosted transcription endpoint
// with response_format=verbose_json and word-level timestamps. The endpoint
// has no per-model concurrency restriction, so calls run fully concurrent up
// to the worker pool size.
type OpenAIBackend struct {
	log      *slog.Logger
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewOpenAIBackend returns a backend calling the hosted transcription API.
func NewOpenAIBackend(apiKey string, logger *slog.Logger) *OpenAIBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIBackend{
		log:      logger.With("component", "transcribe.openai"),
		apiKey:   apiKey,
		endpoint: defaultOpenAIEndpoint,
		client:   &http.Client{Timeout: 10 * time.Minute},
	}
}

// verboseJSON is the hosted endpoint's verbose_json document. Word timing
// arrives in a top-level words array, not nested per segment.
type verboseJSON struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

// Transcribe implements Backend.
func (b *OpenAIBackend) Transcribe(ctx context.Context, audioPath, language, model string) (Response, error) {
	if strings.TrimSpace(b.apiKey) == "" {
		return Response{}, fmt.Errorf("transcribe: OPENAI_API_KEY is not set")
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return Response{}, fmt.Errorf("transcribe: open chunk: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"model":           model,
		"response_format": "verbose_json",
		"temperature":     "0",
		"language":        language,
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return Response{}, fmt.Errorf("transcribe: build request: %w", err)
		}
	}
	for _, granularity := range []string{"segment", "word"} {
		if err := mw.WriteField("timestamp_granularities[]", granularity); err != nil {
			return Response{}, fmt.Errorf("transcribe: build request: %w", err)
		}
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return Response{}, fmt.Errorf("transcribe: build request: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return Response{}, fmt.Errorf("transcribe: buffer chunk: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Response{}, fmt.Errorf("transcribe: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, &body)
	if err != nil {
		return Response{}, fmt.Errorf("transcribe: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := b.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("transcribe: transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Response{}, fmt.Errorf("transcribe: transcription API returned HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var raw verboseJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Response{}, fmt.Errorf("transcribe: decode transcription response: %w", err)
	}
	return normalizeVerboseJSON(raw), nil
}

// normalizeVerboseJSON folds the endpoint's top-level word list into the
// segment each word falls inside, producing the shared normalized shape.
// The endpoint exposes no per-word confidence; parsing defaults it to 1.0.
func normalizeVerboseJSON(raw verboseJSON) Response {
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
		resp.Segments = append(resp.Segments, out)
	}

	for _, w := range raw.Words {
		word := strings.TrimSpace(w.Word)
		if word == "" || len(resp.Segments) == 0 {
			continue
		}
		target := len(resp.Segments) - 1
		for i := range resp.Segments {
			if w.Start < resp.Segments[i].End || i == len(resp.Segments)-1 {
				target = i
				break
			}
		}
		resp.Segments[target].Words = append(resp.Segments[target].Words, ResponseWord{
			Word:  word,
			Start: w.Start,
			End:   w.End,
		})
	}
	return resp
}
