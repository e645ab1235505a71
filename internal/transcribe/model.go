package transcribe

import (
	"strings"

	"github.com/zkrige/DialogSafe/internal/config"
)

// localModelSizes are the model names the local Whisper engine accepts.
var localModelSizes = map[string]struct{}{
	"tiny":     {},
	"base":     {},
	"small":    {},
	"medium":   {},
	"large":    {},
	"large-v1": {},
	"large-v2": {},
	"large-v3": {},
}

// openAIDefaultModel is the hosted transcription model that supports
// verbose_json with segment and word timestamps.
const openAIDefaultModel = "whisper-1"

// NormalizeModel translates a user-facing model name into the identifier the
// selected backend understands, so a single configured name works across
// backends: the hosted default maps to a sensible local size, and local size
// names map back to the hosted default.
func NormalizeModel(model string, backend config.BackendKind) string {
	m := strings.TrimSpace(model)
	if m == "" {
		return m
	}

	if backend == config.BackendLocalWhisper {
		if m == openAIDefaultModel {
			return "base"
		}
		return m
	}

	// The hosted endpoint rejects local size names.
	if _, ok := localModelSizes[strings.ToLower(m)]; ok {
		return openAIDefaultModel
	}
	return m
}
