package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ExtractMonoPCM pulls the audio of the input container into a mono PCM WAV
// at the given sample rate, the shape the transcription backends expect.
func ExtractMonoPCM(ctx context.Context, binary, input, outputWAV string, sampleRate int, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	args := []string{
		"-y",
		"-i", input,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
		outputWAV,
	}
	if err := RunFFmpeg(ctx, binary, args, logger); err != nil {
		return err
	}

	info, err := os.Stat(outputWAV)
	if err != nil || info.Size() == 0 {
		return &ToolError{
			Tool: "ffmpeg",
			Err:  fmt.Errorf("expected audio file missing or empty: %s", outputWAV),
		}
	}
	return nil
}

// RunFFmpeg executes ffmpeg with the given arguments, surfacing failures as
// ToolError with the captured stderr tail.
func RunFFmpeg(ctx context.Context, binary string, args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	logger.Debug("running ffmpeg", "args", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &ToolError{Tool: "ffmpeg", Err: err, Output: tail(stderr.String(), 2048)}
	}
	return nil
}

// tail keeps the last n bytes of tool output, where the useful error lives.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
