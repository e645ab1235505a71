package censor

import "github.com/zkrige/DialogSafe/internal/media"

// CleanTitle is the fixed marker carried in the title metadata of the
// appended clean audio stream. Its presence on an input means the media was
// already processed.
const CleanTitle = "Clean"

// HasCleanMarker reports whether any audio stream of the probed input
// carries the clean marker. Inputs that do are skipped unless the run is
// forced, preventing marker accumulation across repeated runs.
func HasCleanMarker(probe media.ProbeResult) bool {
	for _, stream := range probe.AudioStreams() {
		if stream.Title() == CleanTitle {
			return true
		}
	}
	return false
}
