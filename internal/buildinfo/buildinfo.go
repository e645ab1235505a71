package buildinfo

// Metadata captures static identifiers for the tool. Centralising the values
// keeps the CLI, logs, and artifacts in agreement.
type Metadata struct {
	Name        string
	BinaryName  string
	Slug        string
	Description string
	Version     string
}

// Info describes the current build.
var Info = Metadata{
	Name:        "DialogSafe",
	BinaryName:  "dialogsafe",
	Slug:        "dialogsafe",
	Description: "Profanity censoring for media files backed by Whisper transcription.",
	Version:     "1.0.0",
}

// Version returns the build version string.
func Version() string { return Info.Version }

// RunMetadata produces the standard metadata payload attached to run
// artifacts.
func RunMetadata(model, language string) map[string]string {
	return map[string]string{
		"generator": Info.Slug,
		"model":     model,
		"language":  language,
	}
}
