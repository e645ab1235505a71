package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTermsEN is the built-in English term list used when no term list
// file is configured.
var DefaultTermsEN = []string{
	"fuck",
	"shit",
	"bitch",
	"asshole",
	"bastard",
	"damn",
	"crap",
}

// LoadTerms resolves the profanity term list for the configuration: the
// configured list file when set, otherwise the built-in list for the audio
// language. Terms are trimmed and lowercased; empty entries are dropped.
func (c *Config) LoadTerms() error {
	if c.ProfanityListPath == "" {
		c.ProfanityTerms = defaultTermsForLanguage(c.AudioLanguage)
		return nil
	}
	terms, err := ReadTermFile(c.ProfanityListPath)
	if err != nil {
		return err
	}
	c.ProfanityTerms = terms
	return nil
}

// ReadTermFile loads a term list from a JSON array, a YAML list, or a plain
// text file with one term per line ('#' lines are comments). The format is
// chosen by file extension, defaulting to plain text.
func ReadTermFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read term list: %w", err)
	}

	var raw []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: term list %s must be a JSON array of strings: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: term list %s must be a YAML list of strings: %w", path, err)
		}
	default:
		raw = parseTermLines(string(data))
	}

	terms := normalizeTerms(raw)
	if len(terms) == 0 {
		return nil, fmt.Errorf("config: term list %s contains no terms", path)
	}
	return terms, nil
}

func parseTermLines(text string) []string {
	var words []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words
}

func normalizeTerms(raw []string) []string {
	terms := make([]string, 0, len(raw))
	for _, word := range raw {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

func defaultTermsForLanguage(lang string) []string {
	// Only an English list ships today; other languages fall back to it
	// until dedicated lists exist.
	_ = lang
	return append([]string(nil), DefaultTermsEN...)
}
