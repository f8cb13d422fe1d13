// Package config loads the editor settings from keen.toml: indent width,
// mouse-wheel scroll lines, bracket auto-completion pairs, and per-language
// server command overrides. A missing file yields defaults, not an error.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Settings is the keen.toml schema.
type Settings struct {
	// IndentWidth is the indent unit in spaces.
	IndentWidth int `toml:"indent_width"`

	// ScrollLines is how many lines one mouse-wheel notch scrolls.
	ScrollLines int `toml:"scroll_lines"`

	// BracketPairs lists auto-completion pairs as two-character strings.
	BracketPairs []string `toml:"bracket_pairs"`

	// Servers overrides the language-server command per language id.
	Servers map[string]Server `toml:"servers"`
}

// Server is one language server launch configuration.
type Server struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		IndentWidth:  4,
		ScrollLines:  3,
		BracketPairs: []string{"()", "{}", "[]"},
	}
}

// Load reads path and merges it over the defaults. A missing file is the
// defaults; a file that exists but does not parse is an error.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if s.IndentWidth < 1 {
		s.IndentWidth = Default().IndentWidth
	}
	if s.ScrollLines < 1 {
		s.ScrollLines = Default().ScrollLines
	}
	return s, nil
}

// PairMap converts BracketPairs to an open-to-close byte map. Entries that
// are not exactly two ASCII characters are skipped.
func (s Settings) PairMap() map[byte]byte {
	pairs := make(map[byte]byte, len(s.BracketPairs))
	for _, p := range s.BracketPairs {
		if len(p) == 2 {
			pairs[p[0]] = p[1]
		}
	}
	return pairs
}

// ServerFor returns the configured command for a language id, falling back
// to fallbackCommand when no override exists.
func (s Settings) ServerFor(languageID, fallbackCommand string) Server {
	if srv, ok := s.Servers[languageID]; ok && srv.Command != "" {
		return srv
	}
	return Server{Command: fallbackCommand}
}
