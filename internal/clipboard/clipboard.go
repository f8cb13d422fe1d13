// Package clipboard abstracts the system clipboard behind a small
// interface so the editing core can run headless and be tested without
// touching the OS.
package clipboard

import atotto "github.com/atotto/clipboard"

// Clipboard reads and writes plain text. Both operations are fallible;
// callers treat an error or empty result as a no-op.
type Clipboard interface {
	Text() (string, error)
	SetText(text string) error
}

// System is the OS clipboard.
type System struct{}

// Text returns the clipboard contents.
func (System) Text() (string, error) {
	return atotto.ReadAll()
}

// SetText replaces the clipboard contents.
func (System) SetText(text string) error {
	return atotto.WriteAll(text)
}

// Memory is an in-process clipboard for tests and headless sessions.
type Memory struct {
	text string
}

// Text returns the stored text.
func (m *Memory) Text() (string, error) {
	return m.text, nil
}

// SetText stores text.
func (m *Memory) SetText(text string) error {
	m.text = text
	return nil
}
