package repl

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// ErrOutOfBounds is returned for a history position with no entry.
var ErrOutOfBounds = errors.New("history index out of range")

// BaseHistory is the file name of the REPL history in the cache directory.
const BaseHistory = "history.utf8"

// HistoryEntry is one submitted line and the mode it was submitted in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// modeTags prefix each line of the history file.
var modeTags = [...]string{modeEval: "E:", modeCtrl: "C:"}

// String returns the entry as stored in the history file.
func (e HistoryEntry) String() string { return modeTags[e.Mode] + e.Line }

// parseEntry decodes one line of the history file. Lines without a mode tag
// are eval entries.
func parseEntry(s string) (HistoryEntry, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return HistoryEntry{}, false
	}

	for mode, tag := range modeTags {
		if rest, ok := strings.CutPrefix(s, tag); ok {
			return HistoryEntry{Line: rest, Mode: inputMode(mode)}, true
		}
	}

	return HistoryEntry{Line: s, Mode: modeEval}, true
}

// History is the list of submitted lines, oldest first, without duplicates.
// With a path, every change is persisted.
type History struct {
	mu      sync.RWMutex
	path    string
	entries []HistoryEntry
}

// NewHistory returns a History stored at path. An empty path keeps history
// in memory only.
func NewHistory(path string) *History { return &History{path: path} }

// Load replaces the entries with the contents of the history file. A missing
// file is an empty history.
func (h *History) Load() error {
	var entries []HistoryEntry

	data, err := h.read()
	for line := range strings.Lines(string(data)) {
		if e, ok := parseEntry(line); ok {
			entries = append(entries, e)
		}
	}

	h.mu.Lock()
	h.entries = entries
	h.mu.Unlock()

	return err
}

func (h *History) read() ([]byte, error) {
	if h.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	return data, err
}

// Add records line in mode. Repeating an earlier entry moves it to the end.
func (h *History) Add(line string, mode inputMode) error {
	e := HistoryEntry{Line: strings.TrimSpace(line), Mode: mode}
	if e.Line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	i := slices.Index(h.entries, e)
	if i >= 0 && i == len(h.entries)-1 {
		return nil
	}

	if i >= 0 {
		h.entries = append(slices.Delete(h.entries, i, i+1), e)

		return h.save()
	}

	h.entries = append(h.entries, e)

	return h.appendEntry(e)
}

// At returns entry i, where 0 is the oldest.
func (h *History) At(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// appendEntry adds e to the end of the file. h.mu must be held.
func (h *History) appendEntry(e HistoryEntry) error {
	if h.path == "" {
		return nil
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(e.String() + "\n"); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// save replaces the file with the current entries through a temporary file
// in the same directory. h.mu must be held.
func (h *History) save() error {
	if h.path == "" {
		return nil
	}

	var b strings.Builder
	for _, e := range h.entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(filepath.Dir(h.path), ".history-*")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()

		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), h.path)
}
