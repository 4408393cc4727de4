package tonal

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// Note is a named equal-tempered pitch
type Note struct {
	Name      string  `json:"name"`      // Scientific pitch notation, e.g. "a4", "c#3"
	Frequency float64 `json:"frequency"` // Hz
}

func (n Note) String() string {
	return fmt.Sprintf("%s (%.3f Hz)", n.Name, n.Frequency)
}

// NoteTable maps note names to frequencies and frequencies to the nearest
// note. Tables are immutable once built.
type NoteTable struct {
	notes  []Note
	byName map[string]int
}

var defaultTable = sync.OnceValue(func() *NoteTable {
	table, err := NewNoteTable(noteData)
	if err != nil {
		panic(err)
	}
	return table
})

// DefaultNoteTable returns the shared table covering c0 through b8
func DefaultNoteTable() *NoteTable {
	return defaultTable()
}

// NewNoteTable builds a table from notes. Notes are sorted by frequency;
// names must be unique and frequencies positive.
func NewNoteTable(notes []Note) (*NoteTable, error) {
	if len(notes) == 0 {
		return nil, errors.New("tonal: note table is empty")
	}

	sorted := make([]Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Frequency < sorted[j].Frequency
	})

	byName := make(map[string]int, len(sorted))
	for i, n := range sorted {
		if n.Frequency <= 0 || math.IsNaN(n.Frequency) || math.IsInf(n.Frequency, 0) {
			return nil, fmt.Errorf("tonal: note %q has invalid frequency %v", n.Name, n.Frequency)
		}
		key := strings.ToLower(n.Name)
		if _, dup := byName[key]; dup {
			return nil, fmt.Errorf("tonal: duplicate note name %q", n.Name)
		}
		byName[key] = i
	}

	return &NoteTable{notes: sorted, byName: byName}, nil
}

// Len returns the number of notes in the table
func (t *NoteTable) Len() int {
	return len(t.notes)
}

// Frequency looks up a note by name, ignoring case
func (t *NoteTable) Frequency(name string) (float64, bool) {
	i, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, false
	}
	return t.notes[i].Frequency, true
}

// Nearest returns the note whose frequency is closest to freq by absolute
// difference. Equidistant frequencies resolve to the lower note.
func (t *NoteTable) Nearest(freq float64) Note {
	i := sort.Search(len(t.notes), func(i int) bool {
		return t.notes[i].Frequency >= freq
	})

	switch {
	case i == 0:
		return t.notes[0]
	case i == len(t.notes):
		return t.notes[len(t.notes)-1]
	}

	lower := t.notes[i-1]
	upper := t.notes[i]
	if upper.Frequency-freq < freq-lower.Frequency {
		return upper
	}
	return lower
}

// Quantize snaps freq to the nearest note in the table. Frequencies beyond
// the table snap to its first or last note.
func (t *NoteTable) Quantize(freq float64) (Note, error) {
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return Note{}, fmt.Errorf("%w: %v", ErrInvalidFrequency, freq)
	}
	return t.Nearest(freq), nil
}

// Quantize snaps freq to the nearest note of the default table
func Quantize(freq float64) (Note, error) {
	return DefaultNoteTable().Quantize(freq)
}

// Cents returns the deviation of freq from note in cents
func Cents(freq float64, note Note) float64 {
	if freq <= 0 || note.Frequency <= 0 {
		return 0
	}
	return 1200 * math.Log2(freq/note.Frequency)
}
