package types

import "strings"

// Header is the column header written at the top of every export file
var Header = []string{"reading", "script", "part_of_speech", "definition", "example", "note"}

// Example is one sentence pair attached to a meaning
type Example struct {
	Source      string `json:"source"`
	Translation string `json:"translation"`
}

// WordEntry represents the data extracted from a single word card
type WordEntry struct {
	Reading       string    `json:"reading"`
	Script        string    `json:"script"`
	PartsOfSpeech []string  `json:"parts_of_speech"`
	Definitions   []string  `json:"definitions"`
	Examples      []Example `json:"examples"`
	Note          string    `json:"note"`
}

// PageBatch holds the entries extracted from one rendered page
type PageBatch struct {
	Page    int
	Entries []WordEntry
}

// POS renders the parts of speech as a single comma-joined field
func (w WordEntry) POS() string {
	return strings.Join(w.PartsOfSpeech, ", ")
}

// Definition renders the non-empty definitions one per line
func (w WordEntry) Definition() string {
	defs := make([]string, 0, len(w.Definitions))
	for _, d := range w.Definitions {
		if d != "" {
			defs = append(defs, d)
		}
	}
	return strings.Join(defs, "\n")
}

// Example renders every pair as "source\ntranslation", blocks separated by a blank line
func (w WordEntry) Example() string {
	blocks := make([]string, 0, len(w.Examples))
	for _, ex := range w.Examples {
		blocks = append(blocks, ex.Source+"\n"+ex.Translation)
	}
	return strings.Join(blocks, "\n\n")
}

// Record returns the entry as a row in Header order
func (w WordEntry) Record() []string {
	return []string{
		w.Reading,
		w.Script,
		w.POS(),
		w.Definition(),
		w.Example(),
		w.Note,
	}
}
