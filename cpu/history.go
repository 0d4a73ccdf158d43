package cpu

import (
	"iter"
	"slices"

	"github.com/ezrec/mic1/internal"
)

// Bus is a symbolic data transfer, such as MEM[100] to AC.
type Bus struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// HistoryEntry records one executed instruction.
type HistoryEntry struct {
	Cycle int    `json:"cycle"`
	Micro string `json:"micro"`
	Bus   Bus    `json:"bus"`
}

// History is a ring of the most recent executed instructions.
// A Limit of 0 keeps every entry.
type History struct {
	Limit   int
	entries []HistoryEntry
	head    int // Index of the oldest entry once the ring is full.
}

// Append an entry, dropping the oldest if the ring is full.
func (h *History) Append(entry HistoryEntry) {
	if h.Limit <= 0 || len(h.entries) < h.Limit {
		h.entries = append(h.entries, entry)
		return
	}

	h.entries[h.head] = entry
	h.head = (h.head + 1) % len(h.entries)
}

// Len is the number of retained entries.
func (h *History) Len() int {
	return len(h.entries)
}

// All iterates the entries, oldest first.
func (h *History) All() iter.Seq[HistoryEntry] {
	return internal.IterRing(h.entries, h.head)
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(h.entries))
	return slices.AppendSeq(entries, h.All())
}

// Truncate keeps only the newest n entries.
func (h *History) Truncate(n int) {
	if n >= len(h.entries) {
		return
	}

	entries := h.Entries()
	h.entries = slices.Clone(entries[len(entries)-max(n, 0):])
	h.head = 0
}

// Reset drops all entries.
func (h *History) Reset() {
	h.entries = h.entries[:0]
	h.head = 0
}
