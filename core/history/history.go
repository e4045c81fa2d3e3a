// Package history implements the interpreter's bounded command history.
package history

import "fmt"

// DefaultCapacity bounds the history when no explicit capacity is configured.
const DefaultCapacity = 100

// Entry is a stored line tagged with its current 1-based display index.
// Indices are contiguous and shift down as old entries are evicted; they are
// display positions, not stable identifiers.
type Entry struct {
	Index int
	Line  string
}

// NoSuchIndexError is returned by Get for indices outside 1..Len().
type NoSuchIndexError struct {
	Index int
}

func (e *NoSuchIndexError) Error() string {
	return fmt.Sprintf("!%d: no such command in history", e.Index)
}

// Store is a fixed-capacity append-only log of raw input lines with FIFO
// eviction. It is not safe for concurrent use; the interpreter mutates it
// only between prompt cycles.
type Store struct {
	capacity int
	lines    []string
}

// NewStore returns a store bounded to capacity entries. Non-positive
// capacities fall back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity}
}

// Record appends a raw line, evicting the oldest entry first when full.
func (s *Store) Record(line string) {
	if len(s.lines) == s.capacity {
		copy(s.lines, s.lines[1:])
		s.lines = s.lines[:len(s.lines)-1]
	}
	s.lines = append(s.lines, line)
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	return len(s.lines)
}

// Capacity reports the maximum number of entries the store retains.
func (s *Store) Capacity() int {
	return s.capacity
}

// List returns the entries in insertion order with display indices 1..Len().
func (s *Store) List() []Entry {
	entries := make([]Entry, 0, len(s.lines))
	for i, line := range s.lines {
		entries = append(entries, Entry{Index: i + 1, Line: line})
	}
	return entries
}

// Get returns the line at the given 1-based display index.
func (s *Store) Get(index int) (string, error) {
	if index < 1 || index > len(s.lines) {
		return "", &NoSuchIndexError{Index: index}
	}
	return s.lines[index-1], nil
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.lines = nil
}
