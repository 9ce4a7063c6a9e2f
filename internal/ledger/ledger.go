// Package ledger keeps the in-memory reservation boards that make
// check-then-insert scheduling atomic. Each board key (a room id, an
// employee id) owns its own mutex, so reservations on different keys never
// contend. Callers load persisted rows with Prime before the first operation
// on a key, mutate the board inside the critical section only, and do their
// persistence outside it, releasing the reservation again if the write
// fails.
package ledger

import (
	"fmt"
	"iter"
	"sort"
	"sync"

	"cine/shared/failure"
)

// Entry is one active reservation on a board.
type Entry struct {
	ID       string
	Interval Interval
}

// ConflictDetails names the reservation that blocked an insert.
type ConflictDetails struct {
	ConflictingID string `json:"conflicting_id"`
}

type board struct {
	mu      sync.Mutex
	entries map[string]Interval
}

// blocking returns the entry overlapping iv, skipping excludeID. When several
// overlap, the one with the earliest start (ties by id) is reported so the
// answer is deterministic. Caller holds b.mu.
func (b *board) blocking(iv Interval, excludeID string) (string, bool) {
	var (
		foundID string
		found   Interval
	)

	for id, existing := range b.entries {
		if id == excludeID || !existing.Overlaps(iv) {
			continue
		}

		if foundID == "" || existing.Start.Before(found.Start) ||
			(existing.Start.Equal(found.Start) && id < foundID) {
			foundID, found = id, existing
		}
	}

	return foundID, foundID != ""
}

// Set is a collection of reservation boards keyed by owner id.
type Set struct {
	mu     sync.Mutex
	boards map[string]*board
}

func NewSet() *Set {
	return &Set{boards: make(map[string]*board)}
}

func (s *Set) board(key string) *board {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[key]
	if !ok {
		b = &board{entries: make(map[string]Interval)}
		s.boards[key] = b
	}

	return b
}

// Primed reports whether the board for key has been installed.
func (s *Set) Primed(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.boards[key]

	return ok
}

// Prime installs a board from persisted entries. The first writer wins: a
// board that already exists is left untouched, so a racing primer never
// clobbers reservations taken since.
func (s *Set) Prime(key string, entries []Entry) {
	b := &board{entries: make(map[string]Interval, len(entries))}
	for _, e := range entries {
		b.entries[e.ID] = e.Interval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boards[key]; !ok {
		s.boards[key] = b
	}
}

// Reserve atomically checks iv against the board for key and inserts it under
// id. On overlap it returns a conflict failure whose details carry the
// blocking reservation's id.
func (s *Set) Reserve(key, id string, iv Interval) error {
	b := s.board(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	if blockingID, ok := b.blocking(iv, id); ok {
		return conflict(blockingID)
	}

	b.entries[id] = iv

	return nil
}

// Release drops the reservation id from the board for key. Releasing an
// absent id is a no-op so compensation paths can call it unconditionally.
// A key with no board stays unprimed.
func (s *Set) Release(key, id string) {
	s.mu.Lock()
	b, ok := s.boards[key]
	s.mu.Unlock()

	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, id)
}

// Update re-reserves id on the same board with a new interval, excluding the
// record itself from the conflict check. On conflict the existing placement
// is untouched.
func (s *Set) Update(key, id string, iv Interval) error {
	b := s.board(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	if blockingID, ok := b.blocking(iv, id); ok {
		return conflict(blockingID)
	}

	b.entries[id] = iv

	return nil
}

// Move transfers id from one board to another as a single logical step. Both
// board locks are taken in ascending key order so concurrent moves between
// the same pair of boards cannot deadlock. On conflict in the destination the
// original placement is untouched.
func (s *Set) Move(fromKey, toKey, id string, iv Interval) error {
	if fromKey == toKey {
		return s.Update(fromKey, id, iv)
	}

	from, to := s.board(fromKey), s.board(toKey)

	first, second := from, to
	if toKey < fromKey {
		first, second = to, from
	}

	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if blockingID, ok := to.blocking(iv, id); ok {
		return conflict(blockingID)
	}

	delete(from.entries, id)
	to.entries[id] = iv

	return nil
}

// Query returns a restartable sequence of the active entries on key that
// overlap r, ascending by start time with ties broken by id.
func (s *Set) Query(key string, r Interval) iter.Seq[Entry] {
	b := s.board(key)

	b.mu.Lock()
	matches := make([]Entry, 0, len(b.entries))
	for id, iv := range b.entries {
		if iv.Overlaps(r) {
			matches = append(matches, Entry{ID: id, Interval: iv})
		}
	}
	b.mu.Unlock()

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].Interval.Start.Equal(matches[j].Interval.Start) {
			return matches[i].Interval.Start.Before(matches[j].Interval.Start)
		}

		return matches[i].ID < matches[j].ID
	})

	return func(yield func(Entry) bool) {
		for _, e := range matches {
			if !yield(e) {
				return
			}
		}
	}
}

func conflict(blockingID string) error {
	return failure.Conflict(
		fmt.Sprintf("interval overlaps reservation %s", blockingID),
		ConflictDetails{ConflictingID: blockingID},
	)
}
