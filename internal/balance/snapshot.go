// Package balance assembles per-user token balance snapshots.
package balance

import (
	"github.com/shopspring/decimal"
)

// Entry is one token row in a snapshot. Contract is only meaningful
// when Native is false. Price is nil when the spot price was
// unavailable.
type Entry struct {
	Symbol   string
	Name     string
	Native   bool
	Contract string
	Balance  decimal.Decimal
	Price    *decimal.Decimal
}

// Snapshot is an insertion-ordered symbol -> Entry mapping computed
// fresh per request and never persisted.
type Snapshot struct {
	order   []string
	entries map[string]Entry
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{entries: make(map[string]Entry)}
}

// Put inserts or replaces an entry. A duplicate symbol overwrites the
// earlier value but keeps the original order slot.
func (s *Snapshot) Put(e Entry) {
	if _, exists := s.entries[e.Symbol]; !exists {
		s.order = append(s.order, e.Symbol)
	}
	s.entries[e.Symbol] = e
}

// Get returns the entry for a symbol.
func (s *Snapshot) Get(symbol string) (Entry, bool) {
	e, ok := s.entries[symbol]
	return e, ok
}

// Entries returns all entries in insertion order.
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, s.entries[sym])
	}
	return out
}

// Positive returns entries with strictly positive balance, in order.
func (s *Snapshot) Positive() []Entry {
	var out []Entry
	for _, sym := range s.order {
		if e := s.entries[sym]; e.Balance.IsPositive() {
			out = append(out, e)
		}
	}
	return out
}

// AllZero reports whether no entry has a positive balance.
func (s *Snapshot) AllZero() bool {
	return len(s.Positive()) == 0
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.order)
}
