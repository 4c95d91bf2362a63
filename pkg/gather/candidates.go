package gather

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkgfed/pkgfed/pkg/feed"
)

// CandidateSet accumulates source-tagged package records, deduplicated
// by (id, version, source). The same release offered by several feeds is
// kept once per feed; collapsing across feeds would discard the
// provenance a downstream resolver needs to pick a winning feed.
//
// All methods are safe for concurrent use.
type CandidateSet struct {
	mu      sync.RWMutex
	records map[string]feed.SourcedInfo
}

// NewCandidateSet creates an empty candidate set.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{records: make(map[string]feed.SourcedInfo)}
}

// Insert adds a record, returning true if it was not already present.
// The first insertion wins; a duplicate never replaces the stored record,
// so the canonical casing of an id is whatever arrived first.
func (s *CandidateSet) Insert(rec feed.SourcedInfo) bool {
	key := rec.Key()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[key]; exists {
		return false
	}
	s.records[key] = rec
	return true
}

// Len returns the number of distinct candidates.
func (s *CandidateSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// KnownIDs returns the folded union of package ids across all
// candidates.
func (s *CandidateSet) KnownIDs() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]struct{}, len(s.records))
	for _, rec := range s.records {
		ids[strings.ToLower(rec.Identity.ID)] = struct{}{}
	}
	return ids
}

// Snapshot returns the current contents sorted by candidate key. The
// set itself is unordered; the stable sort only makes snapshots
// reproducible for callers that serialize them.
func (s *CandidateSet) Snapshot() []feed.SourcedInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]feed.SourcedInfo, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key() < out[j].Key()
	})
	return out
}
