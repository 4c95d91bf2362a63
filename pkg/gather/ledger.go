package gather

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkgfed/pkgfed/pkg/feed"
)

// Ledger tracks the gather's id bookkeeping: the universe of package ids
// discovered anywhere, and per feed, which of those ids have been
// queried there. Ids are folded to lower case.
//
// Both sets are monotonic. An id is marked as queried immediately before
// its query is dispatched, so a failed or empty query still counts as
// done and is never retried within a run. The fixed-point loop
// terminates precisely because every per-feed entry grows toward the
// finite discovered universe.
//
// All methods are safe for concurrent use.
type Ledger struct {
	mu         sync.RWMutex
	queried    map[string]map[string]struct{} // feed name -> folded id set
	discovered map[string]struct{}            // folded ids known to the gather
}

// NewLedger creates a ledger with an empty entry for every source, so
// the universe/missing computations see all feeds from the start.
func NewLedger(sources []*feed.Source) *Ledger {
	l := &Ledger{
		queried:    make(map[string]map[string]struct{}, len(sources)),
		discovered: make(map[string]struct{}),
	}
	for _, src := range sources {
		l.queried[src.Name] = make(map[string]struct{})
	}
	return l
}

// Discover adds ids to the universe without marking them queried
// anywhere. Dependency ids carried by a record enter the gather this
// way; every feed then owes a query for them.
func (l *Ledger) Discover(ids []string) {
	if len(ids) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		l.discovered[strings.ToLower(id)] = struct{}{}
	}
}

// Mark records id as discovered and queried at src. Returns true if the
// id was not already marked at src.
func (l *Ledger) Mark(src *feed.Source, id string) bool {
	folded := strings.ToLower(id)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.discovered[folded] = struct{}{}
	set := l.entry(src)
	if _, ok := set[folded]; ok {
		return false
	}
	set[folded] = struct{}{}
	return true
}

// MarkAll records every id as discovered and queried at src. This is the
// pre-covering path (see Options.PreCoverDependencies): the feed that
// produced a record is assumed to have nothing further to say about the
// record's dependency ids, while its peers still owe queries for them.
func (l *Ledger) MarkAll(src *feed.Source, ids []string) {
	if len(ids) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	set := l.entry(src)
	for _, id := range ids {
		folded := strings.ToLower(id)
		l.discovered[folded] = struct{}{}
		set[folded] = struct{}{}
	}
}

// Contains reports whether id has been queried at src.
func (l *Ledger) Contains(src *feed.Source, id string) bool {
	folded := strings.ToLower(id)

	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.queried[src.Name][folded]
	return ok
}

// IDs returns the sorted ids queried at src.
func (l *Ledger) IDs(src *feed.Source) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	set := l.queried[src.Name]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Universe returns the sorted set of all discovered ids: everything the
// gather currently knows about.
func (l *Ledger) Universe() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, 0, len(l.discovered))
	for id := range l.discovered {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Missing returns the ids from universe not yet queried at src,
// preserving universe order.
func (l *Ledger) Missing(src *feed.Source, universe []string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	set := l.queried[src.Name]
	var out []string
	for _, id := range universe {
		if _, ok := set[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// entry returns the id set for src, creating it for sources added after
// construction. Callers must hold the write lock.
func (l *Ledger) entry(src *feed.Source) map[string]struct{} {
	set, ok := l.queried[src.Name]
	if !ok {
		set = make(map[string]struct{})
		l.queried[src.Name] = set
	}
	return set
}
