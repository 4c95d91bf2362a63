package gather

import (
	"fmt"
	"sync"
	"testing"

	"github.com/pkgfed/pkgfed/pkg/feed"
	"github.com/pkgfed/pkgfed/pkg/version"
)

func record(id, ver, source string) feed.SourcedInfo {
	return feed.SourcedInfo{
		PackageInfo: feed.PackageInfo{
			Identity: feed.Identity{ID: id, Version: version.MustParse(ver)},
			Listed:   true,
		},
		Source: &feed.Source{Name: source, Kind: feed.KindRemote, URL: "https://" + source},
	}
}

func TestCandidateSetInsert(t *testing.T) {
	s := NewCandidateSet()

	if !s.Insert(record("A", "1.0.0", "x")) {
		t.Error("first insert should report new")
	}
	if s.Insert(record("a", "1.0.0.0", "x")) {
		t.Error("same identity and source should deduplicate")
	}
	if !s.Insert(record("A", "1.0.0", "y")) {
		t.Error("same identity from a different source is a distinct candidate")
	}
	if !s.Insert(record("A", "1.0.1", "x")) {
		t.Error("different version is a distinct candidate")
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestCandidateSetFirstInsertionWinsCasing(t *testing.T) {
	s := NewCandidateSet()
	s.Insert(record("Serilog", "1.0.0", "x"))
	s.Insert(record("SERILOG", "1.0.0", "x"))

	snap := s.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Snapshot len = %d, want 1", len(snap))
	}
	if snap[0].Identity.ID != "Serilog" {
		t.Errorf("retained casing = %q, want first insertion's", snap[0].Identity.ID)
	}
}

func TestCandidateSetKnownIDs(t *testing.T) {
	s := NewCandidateSet()
	s.Insert(record("A", "1.0.0", "x"))
	s.Insert(record("a", "2.0.0", "y"))
	s.Insert(record("B", "1.0.0", "x"))

	ids := s.KnownIDs()
	if len(ids) != 2 {
		t.Fatalf("KnownIDs = %v, want 2 ids", ids)
	}
	for _, want := range []string{"a", "b"} {
		if _, ok := ids[want]; !ok {
			t.Errorf("KnownIDs missing %q", want)
		}
	}
}

func TestCandidateSetConcurrentInsert(t *testing.T) {
	s := NewCandidateSet()

	var wg sync.WaitGroup
	var newCount sync.Map
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted := 0
			for i := range 100 {
				if s.Insert(record(fmt.Sprintf("pkg-%d", i), "1.0.0", "x")) {
					inserted++
				}
			}
			newCount.Store(g, inserted)
		}()
	}
	wg.Wait()

	if s.Len() != 100 {
		t.Errorf("Len = %d, want 100", s.Len())
	}
	total := 0
	newCount.Range(func(_, v any) bool {
		total += v.(int)
		return true
	})
	if total != 100 {
		t.Errorf("total new insertions = %d, want exactly 100", total)
	}
}

func TestCandidateSetSnapshotStable(t *testing.T) {
	s := NewCandidateSet()
	s.Insert(record("zeta", "1.0.0", "x"))
	s.Insert(record("alpha", "1.0.0", "x"))
	s.Insert(record("alpha", "1.0.0", "a"))

	first := s.Snapshot()
	second := s.Snapshot()
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("snapshots = %d/%d records, want 3", len(first), len(second))
	}
	for i := range first {
		if first[i].Key() != second[i].Key() {
			t.Errorf("snapshot order differs at %d: %q vs %q", i, first[i].Key(), second[i].Key())
		}
	}
}
