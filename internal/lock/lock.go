// Package lock serializes writers of the same allocation. Every operation
// that reads an allocation's weeks and then writes holds the allocation's
// key for the whole read-check-write.
package lock

import (
	"context"
	"errors"
	"sort"
)

// ErrNotObtained is returned when a key stays held by someone else until the
// caller gives up.
var ErrNotObtained = errors.New("lock not obtained")

// Locker acquires a set of keys. Keys are taken in sorted order so two
// callers locking overlapping sets cannot deadlock. The returned release
// func frees every key and is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// AllocationKey is the lock key of a phase allocation.
func AllocationKey(phaseAllocationID string) string {
	return "staffplan:allocation:" + phaseAllocationID
}

// ConsultantPhaseKey guards creation of allocations for one consultant in
// one phase.
func ConsultantPhaseKey(consultantID, phaseID string) string {
	return "staffplan:consultant-phase:" + consultantID + ":" + phaseID
}

// normalize sorts keys and drops duplicates and blanks.
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// acquireAll takes keys in order with take, undoing what it got on failure.
func acquireAll(ctx context.Context, keys []string, take func(ctx context.Context, key string) (func(), error)) (func(), error) {
	keys = normalize(keys)
	releases := make([]func(), 0, len(keys))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
		releases = nil
	}
	for _, k := range keys {
		rel, err := take(ctx, k)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, rel)
	}
	return releaseAll, nil
}
