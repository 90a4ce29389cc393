// Package testutil provides test doubles for the lending service.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/openshelf/lending-engine-go/recordstore"
)

// InMemoryRecordStore implements the Query/Commit contract of the Postgres
// record store engine against a map, honoring filters and version-guarded
// writes. It also supports injecting concurrency conflicts to exercise the
// retry paths of command handlers.
type InMemoryRecordStore struct {
	mu              sync.Mutex
	records         map[string]recordstore.StorableRecord
	pendingFailures int
	commitCalls     int
}

// NewInMemoryRecordStore creates an empty in-memory record store.
func NewInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{records: make(map[string]recordstore.StorableRecord)}
}

// FailNextCommits makes the next n Commit calls fail with
// recordstore.ErrConcurrencyConflict before touching any state.
func (s *InMemoryRecordStore) FailNextCommits(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingFailures = n
}

// CommitCalls returns how many times Commit was invoked, including injected
// failures.
func (s *InMemoryRecordStore) CommitCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitCalls
}

// Query returns all records matching the filter, ordered by type then key.
func (s *InMemoryRecordStore) Query(_ context.Context, filter recordstore.Filter) (recordstore.StorableRecords, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches recordstore.StorableRecords
	for _, record := range s.records {
		if matchesFilter(record, filter) {
			matches = append(matches, record)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].RecordType != matches[j].RecordType {
			return matches[i].RecordType < matches[j].RecordType
		}
		return matches[i].RecordKey < matches[j].RecordKey
	})

	return matches, nil
}

// Commit applies all writes atomically, each guarded by its expected version.
func (s *InMemoryRecordStore) Commit(
	_ context.Context,
	write recordstore.RecordWrite,
	additionalWrites ...recordstore.RecordWrite,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commitCalls++

	if s.pendingFailures > 0 {
		s.pendingFailures--
		return recordstore.ErrConcurrencyConflict
	}

	writes := append([]recordstore.RecordWrite{write}, additionalWrites...)

	// Validate every write before applying any, so a conflict leaves no
	// partial state.
	for _, w := range writes {
		existing, exists := s.records[storageKey(w.Record)]
		if w.ExpectedVersion == 0 && exists {
			return recordstore.ErrConcurrencyConflict
		}
		if w.ExpectedVersion != 0 && (!exists || existing.Version != w.ExpectedVersion) {
			return recordstore.ErrConcurrencyConflict
		}
	}

	for _, w := range writes {
		record := w.Record
		record.Version = w.ExpectedVersion + 1
		record.UpdatedAt = time.Now().UTC()
		s.records[storageKey(record)] = record
	}

	return nil
}

func storageKey(record recordstore.StorableRecord) string {
	return record.RecordType + "/" + record.RecordKey
}

func matchesFilter(record recordstore.StorableRecord, filter recordstore.Filter) bool {
	if len(filter.RecordTypes()) > 0 && !containsString(filter.RecordTypes(), record.RecordType) {
		return false
	}

	if len(filter.RecordKeys()) > 0 && !containsString(filter.RecordKeys(), record.RecordKey) {
		return false
	}

	if len(filter.Predicates()) == 0 {
		return true
	}

	var payload map[string]any
	if err := jsoniter.ConfigFastest.Unmarshal(record.PayloadJSON, &payload); err != nil {
		return false
	}

	if filter.AllPredicatesMustMatch() {
		for _, p := range filter.Predicates() {
			if !predicateMatches(payload, p) {
				return false
			}
		}
		return true
	}

	for _, p := range filter.Predicates() {
		if predicateMatches(payload, p) {
			return true
		}
	}

	return false
}

// predicateMatches mirrors jsonb containment of {"key": "val"}: only string
// payload fields can match a predicate.
func predicateMatches(payload map[string]any, p recordstore.FilterPredicate) bool {
	value, ok := payload[p.Key()]
	if !ok {
		return false
	}

	str, isString := value.(string)

	return isString && str == p.Val()
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}

	return false
}
