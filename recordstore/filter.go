package recordstore

import (
	"slices"
)

type FilterRecordTypeString = string
type FilterKeyString = string
type FilterValString = string

/***** Filter *****/

type Filter struct {
	recordTypes            []FilterRecordTypeString
	recordKeys             []FilterKeyString
	predicates             []FilterPredicate
	allPredicatesMustMatch bool
}

func (f Filter) RecordTypes() []FilterRecordTypeString {
	return f.recordTypes
}

func (f Filter) RecordKeys() []FilterKeyString {
	return f.recordKeys
}

func (f Filter) Predicates() []FilterPredicate {
	return f.predicates
}

func (f Filter) AllPredicatesMustMatch() bool {
	return f.allPredicatesMustMatch
}

/***** FilterPredicate *****/

type FilterPredicate struct {
	key FilterKeyString
	val FilterValString
}

func P(key FilterKeyString, val FilterValString) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

/***** FilterBuilder *****/

// FilterBuilder builds a generic record filter to be used in DB type-specific
// recordstore implementations to build queries for the specific query
// language, e.g.: Postgres, Mysql, MongoDB, ...
// It is designed to only allow "useful" filter combinations for
// state-based workflows:
//
//   - (recordType)
//   - (recordType AND key)
//   - (recordType AND (key OR key...))
//   - (recordType AND (predicate OR predicate...))
//   - (recordType AND (predicate AND predicate...))
type FilterBuilder interface {
	// Matching starts the filter with one or multiple record types.
	//
	// It sanitizes the input:
	//	- removing empty record types ("")
	//	- sorting the record types
	//	- removing duplicate record types
	Matching(recordType FilterRecordTypeString, recordTypes ...FilterRecordTypeString) FilterItemBuilder
}

type FilterItemBuilder interface {
	// WithKey restricts the filter to one or multiple record keys.
	//
	// It sanitizes the input:
	//	- removing empty keys ("")
	//	- sorting the keys
	//	- removing duplicate keys
	WithKey(key FilterKeyString, keys ...FilterKeyString) CompletedFilterBuilder

	// AndAnyPredicateOf adds payload predicates of which ANY must match.
	//
	// It sanitizes the input:
	//	- removing empty/partial FilterPredicate(s) (key or val is "")
	//	- sorting the FilterPredicate(s)
	//	- removing duplicate FilterPredicate(s)
	AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterBuilder

	// AndAllPredicatesOf adds payload predicates of which ALL must match.
	//
	// It sanitizes the input:
	//	- removing empty/partial FilterPredicate(s) (key or val is "")
	//	- sorting the FilterPredicate(s)
	//	- removing duplicate FilterPredicate(s)
	AndAllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterBuilder

	// Finalize returns the Filter matching the record types alone.
	Finalize() Filter
}

type CompletedFilterBuilder interface {
	// Finalize returns the completed Filter.
	Finalize() Filter
}

// filterBuilder implements all the interfaces of FilterBuilder
type filterBuilder struct {
	filter Filter
}

// BuildRecordFilter creates a FilterBuilder which must eventually be finalized with Finalize().
func BuildRecordFilter() FilterBuilder {
	return filterBuilder{}
}

// Matching starts the filter with one or multiple record types.
func (fb filterBuilder) Matching(
	recordType FilterRecordTypeString,
	recordTypes ...FilterRecordTypeString,
) FilterItemBuilder {

	fb.filter.recordTypes = append(
		fb.filter.recordTypes,
		sanitizeStrings(recordType, recordTypes...)...,
	)

	return fb
}

// WithKey restricts the filter to one or multiple record keys.
func (fb filterBuilder) WithKey(key FilterKeyString, keys ...FilterKeyString) CompletedFilterBuilder {
	fb.filter.recordKeys = append(
		fb.filter.recordKeys,
		sanitizeStrings(key, keys...)...,
	)

	return fb
}

// AndAnyPredicateOf adds payload predicates of which ANY must match.
func (fb filterBuilder) AndAnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterBuilder {

	fb.filter.predicates = append(
		fb.filter.predicates,
		sanitizePredicates(predicate, predicates...)...,
	)

	return fb
}

// AndAllPredicatesOf adds payload predicates of which ALL must match.
func (fb filterBuilder) AndAllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterBuilder {

	fb.filter.allPredicatesMustMatch = true

	fb.filter.predicates = append(
		fb.filter.predicates,
		sanitizePredicates(predicate, predicates...)...,
	)

	return fb
}

// Finalize returns the Filter once it has at least one record type.
func (fb filterBuilder) Finalize() Filter {
	return fb.filter
}

func sanitizeStrings(first string, rest ...string) []string {
	all := append([]string{first}, rest...)
	all = slices.DeleteFunc(
		all,
		func(e string) bool {
			return e == ""
		})
	slices.Sort(all)
	all = slices.Compact(all)
	all = slices.Clip(all)

	return all
}

func sanitizePredicates(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) []FilterPredicate {

	allPredicates := append([]FilterPredicate{predicate}, predicates...)
	allPredicates = slices.DeleteFunc(allPredicates, func(e FilterPredicate) bool { return len(e.key) == 0 || len(e.val) == 0 })
	slices.SortFunc(
		allPredicates,
		func(a, b FilterPredicate) int {
			if a.key > b.key {
				return 1
			}

			if a.key < b.key {
				return -1
			}

			return 0
		})

	allPredicates = slices.Compact(allPredicates)
	allPredicates = slices.Clip(allPredicates)

	return allPredicates
}
