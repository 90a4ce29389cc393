// Package catalogbook implements the business logic for adding a new book
// with its physical copies to the catalog.
//
// Cataloguing allocates the next unique book number, derives copy numbers and
// accession codes for every copy, and persists the book before the allocator
// sequence. Persisting in that order means a crash between the two writes
// leaves a catalogued book and a lagging sequence, which the allocator heals
// by skipping numbers already present in the catalog.
package catalogbook
