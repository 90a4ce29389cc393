// Package catalog is the persistence mapping for the lending domain: it
// translates between the domain types in lending/core and the versioned JSON
// records held in the record store, and it hosts the identifier allocator
// that issues book numbers and accession codes for newly catalogued books.
//
// Each domain entity is stored as one record: books under their book number,
// patrons under their patron id, loans under their borrow id, and the
// allocator sequence as a single well-known record. Versions travel with
// every snapshot so that command handlers can commit conditional writes.
package catalog
