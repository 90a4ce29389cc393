// Package recordstore defines the storage contract for versioned entity
// records: a scalar DTO (StorableRecord), a fluent filter builder for
// querying by record type, key, or payload predicates, and conditional
// writes that detect concurrent mutations via per-record versions.
//
// Database-specific implementations live in subpackages; see
// recordstore/postgresengine for the Postgres implementation.
package recordstore
