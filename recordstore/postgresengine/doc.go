// Package postgresengine implements the recordstore contract on Postgres.
//
// Records live in a single table keyed by (record_type, record_key) with a
// jsonb payload and a version column. Queries are built with goqu and filter
// on record type, key, or jsonb containment predicates. Commits execute all
// writes of one state transition in a single transaction, each guarded by
// the version the writer observed at read time; a guard miss rolls the
// transaction back and reports recordstore.ErrConcurrencyConflict.
//
// Expected table schema:
//
//	CREATE TABLE records (
//	    record_type TEXT        NOT NULL,
//	    record_key  TEXT        NOT NULL,
//	    payload     JSONB       NOT NULL,
//	    version     BIGINT      NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (record_type, record_key)
//	);
//	CREATE INDEX idx_records_payload ON records USING GIN (payload);
package postgresengine
