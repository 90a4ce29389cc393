// Package adapters provides database driver adapters for the Postgres
// record store engine. Each adapter wraps one way of talking to Postgres
// (pgxpool, database/sql, sqlx) behind the common DBAdapter interface,
// including transaction support for conditional multi-record commits.
package adapters
