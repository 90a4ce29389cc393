// Package config provides database configuration helpers for PostgreSQL
// connections for the lending service.
//
// This package contains factory functions for creating database connections
// using different PostgreSQL drivers (pgx.Pool, sql.DB, sqlx.DB) with
// pre-configured DSNs for single-node and primary/replica setups.
//
// This package is part of the shell (infrastructure) layer, providing
// database connection configuration for the lending system.
package config
