package shell

import (
	"context"

	"github.com/openshelf/lending-engine-go/recordstore"
)

// QueriesRecords defines the read side of the record store needed by the
// catalog and by query handlers. Implemented by postgresengine.RecordStore.
type QueriesRecords interface {
	Query(ctx context.Context, filter recordstore.Filter) (recordstore.StorableRecords, error)
}

// CommitsRecords defines the write side of the record store needed by command
// handlers: all supplied writes are applied in one transaction, each guarded
// by its expected version.
type CommitsRecords interface {
	Commit(ctx context.Context, write recordstore.RecordWrite, additionalWrites ...recordstore.RecordWrite) error
}

// QueriesAndCommitsRecords combines both sides for components that read
// snapshots and write them back conditionally.
type QueriesAndCommitsRecords interface {
	QueriesRecords
	CommitsRecords
}

// Command represents the contract for all command types in the lending application.
// Each command encapsulates the intent and parameters needed to execute a specific business operation.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CommandHandler defines the contract for components that process commands.
// Handlers orchestrate the complete command workflow: reading the snapshot,
// deciding, and committing the resulting writes with retry on conflicts.
// The generic parameter C ensures type safety between commands and their corresponding handlers.
// Handlers return HandlerResult containing business outcomes (idempotency) and execution metadata (retry info).
type CommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// Query represents the contract for all query types in the lending application.
type Query interface {
	QueryType() string
}

// QueryHandler defines the contract for components that process queries and return projections.
// The generic parameters Q and R ensure type safety between queries and their corresponding results.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
