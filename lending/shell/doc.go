// Package shell provides the imperative-shell plumbing shared by all feature
// packages: clock injection, the error taxonomy, retry with exponential
// backoff, handler results, and observability wrappers for command and query
// handlers.
//
// The feature packages keep their business logic in pure decide functions;
// everything effectful or cross-cutting lives here.
package shell
