// Package patronloans implements the read-side feature listing a patron's
// borrow history together with their ledger counters.
//
// The query tolerates replica lag and runs with eventual consistency, so a
// read replica can serve it when one is configured.
package patronloans
