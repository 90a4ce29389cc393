// Package borrowcopy implements the Borrow Copy use case.
//
// This feature lends an available copy to a verified patron. It follows the
// Read-Decide-Commit pattern with proper separation between infrastructure
// concerns (CommandHandler) and pure business logic (Decide function).
//
// The business logic enforces the borrowing preconditions in a fixed priority
// order: the copy must be on the shelf (or reserved for this patron), the
// patron must be verified, below the concurrent loan limit, and below the
// fine threshold. On success the copy, the parent book's counters, the
// patron's ledger and the new open loan are committed in one transaction.
package borrowcopy
