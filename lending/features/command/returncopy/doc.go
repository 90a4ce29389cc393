// Package returncopy implements the Return Copy use case.
//
// This feature closes the open loan of a patron on a copy, computes the
// tiered overdue fine, books it onto the patron's ledger and puts the copy
// back on the shelf. When the parent book carries a reservation, the returned
// copy is parked for the reserving patron instead of becoming generally
// available.
//
// The handler reports "returned on time" and "returned with fine" as
// distinct outcomes, carrying the fine amount for the caller.
package returncopy
