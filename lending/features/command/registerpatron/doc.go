// Package registerpatron implements the business logic for registering a
// patron so they can borrow copies.
//
// Registration is idempotent: registering an already known patron leaves the
// existing record, including its ledger counters, untouched.
package registerpatron
