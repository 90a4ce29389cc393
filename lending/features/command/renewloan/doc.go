// Package renewloan implements the Renew Loan use case.
//
// This feature extends the due date of an open loan by a full loan period.
// Renewals are refused once the loan is already overdue (the copy must come
// back first) and once the renewal limit is reached. Only the loan record
// changes; book counters and the patron's ledger stay untouched.
package renewloan
