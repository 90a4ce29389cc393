// Package reservebook implements the Reserve Book use case.
//
// This feature lets a patron reserve a book whose copies are all borrowed.
// A book carries at most one reservation; the next copy returned is parked
// for the reserving patron, who clears the reservation by borrowing it.
// Reserving is refused while a copy is still on the shelf, and while another
// patron holds the reservation.
package reservebook
