package core

import "errors"

// Errors returned by copy lookups and transitions.
var (
	ErrCopyNotFound       = errors.New("copy not found on book")
	ErrCopyNotBorrowed    = errors.New("copy is not borrowed")
	ErrCopyNotOnShelf     = errors.New("copy is not on the shelf")
	ErrCounterDrift       = errors.New("availability counters do not match copy statuses")
	ErrBookWithoutCopies  = errors.New("book must have at least one copy")
	ErrDuplicateCopy      = errors.New("duplicate copy number on book")
	ErrNegativeAvailCount = errors.New("available copies below zero")
)

// Copy is one physical item of a book. CopyNumber and AccessionCode are
// assigned at cataloguing time and never change afterwards.
type Copy struct {
	CopyNumber    CopyNumberString
	AccessionCode AccessionCodeString
	Status        CopyStatus
}

// Book is a catalogued title together with its physical copies and the
// availability counters derived from their statuses.
//
// Counter invariant: AvailableCopies counts copies with status Available or
// Reserved (on the shelf), BorrowedCopies counts copies with status Borrowed,
// and the two always sum to len(Copies). A reservation parks shelf copies for
// one patron without taking them off the availability count.
type Book struct {
	BookID          BookIDString
	Title           string
	Author          string
	DDCCode         string
	Volume          int
	Edition         int
	Copies          []Copy
	AvailableCopies int
	BorrowedCopies  int
	ReservedBy      PatronIDString
}

// BuildBook creates a catalogued book with all copies on the shelf.
func BuildBook(
	bookID BookIDString,
	title string,
	author string,
	ddcCode string,
	volume int,
	edition int,
	copies []Copy,
) (Book, error) {
	if len(copies) == 0 {
		return Book{}, ErrBookWithoutCopies
	}

	seen := make(map[CopyNumberString]struct{}, len(copies))
	for _, c := range copies {
		if _, dup := seen[c.CopyNumber]; dup {
			return Book{}, ErrDuplicateCopy
		}
		seen[c.CopyNumber] = struct{}{}
	}

	return Book{
		BookID:          bookID,
		Title:           title,
		Author:          author,
		DDCCode:         ddcCode,
		Volume:          volume,
		Edition:         edition,
		Copies:          copies,
		AvailableCopies: len(copies),
		BorrowedCopies:  0,
	}, nil
}

// FindCopy returns the copy with the given number, or ErrCopyNotFound.
func (b Book) FindCopy(copyNumber CopyNumberString) (Copy, error) {
	for _, c := range b.Copies {
		if c.CopyNumber == copyNumber {
			return c, nil
		}
	}

	return Copy{}, ErrCopyNotFound
}

// IsReserved reports whether the book carries an active reservation.
func (b Book) IsReserved() bool {
	return b.ReservedBy != ""
}

// CopyBorrowableBy reports whether the given patron may take the copy off the
// shelf. An available copy is open to everyone; a reserved copy only to the
// patron holding the book's reservation.
func (b Book) CopyBorrowableBy(c Copy, patronID PatronIDString) bool {
	switch c.Status {
	case StatusAvailable:
		return true
	case StatusReserved:
		return b.ReservedBy == patronID
	default:
		return false
	}
}

// WithCopyBorrowed returns a copy of the book with the given copy marked
// Borrowed and the counters adjusted. Borrowing a reserved copy clears the
// book's reservation, since the reserving patron has collected it.
func (b Book) WithCopyBorrowed(copyNumber CopyNumberString) (Book, error) {
	idx, err := b.copyIndex(copyNumber)
	if err != nil {
		return Book{}, err
	}

	if !b.Copies[idx].Status.OnShelf() {
		return Book{}, ErrCopyNotOnShelf
	}

	if b.AvailableCopies < 1 {
		return Book{}, ErrNegativeAvailCount
	}

	next := b.cloneCopies()
	if next[idx].Status == StatusReserved {
		b.ReservedBy = ""
	}
	next[idx].Status = StatusBorrowed

	b.Copies = next
	b.AvailableCopies--
	b.BorrowedCopies++

	return b, nil
}

// WithCopyReturned returns a copy of the book with the given copy back on the
// shelf and the counters adjusted. When the book carries a reservation the
// returned copy is parked for the reserving patron instead of going straight
// back to general availability.
func (b Book) WithCopyReturned(copyNumber CopyNumberString) (Book, error) {
	idx, err := b.copyIndex(copyNumber)
	if err != nil {
		return Book{}, err
	}

	if b.Copies[idx].Status != StatusBorrowed {
		return Book{}, ErrCopyNotBorrowed
	}

	next := b.cloneCopies()
	if b.IsReserved() {
		next[idx].Status = StatusReserved
	} else {
		next[idx].Status = StatusAvailable
	}

	b.Copies = next
	b.AvailableCopies++
	b.BorrowedCopies--

	return b, nil
}

// WithReservation returns a copy of the book reserved for the given patron.
// Callers must check the reservation preconditions first.
func (b Book) WithReservation(patronID PatronIDString) Book {
	b.ReservedBy = patronID

	return b
}

// CheckCounters verifies the counter invariant against the copy statuses.
func (b Book) CheckCounters() error {
	onShelf, borrowed := 0, 0
	for _, c := range b.Copies {
		if c.Status.OnShelf() {
			onShelf++
		} else {
			borrowed++
		}
	}

	if onShelf != b.AvailableCopies || borrowed != b.BorrowedCopies {
		return ErrCounterDrift
	}

	return nil
}

func (b Book) copyIndex(copyNumber CopyNumberString) (int, error) {
	for i, c := range b.Copies {
		if c.CopyNumber == copyNumber {
			return i, nil
		}
	}

	return 0, ErrCopyNotFound
}

// cloneCopies makes a fresh slice so transitions never mutate the snapshot
// they were decided against.
func (b Book) cloneCopies() []Copy {
	next := make([]Copy, len(b.Copies))
	copy(next, b.Copies)

	return next
}
