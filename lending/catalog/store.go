package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/shell"
	"github.com/openshelf/lending-engine-go/recordstore"
)

// ErrMalformedCopyNumber is returned when a copy number does not carry the
// parent book number prefix.
var ErrMalformedCopyNumber = errors.New("malformed copy number")

// BookSnapshot is a book together with the record version it was read at.
// Version 0 means the book is not persisted yet.
type BookSnapshot struct {
	Book    core.Book
	Version recordstore.VersionUint
}

// PatronSnapshot is a patron together with the record version it was read at.
type PatronSnapshot struct {
	Patron  core.Patron
	Version recordstore.VersionUint
}

// LoanSnapshot is a borrow record together with the record version it was read at.
type LoanSnapshot struct {
	Loan    core.BorrowRecord
	Version recordstore.VersionUint
}

// SequenceSnapshot is the allocator sequence together with the record version
// it was read at.
type SequenceSnapshot struct {
	LastIssued int
	Version    recordstore.VersionUint
}

// Store maps domain entities to versioned records. All reads return snapshots
// carrying the version, and all writes are built against an expected version
// so the record store can reject stale commits.
type Store struct {
	records shell.QueriesAndCommitsRecords
}

// NewStore creates a Store on top of the given record store.
func NewStore(records shell.QueriesAndCommitsRecords) *Store {
	return &Store{records: records}
}

// FindBook loads the book with the given id, or shell.ErrNotFound.
func (s *Store) FindBook(ctx context.Context, bookID core.BookIDString) (BookSnapshot, error) {
	filter := recordstore.BuildRecordFilter().
		Matching(BookRecordType).
		WithKey(bookID).
		Finalize()

	record, err := s.queryOne(ctx, filter)
	if err != nil {
		return BookSnapshot{}, err
	}

	book, err := unmarshalBookPayload(record.PayloadJSON)
	if err != nil {
		return BookSnapshot{}, err
	}

	return BookSnapshot{Book: book, Version: record.Version}, nil
}

// FindBookByCopy loads the book owning the given copy. Copy numbers carry the
// parent book number as prefix ("000123-2"), so the lookup is a direct key read.
func (s *Store) FindBookByCopy(ctx context.Context, copyNumber core.CopyNumberString) (BookSnapshot, error) {
	bookID, err := BookIDFromCopyNumber(copyNumber)
	if err != nil {
		return BookSnapshot{}, err
	}

	snapshot, err := s.FindBook(ctx, bookID)
	if err != nil {
		return BookSnapshot{}, err
	}

	if _, findErr := snapshot.Book.FindCopy(copyNumber); findErr != nil {
		return BookSnapshot{}, shell.ErrNotFound
	}

	return snapshot, nil
}

// FindPatron loads the patron with the given id, or shell.ErrNotFound.
func (s *Store) FindPatron(ctx context.Context, patronID core.PatronIDString) (PatronSnapshot, error) {
	filter := recordstore.BuildRecordFilter().
		Matching(PatronRecordType).
		WithKey(patronID).
		Finalize()

	record, err := s.queryOne(ctx, filter)
	if err != nil {
		return PatronSnapshot{}, err
	}

	patron, err := unmarshalPatronPayload(record.PayloadJSON)
	if err != nil {
		return PatronSnapshot{}, err
	}

	return PatronSnapshot{Patron: patron, Version: record.Version}, nil
}

// FindLoan loads the borrow record with the given id, or shell.ErrNotFound.
func (s *Store) FindLoan(ctx context.Context, borrowID core.BorrowIDString) (LoanSnapshot, error) {
	filter := recordstore.BuildRecordFilter().
		Matching(LoanRecordType).
		WithKey(borrowID).
		Finalize()

	record, err := s.queryOne(ctx, filter)
	if err != nil {
		return LoanSnapshot{}, err
	}

	loan, err := unmarshalLoanPayload(record.PayloadJSON)
	if err != nil {
		return LoanSnapshot{}, err
	}

	return LoanSnapshot{Loan: loan, Version: record.Version}, nil
}

// FindOpenLoan loads the open borrow record for the given patron and copy,
// or shell.ErrNotFound. Loans are filtered by payload containment on patron
// and copy; the invariant allows at most one open loan per pair.
func (s *Store) FindOpenLoan(
	ctx context.Context,
	patronID core.PatronIDString,
	copyNumber core.CopyNumberString,
) (LoanSnapshot, error) {
	filter := recordstore.BuildRecordFilter().
		Matching(LoanRecordType).
		AndAllPredicatesOf(
			recordstore.P(PayloadFieldPatronID, patronID),
			recordstore.P(PayloadFieldCopyNumber, copyNumber),
		).
		Finalize()

	records, err := s.records.Query(ctx, filter)
	if err != nil {
		return LoanSnapshot{}, err
	}

	for _, record := range records {
		loan, unmarshalErr := unmarshalLoanPayload(record.PayloadJSON)
		if unmarshalErr != nil {
			return LoanSnapshot{}, unmarshalErr
		}

		if !loan.IsReturned {
			return LoanSnapshot{Loan: loan, Version: record.Version}, nil
		}
	}

	return LoanSnapshot{}, shell.ErrNotFound
}

// FindLoansByPatron loads all borrow records of the given patron, open and
// closed, ordered by record key.
func (s *Store) FindLoansByPatron(ctx context.Context, patronID core.PatronIDString) ([]LoanSnapshot, error) {
	filter := recordstore.BuildRecordFilter().
		Matching(LoanRecordType).
		AndAnyPredicateOf(recordstore.P(PayloadFieldPatronID, patronID)).
		Finalize()

	records, err := s.records.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	snapshots := make([]LoanSnapshot, 0, len(records))
	for _, record := range records {
		loan, unmarshalErr := unmarshalLoanPayload(record.PayloadJSON)
		if unmarshalErr != nil {
			return nil, unmarshalErr
		}

		snapshots = append(snapshots, LoanSnapshot{Loan: loan, Version: record.Version})
	}

	return snapshots, nil
}

// FindSequence loads the book number sequence, or shell.ErrNotFound when no
// book has ever been catalogued.
func (s *Store) FindSequence(ctx context.Context) (SequenceSnapshot, error) {
	filter := recordstore.BuildRecordFilter().
		Matching(SequenceRecordType).
		WithKey(BookNumberSequenceKey).
		Finalize()

	record, err := s.queryOne(ctx, filter)
	if err != nil {
		return SequenceSnapshot{}, err
	}

	lastIssued, err := unmarshalSequencePayload(record.PayloadJSON)
	if err != nil {
		return SequenceSnapshot{}, err
	}

	return SequenceSnapshot{LastIssued: lastIssued, Version: record.Version}, nil
}

// BookWrite builds a conditional write for the given book against the
// version the snapshot was read at.
func (s *Store) BookWrite(book core.Book, readAt recordstore.VersionUint) (recordstore.RecordWrite, error) {
	payload, err := marshalBookPayload(book)
	if err != nil {
		return recordstore.RecordWrite{}, err
	}

	return buildWrite(BookRecordType, book.BookID, payload, readAt)
}

// PatronWrite builds a conditional write for the given patron against the
// version the snapshot was read at.
func (s *Store) PatronWrite(patron core.Patron, readAt recordstore.VersionUint) (recordstore.RecordWrite, error) {
	payload, err := marshalPatronPayload(patron)
	if err != nil {
		return recordstore.RecordWrite{}, err
	}

	return buildWrite(PatronRecordType, patron.PatronID, payload, readAt)
}

// LoanWrite builds a conditional write for the given borrow record against
// the version the snapshot was read at.
func (s *Store) LoanWrite(loan core.BorrowRecord, readAt recordstore.VersionUint) (recordstore.RecordWrite, error) {
	payload, err := marshalLoanPayload(loan)
	if err != nil {
		return recordstore.RecordWrite{}, err
	}

	return buildWrite(LoanRecordType, loan.BorrowID, payload, readAt)
}

// SequenceWrite builds a conditional write for the book number sequence
// against the version the snapshot was read at.
func (s *Store) SequenceWrite(lastIssued int, readAt recordstore.VersionUint) (recordstore.RecordWrite, error) {
	payload, err := marshalSequencePayload(lastIssued)
	if err != nil {
		return recordstore.RecordWrite{}, err
	}

	return buildWrite(SequenceRecordType, BookNumberSequenceKey, payload, readAt)
}

// Commit applies all writes in one transaction, each guarded by its expected
// version. A stale version surfaces as recordstore.ErrConcurrencyConflict.
func (s *Store) Commit(ctx context.Context, write recordstore.RecordWrite, additionalWrites ...recordstore.RecordWrite) error {
	return s.records.Commit(ctx, write, additionalWrites...)
}

// BookIDFromCopyNumber extracts the parent book number from a copy number.
func BookIDFromCopyNumber(copyNumber core.CopyNumberString) (core.BookIDString, error) {
	idx := strings.LastIndex(copyNumber, "-")
	if idx <= 0 || idx == len(copyNumber)-1 {
		return "", ErrMalformedCopyNumber
	}

	return copyNumber[:idx], nil
}

func (s *Store) queryOne(ctx context.Context, filter recordstore.Filter) (recordstore.StorableRecord, error) {
	records, err := s.records.Query(ctx, filter)
	if err != nil {
		return recordstore.StorableRecord{}, err
	}

	if len(records) == 0 {
		return recordstore.StorableRecord{}, shell.ErrNotFound
	}

	return records[0], nil
}

func buildWrite(
	recordType string,
	recordKey string,
	payload []byte,
	readAt recordstore.VersionUint,
) (recordstore.RecordWrite, error) {
	record, err := recordstore.BuildStorableRecord(recordType, recordKey, payload, readAt)
	if err != nil {
		return recordstore.RecordWrite{}, err
	}

	if readAt == 0 {
		return recordstore.InsertOf(record), nil
	}

	return recordstore.UpdateOf(record, readAt), nil
}
