package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/shell"
)

const (
	// bookNumberDigits is the width of the zero-padded decimal book number.
	bookNumberDigits = 6

	// maxAllocationAttempts bounds the collision retry loop. Collisions only
	// happen when the sequence has fallen behind the catalog, so hitting the
	// cap indicates data corruption rather than load.
	maxAllocationAttempts = 1000
)

// ErrMalformedBookNumber is returned when a lastKnown value is not a
// zero-padded decimal of the expected width.
var ErrMalformedBookNumber = errors.New("malformed book number")

// Allocator issues unique book numbers from the persisted sequence and
// derives accession codes for copies.
//
// The sequence is only trusted as a starting point: every candidate number is
// checked for presence in the catalog before it is handed out, so a crash
// between number issuance and book persistence cannot permanently block
// allocation. The caller persists the advanced sequence only after the book
// record is durably written.
type Allocator struct {
	store *Store
}

// NewAllocator creates an Allocator over the given store.
func NewAllocator(store *Store) *Allocator {
	return &Allocator{store: store}
}

// NextBookNumber issues the next unique book number.
//
// lastKnown is the sequence value the caller read earlier, or empty when the
// caller has no prior read. When it disagrees with the persisted sequence the
// caller raced another cataloguer and gets shell.ErrStaleSequence instead of
// a silently reused number.
//
// The returned SequenceSnapshot carries the advanced last-issued value; the
// caller commits its write after the book record, never before.
func (a *Allocator) NextBookNumber(ctx context.Context, lastKnown string) (string, SequenceSnapshot, error) {
	sequence, err := a.store.FindSequence(ctx)
	if err != nil && !errors.Is(err, shell.ErrNotFound) {
		return "", SequenceSnapshot{}, err
	}

	if lastKnown != "" {
		lastKnownValue, parseErr := ParseBookNumber(lastKnown)
		if parseErr != nil {
			return "", SequenceSnapshot{}, parseErr
		}

		if lastKnownValue != sequence.LastIssued {
			return "", SequenceSnapshot{}, shell.ErrStaleSequence
		}
	}

	candidate := sequence.LastIssued
	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		candidate++
		bookNumber := FormatBookNumber(candidate)

		_, findErr := a.store.FindBook(ctx, bookNumber)
		if errors.Is(findErr, shell.ErrNotFound) {
			sequence.LastIssued = candidate
			return bookNumber, sequence, nil
		}
		if findErr != nil {
			return "", SequenceSnapshot{}, findErr
		}

		// Number already present in the catalog: the sequence fell behind,
		// skip forward and try the next one.
	}

	return "", SequenceSnapshot{}, shell.ErrExhaustedRetries
}

// FormatBookNumber renders a sequence value as a zero-padded book number.
func FormatBookNumber(value int) core.BookIDString {
	return fmt.Sprintf("%0*d", bookNumberDigits, value)
}

// ParseBookNumber parses a zero-padded book number back to its sequence value.
func ParseBookNumber(bookNumber string) (int, error) {
	if len(bookNumber) != bookNumberDigits {
		return 0, ErrMalformedBookNumber
	}

	value, err := strconv.Atoi(bookNumber)
	if err != nil || value < 0 {
		return 0, ErrMalformedBookNumber
	}

	return value, nil
}

// CopyNumberFor derives the copy number for the given copy index (1-based)
// of a book.
func CopyNumberFor(bookNumber core.BookIDString, copyIndex int) core.CopyNumberString {
	return fmt.Sprintf("%s-%d", bookNumber, copyIndex)
}

// AccessionCode derives the accession code for one copy:
//
//	DDC.AUT.B.VOLUME[:EDITION][;COPY].BOOKNUMBER
//
// AUT is the first three letters of the author uppercased, B the first letter
// of the title uppercased. The edition suffix is omitted for first editions
// and the copy suffix for first copies, so common codes stay short. Distinct
// book numbers guarantee distinct codes for distinct (book, copy) pairs.
func AccessionCode(
	ddcClass string,
	author string,
	title string,
	volume int,
	edition int,
	copyIndex int,
	bookNumber core.BookIDString,
) core.AccessionCodeString {
	var sb strings.Builder

	sb.WriteString(ddcClass)
	sb.WriteString(".")
	sb.WriteString(authorCode(author))
	sb.WriteString(".")
	sb.WriteString(titleCode(title))
	sb.WriteString(".")
	sb.WriteString(strconv.Itoa(volume))

	if edition != 1 {
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(edition))
	}

	if copyIndex != 1 {
		sb.WriteString(";")
		sb.WriteString(strconv.Itoa(copyIndex))
	}

	sb.WriteString(".")
	sb.WriteString(bookNumber)

	return sb.String()
}

// authorCode and titleCode slice by runes, not bytes, so accented and CJK
// names keep their letters instead of collapsing to replacement characters.
func authorCode(author string) string {
	runes := []rune(author)
	if len(runes) > 3 {
		runes = runes[:3]
	}

	return strings.ToUpper(string(runes))
}

func titleCode(title string) string {
	for _, r := range title {
		return strings.ToUpper(string(r))
	}

	return ""
}
