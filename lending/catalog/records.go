package catalog

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/openshelf/lending-engine-go/lending/core"
)

// Record types used in the record store.
const (
	BookRecordType     = "Book"
	PatronRecordType   = "Patron"
	LoanRecordType     = "BorrowRecord"
	SequenceRecordType = "Sequence"

	// BookNumberSequenceKey is the key of the single record holding the
	// last-issued book number.
	BookNumberSequenceKey = "book_number"
)

// Payload field names used in containment predicates. They must match the
// json tags on the payload structs below.
const (
	PayloadFieldPatronID   = "patronId"
	PayloadFieldCopyNumber = "copyNumber"
	PayloadFieldBookID     = "bookId"
)

// ErrMappingPayloadFailed is returned when a record payload cannot be
// serialized or deserialized.
var ErrMappingPayloadFailed = errors.New("mapping record payload failed")

type copyPayload struct {
	CopyNumber    string          `json:"copyNumber"`
	AccessionCode string          `json:"accessionCode"`
	Status        core.CopyStatus `json:"status"`
}

type bookPayload struct {
	BookID          string        `json:"bookId"`
	Title           string        `json:"title"`
	Author          string        `json:"author"`
	DDCCode         string        `json:"ddcCode"`
	Volume          int           `json:"volume"`
	Edition         int           `json:"edition"`
	Copies          []copyPayload `json:"copies"`
	AvailableCopies int           `json:"availableCopies"`
	BorrowedCopies  int           `json:"borrowedCopies"`
	ReservedBy      string        `json:"reservedBy,omitempty"`
}

type patronPayload struct {
	PatronID          string `json:"patronId"`
	Name              string `json:"name"`
	Verified          bool   `json:"verified"`
	ActiveBorrowCount int    `json:"activeBorrowCount"`
	FineTotal         int    `json:"fineTotal"`
}

type loanPayload struct {
	BorrowID   string         `json:"borrowId"`
	PatronID   string         `json:"patronId"`
	BookID     string         `json:"bookId"`
	CopyNumber string         `json:"copyNumber"`
	BorrowDate core.Timestamp `json:"borrowDate"`
	DueDate    core.Timestamp `json:"dueDate"`
	RenewCount int            `json:"renewCount"`
	Fine       int            `json:"fineAmount"`
	IsReturned bool           `json:"isReturned"`
	ReturnDate core.Timestamp `json:"returnDate"`
}

type sequencePayload struct {
	LastIssued int `json:"lastIssued"`
}

func marshalBookPayload(book core.Book) ([]byte, error) {
	payload := bookPayload{
		BookID:          book.BookID,
		Title:           book.Title,
		Author:          book.Author,
		DDCCode:         book.DDCCode,
		Volume:          book.Volume,
		Edition:         book.Edition,
		Copies:          make([]copyPayload, 0, len(book.Copies)),
		AvailableCopies: book.AvailableCopies,
		BorrowedCopies:  book.BorrowedCopies,
		ReservedBy:      book.ReservedBy,
	}

	for _, c := range book.Copies {
		payload.Copies = append(payload.Copies, copyPayload{
			CopyNumber:    c.CopyNumber,
			AccessionCode: c.AccessionCode,
			Status:        c.Status,
		})
	}

	data, err := jsoniter.ConfigFastest.Marshal(payload)
	if err != nil {
		return nil, errors.Join(ErrMappingPayloadFailed, err)
	}

	return data, nil
}

func unmarshalBookPayload(data []byte) (core.Book, error) {
	var payload bookPayload
	if err := jsoniter.ConfigFastest.Unmarshal(data, &payload); err != nil {
		return core.Book{}, errors.Join(ErrMappingPayloadFailed, err)
	}

	book := core.Book{
		BookID:          payload.BookID,
		Title:           payload.Title,
		Author:          payload.Author,
		DDCCode:         payload.DDCCode,
		Volume:          payload.Volume,
		Edition:         payload.Edition,
		Copies:          make([]core.Copy, 0, len(payload.Copies)),
		AvailableCopies: payload.AvailableCopies,
		BorrowedCopies:  payload.BorrowedCopies,
		ReservedBy:      payload.ReservedBy,
	}

	for _, c := range payload.Copies {
		book.Copies = append(book.Copies, core.Copy{
			CopyNumber:    c.CopyNumber,
			AccessionCode: c.AccessionCode,
			Status:        c.Status,
		})
	}

	return book, nil
}

func marshalPatronPayload(patron core.Patron) ([]byte, error) {
	payload := patronPayload{
		PatronID:          patron.PatronID,
		Name:              patron.Name,
		Verified:          patron.Verified,
		ActiveBorrowCount: patron.ActiveBorrowCount,
		FineTotal:         patron.FineTotal,
	}

	data, err := jsoniter.ConfigFastest.Marshal(payload)
	if err != nil {
		return nil, errors.Join(ErrMappingPayloadFailed, err)
	}

	return data, nil
}

func unmarshalPatronPayload(data []byte) (core.Patron, error) {
	var payload patronPayload
	if err := jsoniter.ConfigFastest.Unmarshal(data, &payload); err != nil {
		return core.Patron{}, errors.Join(ErrMappingPayloadFailed, err)
	}

	return core.Patron{
		PatronID:          payload.PatronID,
		Name:              payload.Name,
		Verified:          payload.Verified,
		ActiveBorrowCount: payload.ActiveBorrowCount,
		FineTotal:         payload.FineTotal,
	}, nil
}

func marshalLoanPayload(record core.BorrowRecord) ([]byte, error) {
	payload := loanPayload{
		BorrowID:   record.BorrowID,
		PatronID:   record.PatronID,
		BookID:     record.BookID,
		CopyNumber: record.CopyNumber,
		BorrowDate: record.BorrowDate,
		DueDate:    record.DueDate,
		RenewCount: record.RenewCount,
		Fine:       record.Fine,
		IsReturned: record.IsReturned,
		ReturnDate: record.ReturnDate,
	}

	data, err := jsoniter.ConfigFastest.Marshal(payload)
	if err != nil {
		return nil, errors.Join(ErrMappingPayloadFailed, err)
	}

	return data, nil
}

func unmarshalLoanPayload(data []byte) (core.BorrowRecord, error) {
	var payload loanPayload
	if err := jsoniter.ConfigFastest.Unmarshal(data, &payload); err != nil {
		return core.BorrowRecord{}, errors.Join(ErrMappingPayloadFailed, err)
	}

	return core.BorrowRecord{
		BorrowID:   payload.BorrowID,
		PatronID:   payload.PatronID,
		BookID:     payload.BookID,
		CopyNumber: payload.CopyNumber,
		BorrowDate: payload.BorrowDate,
		DueDate:    payload.DueDate,
		RenewCount: payload.RenewCount,
		Fine:       payload.Fine,
		IsReturned: payload.IsReturned,
		ReturnDate: payload.ReturnDate,
	}, nil
}

func marshalSequencePayload(lastIssued int) ([]byte, error) {
	data, err := jsoniter.ConfigFastest.Marshal(sequencePayload{LastIssued: lastIssued})
	if err != nil {
		return nil, errors.Join(ErrMappingPayloadFailed, err)
	}

	return data, nil
}

func unmarshalSequencePayload(data []byte) (int, error) {
	var payload sequencePayload
	if err := jsoniter.ConfigFastest.Unmarshal(data, &payload); err != nil {
		return 0, errors.Join(ErrMappingPayloadFailed, err)
	}

	return payload.LastIssued, nil
}
