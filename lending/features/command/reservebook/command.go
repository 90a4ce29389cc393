package reservebook

import (
	"github.com/openshelf/lending-engine-go/lending/core"
)

const (
	commandType = "ReserveBook"
)

// Command represents the intent of a patron to reserve a book.
type Command struct {
	PatronID core.PatronIDString
	BookID   core.BookIDString
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(patronID core.PatronIDString, bookID core.BookIDString) Command {
	return Command{
		PatronID: patronID,
		BookID:   bookID,
	}
}
