package renewloan

import (
	"github.com/openshelf/lending-engine-go/lending/core"
)

const (
	commandType = "RenewLoan"
)

// Command represents the intent of a patron to renew the open loan on a copy.
type Command struct {
	PatronID   core.PatronIDString
	CopyNumber core.CopyNumberString
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(patronID core.PatronIDString, copyNumber core.CopyNumberString) Command {
	return Command{
		PatronID:   patronID,
		CopyNumber: copyNumber,
	}
}
