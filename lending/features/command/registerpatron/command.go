package registerpatron

import (
	"github.com/openshelf/lending-engine-go/lending/core"
)

const (
	commandType = "RegisterPatron"
)

// Command represents the intent to register a patron.
type Command struct {
	PatronID core.PatronIDString
	Name     string
	Verified bool
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(patronID core.PatronIDString, name string, verified bool) Command {
	return Command{
		PatronID: patronID,
		Name:     name,
		Verified: verified,
	}
}
