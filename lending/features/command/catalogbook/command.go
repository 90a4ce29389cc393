package catalogbook

const (
	commandType = "CatalogBook"
)

// Command represents the intent to add a new book with its copies to the catalog.
//
// LastKnownBookNumber optionally carries the highest book number the caller
// has seen. When set, allocation fails with shell.ErrStaleSequence if the
// persisted sequence disagrees, instead of silently issuing from a state the
// caller did not expect.
type Command struct {
	Title               string
	Author              string
	DDCCode             string
	Volume              int
	Edition             int
	CopyCount           int
	LastKnownBookNumber string
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	title string,
	author string,
	ddcCode string,
	volume int,
	edition int,
	copyCount int,
) Command {
	return Command{
		Title:     title,
		Author:    author,
		DDCCode:   ddcCode,
		Volume:    volume,
		Edition:   edition,
		CopyCount: copyCount,
	}
}

// WithLastKnownBookNumber returns a copy of the command carrying the caller's
// last observed book number for stale-sequence detection.
func (c Command) WithLastKnownBookNumber(bookNumber string) Command {
	c.LastKnownBookNumber = bookNumber

	return c
}
