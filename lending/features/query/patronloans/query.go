package patronloans

import (
	"github.com/openshelf/lending-engine-go/lending/core"
)

const (
	queryType = "PatronLoans"
)

// Query represents the intent to list a patron's loans.
type Query struct {
	PatronID core.PatronIDString
}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(patronID core.PatronIDString) Query {
	return Query{
		PatronID: patronID,
	}
}
