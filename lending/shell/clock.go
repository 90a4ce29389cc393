package shell

import (
	"time"

	"github.com/openshelf/lending-engine-go/lending/core"
)

// Clock supplies the current time to command handlers, so that due dates and
// fines are computed against an injectable time source in tests.
type Clock interface {
	Now() core.Timestamp
}

// SystemClock is the production clock backed by the wall clock.
type SystemClock struct{}

// Now returns the current wall clock time as a normalized Timestamp.
func (SystemClock) Now() core.Timestamp {
	return core.ToTimestamp(time.Now())
}

// FixedClock always returns the same instant. Test use only.
type FixedClock struct {
	Instant core.Timestamp
}

// Now returns the fixed instant.
func (c FixedClock) Now() core.Timestamp {
	return c.Instant
}
