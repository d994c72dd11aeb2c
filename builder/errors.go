package builder

import (
	"fmt"
)

// Mismatch is one record whose edited description carries a different
// number of top-level effect pairs than the original tables say.
type Mismatch struct {
	Record int
	Want   int
	Got    int
}

// CountMismatchError stops a build whose braced edits would desync the
// effect tables. The build can be forced, the listed records then keep
// questionable in-game highlighting.
type CountMismatchError struct {
	Mismatches []Mismatch
}

func (e *CountMismatchError) Error() string {
	first := e.Mismatches[0]
	return fmt.Sprintf(
		"effect pair count changed in %d records (first: record %d has %d top-level pairs, original has %d)",
		len(e.Mismatches), first.Record, first.Got, first.Want)
}
