package errors

import (
	"github.com/hashicorp/go-multierror"
)

// Batch accumulates errors from a sequence of independent operations (e.g.
// the CLI's multi-file compress/expand mode) that must keep going after one
// item fails so every failure gets reported, not just the first.
type Batch struct {
	merr *multierror.Error
}

// Add records err if non-nil. A nil err is a no-op so callers can append the
// result of every operation unconditionally.
func (b *Batch) Add(err error) {
	if err == nil {
		return
	}
	b.merr = multierror.Append(b.merr, err)
}

// Err returns nil if nothing was added, or the accumulated multierror
// otherwise.
func (b *Batch) Err() error {
	return b.merr.ErrorOrNil()
}

// Len reports how many errors have been recorded.
func (b *Batch) Len() int {
	if b.merr == nil {
		return 0
	}
	return len(b.merr.Errors)
}
