package cli

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

// newUsageErrorWithHints appends the hints attached to err, one per line.
func newUsageErrorWithHints(msg string, err error) error {
	if hints := errors.FlattenHints(err); hints != "" {
		msg += "\nHint: " + strings.ReplaceAll(hints, "\n--\n", "\nHint: ")
	}
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}
