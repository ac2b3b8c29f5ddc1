package ledger

import (
	"errors"
)

// ErrInvalidArgument is matched by every *InvalidArgumentError via errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

const msgNegativeOverdueDays = "Overdue days cannot be negative."

// InvalidArgumentError reports a rejected input. Error returns the bare message.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
