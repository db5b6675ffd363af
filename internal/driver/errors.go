package driver

import (
	"errors"
	"fmt"

	"nbmend/internal/change"
)

var (
	// ErrTemplate is returned when the template cannot be loaded; the whole
	// batch stops because there is nothing to reconcile against.
	ErrTemplate = errors.New("template notebook unavailable")
	// ErrLocked is returned when another batch holds the course lock.
	ErrLocked = errors.New("course is locked by another nbmend run")
)

// Op names the step of a submission that failed.
type Op string

const (
	OpRead    Op = "read"
	OpParse   Op = "parse"
	OpApply   Op = "apply"
	OpWrite   Op = "write"
	OpStage   Op = "stage"
	OpExecute Op = "execute"
)

// Code maps the step to its change report code.
func (op Op) Code() change.Code {
	switch op {
	case OpRead, OpParse:
		return change.ReadFailure
	case OpApply:
		return change.ApplyFailure
	case OpWrite:
		return change.WriteFailure
	case OpStage:
		return change.StageFailure
	case OpExecute:
		return change.ExecuteFailure
	default:
		return change.ReadFailure
	}
}

// ItemError is the failure of one submission. It never stops the batch.
type ItemError struct {
	Owner string
	Path  string
	Op    Op
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Path, e.Owner, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

func itemErr(it Item, op Op, err error) *ItemError {
	return &ItemError{Owner: it.Owner, Path: it.Path, Op: op, Err: err}
}
