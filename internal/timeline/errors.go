package timeline

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes timeline failures so callers can branch on
// category rather than message text.
type ErrorKind int

const (
	// KindValidation: malformed save game, empty or oversized message,
	// malformed, reserved or duplicate branch name, missing main branch ref.
	KindValidation ErrorKind = iota + 1
	// KindRepository: missing, uninitialized or corrupt repository, or an
	// adapter/storage failure.
	KindRepository
	// KindCheckpoint: no timeline found for a checkpoint operation, or
	// unreadable checkpoint metadata.
	KindCheckpoint
	// KindBranch: branch not found, branch exists, no source commit.
	KindBranch
	// KindFile: save directory missing or inaccessible.
	KindFile
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRepository:
		return "repository"
	case KindCheckpoint:
		return "checkpoint"
	case KindBranch:
		return "branch"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Error is the root of the timeline error hierarchy.
type Error struct {
	Kind ErrorKind
	Op   string // Operation that failed, e.g. "create_checkpoint"
	Save string // Save game name, empty when not save-scoped
	Err  error
}

func (e *Error) Error() string {
	if e.Save != "" {
		return fmt.Sprintf("timeline %s error in %s for %q: %v", e.Kind, e.Op, e.Save, e.Err)
	}
	return fmt.Sprintf("timeline %s error in %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, op, save string, err error) *Error {
	return &Error{Kind: kind, Op: op, Save: save, Err: err}
}

func errorf(kind ErrorKind, op, save, format string, args ...any) *Error {
	return newError(kind, op, save, fmt.Errorf(format, args...))
}

// KindOf extracts the error kind, or 0 for non-timeline errors.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// Category predicates.

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsRepository(err error) bool { return KindOf(err) == KindRepository }
func IsCheckpoint(err error) bool { return KindOf(err) == KindCheckpoint }
func IsBranch(err error) bool     { return KindOf(err) == KindBranch }
func IsFile(err error) bool       { return KindOf(err) == KindFile }
