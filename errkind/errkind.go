// Package errkind defines the error taxonomy shared by every layer of lit's
// core: the object store, index, ref store, working-tree sync, and the
// history-manipulation operations built on top of them.
//
// Recoverable conditions (Dirty, Conflict, NonFastForward, Stale) are values
// the caller is expected to inspect with errors.As and decide whether to
// retry or abort. Sentinel errors are matched with errors.Is.
package errkind

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotARepository       = errors.New("not a lit repository")
	ErrAlreadyExists        = errors.New("already exists")
	ErrHashMismatch         = errors.New("object hash does not match its content")
	ErrCyclic               = errors.New("reference chain is cyclic")
	ErrTooDeep              = errors.New("reference chain is too deep")
	ErrUnbornBranch         = errors.New("branch has no commits yet")
	ErrInvalidRefName       = errors.New("invalid reference name")
	ErrBadObject            = errors.New("malformed object")
	ErrUnsupportedTransport = errors.New("unsupported remote transport")
	ErrRebaseInProgress     = errors.New("a rebase is already in progress")
	ErrMergeInProgress      = errors.New("a merge is already in progress")
	ErrCurrentBranch        = errors.New("cannot delete the currently checked out branch")

	// ErrNotFound and ErrCorrupt are the sentinels NotFoundError and
	// CorruptError wrap, so callers that only care about the broad category
	// can use errors.Is(err, errkind.ErrNotFound) without unwrapping to the
	// concrete type.
	ErrNotFound = errors.New("not found")
	ErrCorrupt  = errors.New("corrupt")
)

// NotFoundError reports that a named object, reference, or path was absent.
type NotFoundError struct {
	Kind string // "object", "reference", "path", "remote", ...
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// CorruptError reports that persisted data violated a format invariant.
type CorruptError struct {
	Kind   string // "object", "index", "config", ...
	Detail string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt %s: %s", e.Kind, e.Detail)
}

func (e *CorruptError) Unwrap() error { return ErrCorrupt }

// AmbiguousError reports that a short object-id prefix matched more than one
// stored object.
type AmbiguousError struct {
	Prefix     string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous object prefix %q: matches %s", e.Prefix, strings.Join(e.Candidates, ", "))
}

// DirtyError reports that one or more working-tree paths have uncommitted
// modifications that would be clobbered by the requested operation.
type DirtyError struct {
	Paths []string
}

func (e *DirtyError) Error() string {
	return fmt.Sprintf("local changes would be overwritten: %s", strings.Join(e.Paths, ", "))
}

// ConflictError reports that a merge left one or more paths unresolved.
type ConflictError struct {
	Paths []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict in: %s", strings.Join(e.Paths, ", "))
}

// NonFastForwardError reports that a push or merge target ref could not be
// advanced without creating a merge commit or history rewrite.
type NonFastForwardError struct {
	Ref string
}

func (e *NonFastForwardError) Error() string {
	return fmt.Sprintf("updates were rejected, not a fast-forward: %s", e.Ref)
}

// StaleError reports that a compare-and-set ref update observed a value
// other than the one the caller expected.
type StaleError struct {
	Ref, Expected, Actual string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("stale ref %s: expected %s, found %s", e.Ref, e.Expected, e.Actual)
}

// IOError wraps an underlying filesystem error so call sites can attach
// which lit operation triggered it while still satisfying errors.Is/As
// against the wrapped cause.
type IOError struct {
	Op    string
	Inner error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Inner) }
func (e *IOError) Unwrap() error { return e.Inner }
