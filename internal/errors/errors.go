// Package errors defines the typed error kinds the core pipeline raises
// (spec.md §7): IoError, IgnoreError, ParseError, IndexCorrupt, SchemaStale,
// WriterBusy, QueryInvalid, ModelMissing, ModelLoadError, and Cancelled.
// Each wraps an underlying error and supports errors.Is/As via Unwrap.
package errors

import (
	"fmt"
)

// Kind is the error kind contract named in spec.md §7.
type Kind string

const (
	KindIO           Kind = "io_error"
	KindIgnore       Kind = "ignore_error"
	KindParse        Kind = "parse_error"
	KindIndexCorrupt Kind = "index_corrupt"
	KindSchemaStale  Kind = "schema_stale"
	KindWriterBusy   Kind = "writer_busy"
	KindQueryInvalid Kind = "query_invalid"
	KindModelMissing Kind = "model_missing"
	KindModelLoad    Kind = "model_load_error"
	KindCancelled    Kind = "cancelled"
)

// Error is the concrete error type returned by the core for every Kind.
type Error struct {
	Kind       Kind
	Path       string // relative path, when the error concerns one file
	Pos        int    // byte/character position, used by QueryInvalid
	Underlying error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindQueryInvalid:
		return fmt.Sprintf("%s at position %d: %v", e.Kind, e.Pos, e.Underlying)
	case e.Path != "":
		return fmt.Sprintf("%s for %s: %v", e.Kind, e.Path, e.Underlying)
	case e.Underlying != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Underlying)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Underlying }

// Is allows errors.Is(err, &Error{Kind: ...})-style checks by matching Kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

func newErr(k Kind, path string, err error) *Error {
	return &Error{Kind: k, Path: path, Underlying: err}
}

func NewIoError(path string, err error) *Error      { return newErr(KindIO, path, err) }
func NewIgnoreError(path string, err error) *Error  { return newErr(KindIgnore, path, err) }
func NewParseError(path string, err error) *Error   { return newErr(KindParse, path, err) }
func NewIndexCorrupt(err error) *Error              { return newErr(KindIndexCorrupt, "", err) }
func NewSchemaStale(err error) *Error               { return newErr(KindSchemaStale, "", err) }
func NewWriterBusy(err error) *Error                { return newErr(KindWriterBusy, "", err) }
func NewModelMissing(modelID string, err error) *Error {
	return newErr(KindModelMissing, modelID, err)
}
func NewModelLoadError(modelID string, err error) *Error {
	return newErr(KindModelLoad, modelID, err)
}
func NewCancelled(err error) *Error { return newErr(KindCancelled, "", err) }

// NewQueryInvalid reports a malformed query with a human-readable position
// (spec.md §4.5 Errors, §7).
func NewQueryInvalid(pos int, err error) *Error {
	return &Error{Kind: KindQueryInvalid, Pos: pos, Underlying: err}
}

// IsKind reports whether err (or something it wraps) is a *Error of kind k.
func IsKind(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == k
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// MultiError aggregates per-file failures collected during update() so the
// run can report a "partial" status instead of failing outright (spec.md §7).
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred, first: %v", len(e.Errors), e.Errors[0])
}

func (e *MultiError) Unwrap() []error { return e.Errors }
