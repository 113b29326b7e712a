package pbr

import (
	"github.com/pkg/errors"
)

// Kind classifies a conversion failure.
type Kind int

// Possible error kinds.
const (
	KindUnsupportedFormat = Kind(iota + 1)
	KindImageLoad
	KindMissingRoleSet
	KindImageSave
	KindFilesystem
)

// Sentinels for use with errors.Is.
var (
	ErrUnsupportedFormat = &Error{Kind: KindUnsupportedFormat}
	ErrImageLoad         = &Error{Kind: KindImageLoad}
	ErrMissingRoleSet    = &Error{Kind: KindMissingRoleSet}
	ErrImageSave         = &Error{Kind: KindImageSave}
	ErrFilesystem        = &Error{Kind: KindFilesystem}
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindImageLoad:
		return "image load"
	case KindMissingRoleSet:
		return "missing role set"
	case KindImageSave:
		return "image save"
	case KindFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// Fatal returns whether an error of this kind aborts the whole batch
// regardless of the failure policy.
func (k Kind) Fatal() bool {
	return k == KindMissingRoleSet
}

// Error is returned by every fallible operation in this package.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := "pbr: " + e.Kind.String()
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so the
// package sentinels match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func newErrorf(kind Kind, path string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Path: path, Err: errors.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
