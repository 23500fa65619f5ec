package disc

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"golang.org/x/sys/unix"
)

// Sentinel kinds carried by ClassificationError. Match them with errors.Is.
var (
	ErrInvalidPath  = errors.New("no path specified")
	ErrNotFound     = errors.New("no such file or directory")
	ErrPermission   = errors.New("permission denied")
	ErrNoMedium     = errors.New("no medium present")
	ErrNotReady     = errors.New("drive not ready")
	ErrNotDevice    = errors.New("not a recognized device")
	ErrNotDirectory = errors.New("not a directory")
	ErrIO           = errors.New("i/o error")
)

// ClassificationError reports why a path could not be classified.
type ClassificationError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *ClassificationError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	kind := e.Kind
	if kind == nil {
		kind = ErrIO
	}
	b.WriteString(kind.Error())
	if e.Err != nil && e.Err.Error() != kind.Error() {
		b.WriteString(" (")
		b.WriteString(e.Err.Error())
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *ClassificationError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ErrorKind returns a stable classification string for the failure.
func (e *ClassificationError) ErrorKind() string {
	switch e.Kind {
	case ErrInvalidPath:
		return "invalid_path"
	case ErrNotFound:
		return "not_found"
	case ErrPermission:
		return "permission_denied"
	case ErrNoMedium:
		return "no_medium"
	case ErrNotReady:
		return "not_ready"
	case ErrNotDevice:
		return "not_device"
	case ErrNotDirectory:
		return "not_directory"
	default:
		return "io"
	}
}

func newError(op, path string, kind, cause error) *ClassificationError {
	return &ClassificationError{Op: op, Path: path, Kind: kind, Err: cause}
}

// classifyIOError maps an open/stat/read failure onto a kind sentinel.
func classifyIOError(op, path string, err error) *ClassificationError {
	var existing *ClassificationError
	if errors.As(err, &existing) {
		return existing
	}
	var kind error
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission), errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		kind = ErrPermission
	case errors.Is(err, unix.ENOMEDIUM), errors.Is(err, unix.ENXIO):
		kind = ErrNoMedium
	case errors.Is(err, unix.ENOTDIR):
		kind = ErrNotDirectory
	case errors.Is(err, unix.ENODEV):
		kind = ErrNotDevice
	default:
		kind = ErrIO
	}
	return newError(op, path, kind, unwrapPathError(err))
}

// unwrapPathError drops the *fs.PathError wrapper so the path is not printed twice.
func unwrapPathError(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Err != nil {
		return pathErr.Err
	}
	return err
}

func errorf(op, path string, kind error, format string, args ...any) *ClassificationError {
	return newError(op, path, kind, fmt.Errorf(format, args...))
}
