package asset

import (
	"errors"
	"fmt"
)

// ErrorKind classifies decode failures.
type ErrorKind int

const (
	// KindFormat covers malformed containers and documents: bad magic,
	// unsupported version, malformed JSON, missing required fields.
	KindFormat ErrorKind = iota

	// KindBounds covers out-of-range reads and references: accessor ranges
	// exceeding buffers, invalid buffer-view indices, type mismatches.
	KindBounds

	// KindContent covers well-formed documents with unsupported or
	// inconsistent content: missing position attributes, non-triangle
	// topologies, unreachable image sources.
	KindContent

	// KindIO covers file-system failures: missing files, invalid paths.
	KindIO
)

// String returns the human-readable name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindBounds:
		return "bounds"
	case KindContent:
		return "content"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// DecodeError is the failure type surfaced by every stage of the pipeline.
// It carries a Kind for classification and supports errors.Is/As through
// its wrapped cause.
type DecodeError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	msg string
	err error
}

func (e *DecodeError) Error() string {
	if e.err != nil && e.msg != "" {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.msg, e.err)
	}
	if e.err != nil {
		return fmt.Sprintf("%s error: %v", e.Kind, e.err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.msg)
}

func (e *DecodeError) Unwrap() error {
	return e.err
}

// KindOf extracts the ErrorKind from an error chain.
//
// Parameters:
//   - err: the error to inspect
//
// Returns:
//   - ErrorKind: the kind of the innermost DecodeError
//   - bool: true if a DecodeError was found in the chain
func KindOf(err error) (ErrorKind, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// Sentinel causes wrapped by DecodeError constructors. Callers can match
// them with errors.Is through the chain.
var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB container missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errSparseAccessor     = errors.New("sparse accessors not supported")
)

func formatErr(cause error) error {
	return &DecodeError{Kind: KindFormat, err: cause}
}

func formatErrf(format string, args ...any) error {
	return &DecodeError{Kind: KindFormat, msg: fmt.Sprintf(format, args...)}
}

func boundsErrf(format string, args ...any) error {
	return &DecodeError{Kind: KindBounds, msg: fmt.Sprintf(format, args...)}
}

func contentErrf(format string, args ...any) error {
	return &DecodeError{Kind: KindContent, msg: fmt.Sprintf(format, args...)}
}

func ioErr(msg string, cause error) error {
	return &DecodeError{Kind: KindIO, msg: msg, err: cause}
}

func wrapFormat(cause error, format string, args ...any) error {
	return &DecodeError{Kind: KindFormat, msg: fmt.Sprintf(format, args...), err: cause}
}
