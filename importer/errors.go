package importer

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the importer. Wrap checks with errors.Is.
var (
	// ErrContainer indicates the byte stream is not a well-formed glTF or
	// GLB container (bad magic, truncated chunk, malformed JSON).
	ErrContainer = errors.New("malformed container")

	// ErrSchema indicates the document violates the glTF schema in a way
	// the importer cannot recover from (unsupported version, no scenes,
	// missing required field).
	ErrSchema = errors.New("schema violation")

	// ErrReference indicates an index or byte range points outside the
	// data it references (accessor past its buffer view, node index out
	// of range).
	ErrReference = errors.New("invalid reference")

	// ErrUnsupported indicates a document feature the importer does not
	// implement and cannot skip safely.
	ErrUnsupported = errors.New("unsupported feature")
)

// containerError wraps ErrContainer with a description of what broke while
// framing the byte stream.
func containerError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContainer, fmt.Sprintf(format, args...))
}

// schemaError wraps ErrSchema.
func schemaError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}

// referenceError wraps ErrReference. Messages name the offending element and
// its index so a broken asset can be traced back to its source.
func referenceError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrReference, fmt.Sprintf(format, args...))
}

// unsupportedError wraps ErrUnsupported.
func unsupportedError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}
