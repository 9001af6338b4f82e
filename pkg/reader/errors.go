package reader

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of a decode failure.
type ErrorKind int

const (
	// KindMissingFrame is an out-of-range request without nearest-frame fallback.
	KindMissingFrame ErrorKind = iota
	// KindRead is a container read failure.
	KindRead
	// KindDecode is a decoder failure.
	KindDecode
	// KindSeek is a container seek failure.
	KindSeek
	// KindTimingReference means a seek landing could never be resolved.
	KindTimingReference
	// KindDecodeStall means the decoder stopped emitting pictures.
	KindDecodeStall
	// KindInvalidFile means the file handle was invalid when called.
	KindInvalidFile
)

// Sentinel errors, one per kind, for errors.Is.
var (
	ErrMissingFrame    = errors.New("missing frame")
	ErrRead            = errors.New("read error")
	ErrDecode          = errors.New("decode error")
	ErrSeek            = errors.New("seek error")
	ErrTimingReference = errors.New("failed to find timing reference frame, possible file corruption")
	ErrDecodeStall     = errors.New("detected decoding stall, possible file corruption")
	ErrInvalidFile     = errors.New("invalid file")
)

var kindSentinels = map[ErrorKind]error{
	KindMissingFrame:    ErrMissingFrame,
	KindRead:            ErrRead,
	KindDecode:          ErrDecode,
	KindSeek:            ErrSeek,
	KindTimingReference: ErrTimingReference,
	KindDecodeStall:     ErrDecodeStall,
	KindInvalidFile:     ErrInvalidFile,
}

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingFrame:
		return "Missing frame"
	case KindRead:
		return "Read error"
	case KindDecode:
		return "Decode error"
	case KindSeek:
		return "Seek error"
	case KindTimingReference:
		return "Timing reference error"
	case KindDecodeStall:
		return "Decoding stall"
	case KindInvalidFile:
		return "Invalid file"
	default:
		return "Unknown error"
	}
}

// Error is returned by File.Decode. Frame is the 1-based frame that was
// being decoded; Err is the underlying library error, if any.
type Error struct {
	Kind  ErrorKind
	Frame int
	Err   error
}

func (e *Error) Error() string {
	msg := kindSentinels[e.Kind].Error()
	if e.Err != nil {
		return fmt.Sprintf("frame %d: %s: %v", e.Frame, msg, e.Err)
	}
	return fmt.Sprintf("frame %d: %s", e.Frame, msg)
}

// Unwrap exposes both the kind sentinel and the underlying error.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{kindSentinels[e.Kind], e.Err}
	}
	return []error{kindSentinels[e.Kind]}
}

func newError(kind ErrorKind, frame int, err error) *Error {
	return &Error{Kind: kind, Frame: frame, Err: err}
}

// KindOf returns the kind of a decode error and whether err is one.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
