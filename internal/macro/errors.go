package macro

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDevice is the kind of errors raised when a device cannot be opened, read, probed or written
	ErrDevice = errors.New("device error")

	// ErrFormat is the kind of errors raised for containers with a bad magic tag or malformed records
	ErrFormat = errors.New("format error")

	// ErrIO is the kind of errors raised when the underlying storage fails
	ErrIO = errors.New("i/o error")
)

// Stage names the pipeline step that failed
type Stage string

const (
	StageProbe    Stage = "probe"
	StageCapture  Stage = "capture"
	StageEncode   Stage = "encode"
	StageDecode   Stage = "decode"
	StagePlayback Stage = "playback"
)

// Error is a fatal error tagged with its kind and the failing stage.
// Match the kind with errors.Is(err, ErrFormat) and friends.
type Error struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error kind
func (e *Error) Is(target error) bool { return target == e.Kind }

// DeviceError wraps err as a device failure at stage
func DeviceError(stage Stage, err error) error {
	return &Error{Stage: stage, Kind: ErrDevice, Err: err}
}

// FormatError wraps err as a malformed container at stage
func FormatError(stage Stage, err error) error {
	return &Error{Stage: stage, Kind: ErrFormat, Err: err}
}

// IOError wraps err as a storage failure at stage
func IOError(stage Stage, err error) error {
	return &Error{Stage: stage, Kind: ErrIO, Err: err}
}

// ClockAnomaly is the non-fatal warning raised when an event timestamp
// precedes the recording epoch. The event is kept with time zero.
type ClockAnomaly struct {
	Epoch     time.Duration
	Timestamp time.Duration
}

func (w ClockAnomaly) Error() string {
	return fmt.Sprintf("event timestamp %v is %v before recording start", w.Timestamp, w.Epoch-w.Timestamp)
}
