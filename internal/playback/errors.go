package playback

import (
	"errors"

	"github.com/llehouerou/starlight/internal/errmsg"
	"github.com/llehouerou/starlight/internal/player"
)

// ErrorKind classifies failures surfaced to the scripting layer.
type ErrorKind int

const (
	KindResource ErrorKind = iota + 1
	KindInvalidState
	KindDevice
)

// String returns the kind name as sent over the bridge.
func (k ErrorKind) String() string {
	switch k {
	case KindResource:
		return "ResourceError"
	case KindInvalidState:
		return "InvalidStateError"
	case KindDevice:
		return "DeviceError"
	default:
		return "UnknownError"
	}
}

// Error is returned by module commands and mirrored as an ErrorEvent.
type Error struct {
	Kind    ErrorKind
	Op      errmsg.Op
	Subject string // source locator, when there is one
	Err     error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrResource     = &Error{Kind: KindResource}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrDevice       = &Error{Kind: KindDevice}
)

var (
	errNotLoaded = errors.New("no audio loaded")
	errLoading   = errors.New("audio is still loading")
	errClosed    = errors.New("player is closed")
)

func (e *Error) Error() string {
	if e.Op == "" || e.Err == nil {
		return e.Kind.String()
	}
	return errmsg.FormatWith(e.Op, e.Subject, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches kind sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of a module error, or 0 for other errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// classify maps engine failures to error kinds.
func classify(err error) ErrorKind {
	if errors.Is(err, player.ErrDevice) {
		return KindDevice
	}
	return KindResource
}
