package typist

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceUnavailable means the gadget device could not be opened or a
	// report write failed outright (gadget unbound, cable unplugged).
	ErrDeviceUnavailable = errors.New("hid gadget device unavailable")

	// ErrShortWrite means the device accepted fewer than the 8 bytes of a
	// report. The remainder is never retried.
	ErrShortWrite = errors.New("short hid report write")
)

// SendError locates a failure within an input sequence so callers can
// resume from the offending position after re-establishing the device.
type SendError struct {
	Index int    // rune index within the input sequence
	Char  rune   // offending character, 0 for named keys
	Name  string // named key or chord spec, "" for characters
	Err   error
}

func (e *SendError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("send %q: %v", e.Name, e.Err)
	case e.Char != 0:
		return fmt.Sprintf("send %q at index %d: %v", e.Char, e.Index, e.Err)
	default:
		return fmt.Sprintf("send at index %d: %v", e.Index, e.Err)
	}
}

func (e *SendError) Unwrap() error { return e.Err }
