// Package keyboard maps characters and named keys to USB HID boot-keyboard
// usage codes and modifier state, and encodes them into 8-byte input reports.
package keyboard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnmappable is returned when an input has no key combination on the
// emulated keyboard (non-ASCII characters, unknown key names).
var ErrUnmappable = errors.New("no key mapping for input")

// Resolve maps a single character to its KeyEvent. Matching is
// case-sensitive: uppercase letters and shifted symbols resolve to the
// unshifted key's usage code with the left-shift bit set. Resolve is a
// pure function over the static tables.
func Resolve(c rune) (KeyEvent, error) {
	if c > 0x7F {
		return KeyEvent{}, fmt.Errorf("%w: %q", ErrUnmappable, c)
	}
	code, ok := CharToKey[byte(c)]
	if !ok {
		return KeyEvent{}, fmt.Errorf("%w: %q", ErrUnmappable, c)
	}
	var mod uint8
	if ShiftChars[byte(c)] {
		mod = ModLeftShift
	}
	return KeyEvent{Modifiers: mod, Key: code}, nil
}

// ResolveName maps a named key ("enter", "f5", "pageup") to its KeyEvent.
// Names are matched case-insensitively.
func ResolveName(name string) (KeyEvent, error) {
	code, ok := NameToKey[normalizeName(name)]
	if !ok {
		return KeyEvent{}, fmt.Errorf("%w: key %q", ErrUnmappable, name)
	}
	return KeyEvent{Key: code}, nil
}

// ParseChord parses a chord spec like "ctrl+alt+delete" or "shift+f1"
// into a single KeyEvent. Every part but the last must be a modifier
// name; the last part may be a modifier, a named key, or a single
// printable character. A chord of only modifiers yields a modifier-only
// event.
func ParseChord(spec string) (KeyEvent, error) {
	parts := strings.Split(spec, "+")
	var ev KeyEvent
	for i, part := range parts {
		name := normalizeName(part)
		if name == "" {
			return KeyEvent{}, fmt.Errorf("%w: empty part in chord %q", ErrUnmappable, spec)
		}
		if mod, ok := NameToMod[name]; ok {
			ev.Modifiers |= mod
			continue
		}
		if i != len(parts)-1 {
			return KeyEvent{}, fmt.Errorf("%w: %q in chord %q is not a modifier", ErrUnmappable, part, spec)
		}
		if code, ok := NameToKey[name]; ok {
			ev.Key = code
			continue
		}
		// Single printable character, e.g. the "c" in "ctrl+c".
		if len([]rune(part)) == 1 {
			ce, err := Resolve([]rune(part)[0])
			if err != nil {
				return KeyEvent{}, err
			}
			ev.Modifiers |= ce.Modifiers
			ev.Key = ce.Key
			continue
		}
		return KeyEvent{}, fmt.Errorf("%w: key %q in chord %q", ErrUnmappable, part, spec)
	}
	return ev, nil
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
