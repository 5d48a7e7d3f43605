// Package typist turns characters and named keys into HID boot-keyboard
// report sequences and writes them to a gadget device node.
//
// Every keystroke is a press report followed by the all-zero release
// report, separated by a configurable hold delay so the host's polling
// interval observes a discrete press. A second delay after release keeps
// consecutive presses of the same key from merging on the host side.
package typist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/keyghost/keyghost/hid/keyboard"
	"github.com/keyghost/keyghost/internal/log"
)

// Policy selects what to do when a character has no key mapping.
type Policy string

const (
	// PolicyFail halts the sequence at the first unmappable character.
	PolicyFail Policy = "fail"
	// PolicySkip skips unmappable characters and reports them all at the end.
	PolicySkip Policy = "skip"
)

// Config represents the typist configuration.
type Config struct {
	Device        string        `help:"HID gadget device node" default:"/dev/hidg0" env:"KEYGHOST_DEVICE"`
	HoldDelay     time.Duration `help:"How long a key stays pressed before release" default:"5ms" env:"KEYGHOST_HOLD_DELAY"`
	InterKeyDelay time.Duration `help:"Pause after release before the next press" default:"5ms" env:"KEYGHOST_INTER_KEY_DELAY"`
	OnUnmappable  Policy        `help:"What to do with unmappable characters" enum:"fail,skip" default:"fail" env:"KEYGHOST_ON_UNMAPPABLE"`
}

// Typist owns a gadget device handle and writes keystroke report
// sequences to it. It is single-threaded: each press/release cycle
// completes, delays included, before the next one starts. Callers that
// want concurrent typing sessions must serialize them through one Typist.
type Typist struct {
	w       io.Writer
	closer  io.Closer
	cfg     Config
	logger  *slog.Logger
	reports log.ReportLogger
}

// New opens the configured device node and returns a Typist owning it.
// The handle stays open across sends until Close.
func New(cfg Config, logger *slog.Logger, reports log.ReportLogger) (*Typist, error) {
	f, err := os.OpenFile(cfg.Device, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDeviceUnavailable, cfg.Device, err)
	}
	t := NewWriter(f, cfg, logger, reports)
	t.closer = f
	return t, nil
}

// NewWriter returns a Typist writing reports to w. Used by tests and by
// callers that manage the device handle themselves.
func NewWriter(w io.Writer, cfg Config, logger *slog.Logger, reports log.ReportLogger) *Typist {
	if logger == nil {
		logger = slog.Default()
	}
	if reports == nil {
		reports = log.NewReportLogger(nil)
	}
	return &Typist{w: w, cfg: cfg, logger: logger, reports: reports}
}

// Close releases the device handle.
func (t *Typist) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}

// SendChar types a single character.
func (t *Typist) SendChar(ctx context.Context, c rune) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.sendChar(0, c)
}

// SendString types s left to right, one keystroke per character, checking
// ctx between keystrokes (never mid-keystroke, so cancellation cannot
// leave a key pressed on the host). Unmappable characters follow the
// configured policy; under PolicySkip the skipped positions are reported
// as a joined error after the rest of the string has been typed.
func (t *Typist) SendString(ctx context.Context, s string) error {
	var skipped []error
	for i, c := range []rune(s) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.sendChar(i, c); err != nil {
			if t.cfg.OnUnmappable == PolicySkip && errors.Is(err, keyboard.ErrUnmappable) {
				t.logger.Warn("skipping unmappable character", "index", i, "char", string(c))
				skipped = append(skipped, err)
				continue
			}
			return err
		}
	}
	return errors.Join(skipped...)
}

// SendKey resolves a named key ("enter", "f5", "pageup") and sends it
// as one keystroke.
func (t *Typist) SendKey(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ev, err := keyboard.ResolveName(name)
	if err != nil {
		return &SendError{Name: name, Err: err}
	}
	if err := t.SendKeyEvent(ev); err != nil {
		return &SendError{Name: name, Err: err}
	}
	return nil
}

// SendChord resolves a named key or chord spec ("enter", "ctrl+alt+t")
// and sends it as one keystroke.
func (t *Typist) SendChord(ctx context.Context, spec string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ev, err := keyboard.ParseChord(spec)
	if err != nil {
		return &SendError{Name: spec, Err: err}
	}
	if err := t.SendKeyEvent(ev); err != nil {
		return &SendError{Name: spec, Err: err}
	}
	return nil
}

// SendKeyEvent performs one full press/release cycle for the event. If
// the press write fails no release is attempted; the device may no
// longer exist and the host will drop the stuck key on disconnect.
func (t *Typist) SendKeyEvent(ev keyboard.KeyEvent) error {
	if err := t.writeReport(ev.Report()); err != nil {
		return err
	}
	time.Sleep(t.cfg.HoldDelay)
	if err := t.writeReport(keyboard.RestReport()); err != nil {
		return err
	}
	time.Sleep(t.cfg.InterKeyDelay)
	return nil
}

func (t *Typist) sendChar(index int, c rune) error {
	ev, err := keyboard.Resolve(c)
	if err != nil {
		return &SendError{Index: index, Char: c, Err: err}
	}
	if err := t.SendKeyEvent(ev); err != nil {
		return &SendError{Index: index, Char: c, Err: err}
	}
	return nil
}

func (t *Typist) writeReport(r keyboard.Report) error {
	n, err := t.w.Write(r[:])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if n != keyboard.ReportSize {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, keyboard.ReportSize)
	}
	t.reports.Log(r[:])
	name := keyboard.KeyName[r[2]]
	if name == "" {
		name = fmt.Sprintf("0x%02x", r[2])
	}
	t.logger.Log(context.Background(), log.LevelTrace, "report written",
		"modifiers", r[0], "key", name)
	return nil
}
