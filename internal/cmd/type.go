package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/keyghost/keyghost/internal/log"
	"github.com/keyghost/keyghost/typist"
)

// TypeCommand types text through the gadget keyboard.
type TypeCommand struct {
	typist.Config `embed:""`

	Interactive bool     `help:"Forward keystrokes from the terminal until Ctrl-C or Ctrl-D" short:"i"`
	Text        []string `arg:"" optional:"" help:"Text to type; reads stdin when empty"`
}

// Run is called by Kong when the type command is executed.
func (c *TypeCommand) Run(logger *slog.Logger, reports log.ReportLogger) error {
	t, err := typist.New(c.Config, logger, reports)
	if err != nil {
		return err
	}
	defer t.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Interactive {
		return runInteractive(ctx, t, logger)
	}

	text := strings.Join(c.Text, " ")
	if len(c.Text) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	return t.SendString(ctx, text)
}

// runInteractive puts the local terminal into raw mode and forwards each
// keystroke to the gadget as it is typed. Ctrl-C and Ctrl-D end the
// session locally; they are not forwarded.
func runInteractive(ctx context.Context, t *typist.Typist, logger *slog.Logger) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("interactive mode needs a terminal on stdin")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	logger.Info("interactive session started, Ctrl-C to stop")

	buf := make([]byte, 8)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		n, err := os.Stdin.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read terminal: %w", err)
		}
		if err := forwardKeys(ctx, t, buf[:n]); err != nil {
			if errors.Is(err, errEndSession) {
				return nil
			}
			return err
		}
	}
}

var errEndSession = errors.New("end of interactive session")

// forwardKeys translates one raw terminal read into keystrokes. Arrow
// keys arrive as three-byte CSI sequences in a single read.
func forwardKeys(ctx context.Context, t *typist.Typist, in []byte) error {
	if len(in) == 3 && in[0] == 0x1b && in[1] == '[' {
		name := map[byte]string{'A': "up", 'B': "down", 'C': "right", 'D': "left"}[in[2]]
		if name != "" {
			return t.SendChord(ctx, name)
		}
	}
	for _, b := range in {
		switch b {
		case 0x03, 0x04: // Ctrl-C, Ctrl-D
			return errEndSession
		case 0x7f:
			if err := t.SendChord(ctx, "backspace"); err != nil {
				return err
			}
		case 0x1b:
			if err := t.SendChord(ctx, "escape"); err != nil {
				return err
			}
		default:
			if b < 0x20 && b != '\r' && b != '\n' && b != '\t' {
				continue // other control bytes are not forwarded
			}
			if err := t.SendChar(ctx, rune(b)); err != nil {
				if errors.Is(err, typist.ErrDeviceUnavailable) || errors.Is(err, typist.ErrShortWrite) {
					return err
				}
				continue // unmappable, keep the session alive
			}
		}
	}
	return nil
}
