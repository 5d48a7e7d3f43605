package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/keyghost/keyghost/internal/log"
	"github.com/keyghost/keyghost/typist"
)

// KeyCommand sends named keys or modifier chords.
type KeyCommand struct {
	typist.Config `embed:""`

	Keys []string `arg:"" help:"Key names or chords, e.g. enter, f5, ctrl+alt+delete"`
}

// Run is called by Kong when the key command is executed.
func (c *KeyCommand) Run(logger *slog.Logger, reports log.ReportLogger) error {
	t, err := typist.New(c.Config, logger, reports)
	if err != nil {
		return err
	}
	defer t.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, k := range c.Keys {
		if err := t.SendChord(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
