package cmd

import (
	"fmt"
	"log/slog"

	"github.com/keyghost/keyghost/gadget"
)

// SetupCommand creates the gadget tree and binds it to a controller.
type SetupCommand struct {
	gadget.Config `embed:""`

	NoBind bool `help:"Create the gadget tree without binding it to a controller"`
}

// Run is called by Kong when the setup command is executed.
func (c *SetupCommand) Run(logger *slog.Logger) error {
	g := gadget.New(c.Config, logger)
	if err := g.Create(); err != nil {
		return err
	}
	if c.NoBind {
		return nil
	}
	if err := g.Bind(); err != nil {
		return err
	}
	if dev, err := g.DevicePath(); err == nil {
		fmt.Println(dev)
	} else {
		logger.Warn("gadget bound but device node not found yet", "error", err)
	}
	return nil
}

// TeardownCommand unbinds the gadget and removes its tree.
type TeardownCommand struct {
	gadget.Config `embed:""`
}

// Run is called by Kong when the teardown command is executed.
func (c *TeardownCommand) Run(logger *slog.Logger) error {
	g := gadget.New(c.Config, logger)
	if !g.Exists() {
		logger.Info("gadget does not exist, nothing to do", "name", c.Name)
		return nil
	}
	return g.Remove()
}

// StatusCommand reports gadget state and the resolved device node.
type StatusCommand struct {
	gadget.Config `embed:""`
}

// Run is called by Kong when the status command is executed.
func (c *StatusCommand) Run(logger *slog.Logger) error {
	g := gadget.New(c.Config, logger)
	if !g.Exists() {
		fmt.Println("gadget: not created")
		return nil
	}
	fmt.Println("gadget: created")
	if udc := g.BoundUDC(); udc != "" {
		fmt.Println("bound: " + udc)
	} else {
		fmt.Println("bound: no")
	}
	if dev, err := g.DevicePath(); err == nil {
		fmt.Println("device: " + dev)
	} else {
		fmt.Println("device: not resolved (" + err.Error() + ")")
	}
	return nil
}
