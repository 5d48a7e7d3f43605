// Package cmd defines the keyghost command line surface.
package cmd

// CLI is the root kong command structure.
type CLI struct {
	Config string    `help:"Path to a config file (JSON, YAML or TOML)" env:"KEYGHOST_CONFIG"`
	Log    LogConfig `embed:"" prefix:"log."`

	Type      TypeCommand     `cmd:"" help:"Type text on the emulated keyboard"`
	Key       KeyCommand      `cmd:"" help:"Send named keys or modifier chords"`
	Setup     SetupCommand    `cmd:"" help:"Create the USB gadget and bind it to a controller"`
	Teardown  TeardownCommand `cmd:"" help:"Unbind and remove the USB gadget"`
	Status    StatusCommand   `cmd:"" help:"Show gadget state and device node"`
	ConfigCmd ConfigCommand   `cmd:"" name:"config" help:"Configuration file helpers"`
}

// LogConfig groups the logging flags shared by all commands.
type LogConfig struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"KEYGHOST_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of stdout/stderr" env:"KEYGHOST_LOG_FILE"`
	RawFile string `help:"Write a hex dump of every HID report to this file" env:"KEYGHOST_LOG_RAW_FILE"`
}
