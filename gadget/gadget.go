// Package gadget provisions a USB HID keyboard gadget through the Linux
// configfs composite-gadget subsystem: it builds the usb_gadget tree,
// binds it to a USB device controller, and resolves the /dev/hidgX node
// that accepts 8-byte input reports.
package gadget

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Config represents the gadget provisioning configuration. The filesystem
// roots are configurable so tests can run against a scratch directory.
type Config struct {
	Name         string `help:"Gadget name under the configfs usb_gadget directory" default:"keyghost" env:"KEYGHOST_GADGET_NAME"`
	VendorID     uint16 `help:"USB vendor id" default:"0x16c0" env:"KEYGHOST_VENDOR_ID"`
	ProductID    uint16 `help:"USB product id" default:"0x0488" env:"KEYGHOST_PRODUCT_ID"`
	Serial       string `help:"Serial number string descriptor" default:"fedcba9876543210"`
	Manufacturer string `help:"Manufacturer string descriptor" default:"keyghost"`
	Product      string `help:"Product string descriptor" default:"keyghost HID Keyboard"`
	MaxPower     int    `help:"Configuration max power in mA units of 2" default:"250"`
	UDC          string `help:"USB device controller to bind; first available when empty" env:"KEYGHOST_UDC"`
	ConfigFS     string `help:"configfs mount point" default:"/sys/kernel/config"`
	UDCDir       string `help:"Directory listing available USB device controllers" default:"/sys/class/udc"`
	DevDir       string `help:"Directory scanned for the gadget character device" default:"/dev"`
}

// Gadget manages one configfs keyboard gadget.
type Gadget struct {
	cfg    Config
	logger *slog.Logger
}

const (
	langDir      = "strings/0x409"
	configDir    = "configs/c.1"
	functionName = "hid.usb0"
)

// New returns a Gadget for the given configuration.
func New(cfg Config, logger *slog.Logger) *Gadget {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gadget{cfg: cfg, logger: logger}
}

func (g *Gadget) root() string {
	return filepath.Join(g.cfg.ConfigFS, "usb_gadget", g.cfg.Name)
}

func (g *Gadget) functionDir() string {
	return filepath.Join(g.root(), "functions", functionName)
}

func (g *Gadget) writeAttr(rel, value string) error {
	p := filepath.Join(g.root(), rel)
	if err := os.WriteFile(p, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// Create builds the gadget tree: device identifiers, string descriptors,
// one configuration, and a single boot-keyboard HID function linked into
// it. Create does not bind the gadget to a controller.
func (g *Gadget) Create() error {
	for _, dir := range []string{
		filepath.Join(g.root(), langDir),
		filepath.Join(g.root(), configDir, langDir),
		g.functionDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	attrs := []struct{ rel, value string }{
		{"idVendor", fmt.Sprintf("0x%04x", g.cfg.VendorID)},
		{"idProduct", fmt.Sprintf("0x%04x", g.cfg.ProductID)},
		{"bcdDevice", "0x0100"},
		{"bcdUSB", "0x0200"},
		{langDir + "/serialnumber", g.cfg.Serial},
		{langDir + "/manufacturer", g.cfg.Manufacturer},
		{langDir + "/product", g.cfg.Product},
		{configDir + "/" + langDir + "/configuration", "Config 1: " + g.cfg.Product},
		{configDir + "/MaxPower", fmt.Sprintf("%d", g.cfg.MaxPower)},
		{"functions/" + functionName + "/protocol", "1"}, // keyboard
		{"functions/" + functionName + "/subclass", "1"}, // boot interface
		{"functions/" + functionName + "/report_length", "8"},
	}
	for _, a := range attrs {
		if err := g.writeAttr(a.rel, a.value); err != nil {
			return err
		}
	}

	descPath := filepath.Join(g.functionDir(), "report_desc")
	if err := os.WriteFile(descPath, reportDescriptor, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", descPath, err)
	}

	link := filepath.Join(g.root(), configDir, functionName)
	if err := os.Symlink(g.functionDir(), link); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("link function into config: %w", err)
	}

	g.logger.Info("gadget created", "name", g.cfg.Name, "path", g.root())
	return nil
}

// Bind attaches the gadget to a USB device controller, making it visible
// to the host. With no controller configured the first available one is
// used.
func (g *Gadget) Bind() error {
	udc := g.cfg.UDC
	if udc == "" {
		entries, err := os.ReadDir(g.cfg.UDCDir)
		if err != nil {
			return fmt.Errorf("list controllers: %w", err)
		}
		if len(entries) == 0 {
			return fmt.Errorf("no USB device controller found in %s", g.cfg.UDCDir)
		}
		udc = entries[0].Name()
	}
	if err := g.writeAttr("UDC", udc); err != nil {
		return err
	}
	g.logger.Info("gadget bound", "name", g.cfg.Name, "udc", udc)
	return nil
}

// Unbind detaches the gadget from its controller. The gadget tree stays
// in place and can be re-bound.
func (g *Gadget) Unbind() error {
	if err := g.writeAttr("UDC", "\n"); err != nil {
		return err
	}
	g.logger.Info("gadget unbound", "name", g.cfg.Name)
	return nil
}

// BoundUDC returns the controller the gadget is bound to, or "" when
// unbound or not created.
func (g *Gadget) BoundUDC() string {
	data, err := os.ReadFile(filepath.Join(g.root(), "UDC"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Exists reports whether the gadget tree has been created.
func (g *Gadget) Exists() bool {
	_, err := os.Stat(g.root())
	return err == nil
}

// Remove unbinds the gadget and tears down its tree in reverse creation
// order. Removal is best-effort: attribute files inside configfs
// directories disappear with their directory.
func (g *Gadget) Remove() error {
	if g.BoundUDC() != "" {
		if err := g.Unbind(); err != nil {
			return err
		}
	}
	if err := os.Remove(filepath.Join(g.root(), configDir, functionName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		g.logger.Debug("remove function link", "error", err)
	}
	for _, dir := range []string{
		g.functionDir(),
		filepath.Join(g.root(), configDir),
		g.root(),
	} {
		if err := os.RemoveAll(dir); err != nil {
			g.logger.Debug("remove", "path", dir, "error", err)
		}
	}
	g.logger.Info("gadget removed", "name", g.cfg.Name)
	return nil
}

// DevicePath resolves the /dev node of the gadget's HID function by
// matching the function's major:minor numbers against the character
// devices in DevDir.
func (g *Gadget) DevicePath() (string, error) {
	data, err := os.ReadFile(filepath.Join(g.functionDir(), "dev"))
	if err != nil {
		return "", fmt.Errorf("read function dev numbers: %w", err)
	}
	major, minor, err := parseDevNumbers(string(data))
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(g.cfg.DevDir)
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", g.cfg.DevDir, err)
	}
	for _, e := range entries {
		if e.Type()&os.ModeCharDevice == 0 {
			continue
		}
		p := filepath.Join(g.cfg.DevDir, e.Name())
		var st unix.Stat_t
		if err := unix.Stat(p, &st); err != nil {
			continue
		}
		rdev := uint64(st.Rdev)
		if unix.Major(rdev) == major && unix.Minor(rdev) == minor {
			return p, nil
		}
	}
	return "", fmt.Errorf("no character device %d:%d in %s", major, minor, g.cfg.DevDir)
}

func parseDevNumbers(s string) (major, minor uint32, err error) {
	s = strings.TrimSpace(s)
	if _, err := fmt.Sscanf(s, "%d:%d", &major, &minor); err != nil {
		return 0, 0, fmt.Errorf("malformed dev numbers %q: %w", s, err)
	}
	return major, minor, nil
}
