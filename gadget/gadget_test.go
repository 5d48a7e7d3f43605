package gadget

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Name:         "keyghost",
		VendorID:     0x16c0,
		ProductID:    0x0488,
		Serial:       "fedcba9876543210",
		Manufacturer: "keyghost",
		Product:      "keyghost HID Keyboard",
		MaxPower:     250,
		ConfigFS:     t.TempDir(),
		UDCDir:       t.TempDir(),
		DevDir:       t.TempDir(),
	}
}

func testGadget(t *testing.T) *Gadget {
	t.Helper()
	return New(testConfig(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func readAttr(t *testing.T, g *Gadget, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(g.root(), rel))
	require.NoError(t, err, rel)
	return string(data)
}

func TestCreate(t *testing.T) {
	g := testGadget(t)
	require.NoError(t, g.Create())

	assert.True(t, g.Exists())
	assert.Equal(t, "0x16c0", readAttr(t, g, "idVendor"))
	assert.Equal(t, "0x0488", readAttr(t, g, "idProduct"))
	assert.Equal(t, "keyghost HID Keyboard", readAttr(t, g, langDir+"/product"))
	assert.Equal(t, "250", readAttr(t, g, configDir+"/MaxPower"))
	assert.Equal(t, "1", readAttr(t, g, "functions/"+functionName+"/protocol"))
	assert.Equal(t, "1", readAttr(t, g, "functions/"+functionName+"/subclass"))
	assert.Equal(t, "8", readAttr(t, g, "functions/"+functionName+"/report_length"))

	desc, err := os.ReadFile(filepath.Join(g.functionDir(), "report_desc"))
	require.NoError(t, err)
	assert.Equal(t, reportDescriptor, desc)

	// Function must be linked into the configuration.
	fi, err := os.Lstat(filepath.Join(g.root(), configDir, functionName))
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode()&os.ModeSymlink)
}

func TestCreateIdempotent(t *testing.T) {
	g := testGadget(t)
	require.NoError(t, g.Create())
	assert.NoError(t, g.Create(), "re-creating an existing gadget must not fail")
}

func TestBindFirstAvailable(t *testing.T) {
	g := testGadget(t)
	require.NoError(t, g.Create())
	require.NoError(t, os.Mkdir(filepath.Join(g.cfg.UDCDir, "fe980000.usb"), 0o755))

	require.NoError(t, g.Bind())
	assert.Equal(t, "fe980000.usb", g.BoundUDC())
}

func TestBindExplicitController(t *testing.T) {
	cfg := testConfig(t)
	cfg.UDC = "dummy_udc.0"
	g := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, g.Create())

	require.NoError(t, g.Bind())
	assert.Equal(t, "dummy_udc.0", g.BoundUDC())
}

func TestBindNoController(t *testing.T) {
	g := testGadget(t)
	require.NoError(t, g.Create())
	assert.Error(t, g.Bind(), "empty controller directory")
}

func TestUnbind(t *testing.T) {
	g := testGadget(t)
	require.NoError(t, g.Create())
	require.NoError(t, os.Mkdir(filepath.Join(g.cfg.UDCDir, "udc0"), 0o755))
	require.NoError(t, g.Bind())

	require.NoError(t, g.Unbind())
	assert.Empty(t, g.BoundUDC())
}

func TestRemove(t *testing.T) {
	g := testGadget(t)
	require.NoError(t, g.Create())
	require.NoError(t, os.Mkdir(filepath.Join(g.cfg.UDCDir, "udc0"), 0o755))
	require.NoError(t, g.Bind())

	require.NoError(t, g.Remove())
	assert.False(t, g.Exists())
}

func TestRemoveNotCreated(t *testing.T) {
	g := testGadget(t)
	assert.NoError(t, g.Remove(), "removing a missing gadget is not an error")
}

func TestBoundUDCNotCreated(t *testing.T) {
	g := testGadget(t)
	assert.Empty(t, g.BoundUDC())
}

func TestDevicePathNoFunction(t *testing.T) {
	g := testGadget(t)
	_, err := g.DevicePath()
	assert.Error(t, err)
}

func TestParseDevNumbers(t *testing.T) {
	major, minor, err := parseDevNumbers("239:0\n")
	require.NoError(t, err)
	assert.Equal(t, uint32(239), major)
	assert.Equal(t, uint32(0), minor)

	_, _, err = parseDevNumbers("garbage")
	assert.Error(t, err)
}
