package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMapFromStructType(t *testing.T) {
	out := buildMapFromStruct(reflect.TypeOf(TypeCommand{}))

	// Embedded typist.Config fields are flattened in.
	assert.Equal(t, "/dev/hidg0", out["device"])
	assert.Equal(t, "5ms", out["holdDelay"])
	assert.Equal(t, "5ms", out["interKeyDelay"])
	assert.Equal(t, "fail", out["onUnmappable"])

	// Positional arguments never belong in a config file.
	assert.NotContains(t, out, "text")
}

func TestBuildMapFromStructSetup(t *testing.T) {
	out := buildMapFromStruct(reflect.TypeOf(SetupCommand{}))

	assert.Equal(t, "keyghost", out["name"])
	assert.Equal(t, int64(0x16c0), asInt(t, out["vendorID"]))
	assert.Equal(t, int64(0x0488), asInt(t, out["productID"]))
	assert.Equal(t, false, out["noBind"])
}

func TestConfigInitRun(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "type.json")
	c := &ConfigInit{Command: "type", Format: "json", Output: dest}

	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "/dev/hidg0", got["device"])
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "type.json")
	require.NoError(t, os.WriteFile(dest, []byte("{}"), 0o644))

	c := &ConfigInit{Command: "type", Format: "json", Output: dest}
	assert.Error(t, c.Run())

	c.Force = true
	assert.NoError(t, c.Run())
}

func TestNormalizeFormat(t *testing.T) {
	assert.Equal(t, "yaml", normalizeFormat("yml"))
	assert.Equal(t, "toml", normalizeFormat("TOML"))
	assert.Empty(t, normalizeFormat("xml"))
}

func asInt(t *testing.T, v any) int64 {
	t.Helper()
	switch n := v.(type) {
	case int64:
		return n
	case uint64:
		return int64(n)
	default:
		t.Fatalf("not an integer: %T", v)
		return 0
	}
}
