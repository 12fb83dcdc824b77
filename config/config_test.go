package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "vsfsj.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())
	assert.Equal(t, "vsfs.img", c.Image)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
image = "/tmp/disk.img"
debug = 3
log_format = "json"
`)
	c, err := Load(path)
	require.NoError(t, err)
	want := &Config{Image: "/tmp/disk.img", Debug: 3, LogFormat: "json"}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPartial(t *testing.T) {
	c, err := Load(writeConfig(t, "debug = 1\n"))
	require.NoError(t, err)
	assert.Equal(t, "vsfs.img", c.Image, "missing keys keep defaults")
	assert.Equal(t, uint64(1), c.Debug)
}

func TestLoadErrors(t *testing.T) {
	for _, contents := range []string{
		"image = ",
		"imgae = \"x\"\n",
		"log_format = \"xml\"\n",
		"image = \"\"\n",
	} {
		_, err := Load(writeConfig(t, contents))
		assert.Error(t, err, "config %q", contents)
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
