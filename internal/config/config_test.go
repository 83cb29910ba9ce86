package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeepsDefaults(t *testing.T) {
	c, err := Decode(strings.NewReader("physics:\n  gravity: -20\n"))
	require.NoError(t, err)

	assert.Equal(t, float32(-20), c.Physics.Gravity)
	assert.Equal(t, Default().Physics.FixedTimestep, c.Physics.FixedTimestep)
	assert.Equal(t, float32(50), c.Editor.DefaultStiffness)
	assert.Equal(t, float32(20), c.Editor.DualMotorForce)
}

func TestDecodeEmpty(t *testing.T) {
	c, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestDecodeRejectsInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader("physics:\n  fixedTimestep: 0\n"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("editor:\n  defaultStiffness: 150\n"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("window: [1, 2"))
	assert.Error(t, err)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scene:\n  path: saves/a.json\n  assetDir: /abs/models\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "saves/a.json"), c.Scene.Path)
	assert.Equal(t, "/abs/models", c.Scene.AssetDir)
}

func TestExpandHome(t *testing.T) {
	out, err := Expand("~/x.yaml")
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(out, "~"))
}
