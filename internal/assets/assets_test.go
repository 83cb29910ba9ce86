package assets

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func TestLookupColor(t *testing.T) {
	assert.Equal(t, rl.SkyBlue, LookupColor("SkyBlue"))
	assert.Equal(t, rl.White, LookupColor("Teal"))
}

func TestNextColorCycles(t *testing.T) {
	c := LookupColor(Palette[0])
	seen := map[rl.Color]bool{}
	for range Palette {
		seen[c] = true
		c = NextColor(c)
	}
	assert.Len(t, seen, len(Palette))
	assert.Equal(t, LookupColor(Palette[0]), c, "wraps back to the first swatch")

	assert.Equal(t, LookupColor(Palette[0]), NextColor(rl.Color{R: 1, G: 2, B: 3, A: 255}))
}

func TestCacheLoadsOnce(t *testing.T) {
	var loaded []string
	c := &Cache{
		models: make(map[string]rl.Model),
		load: func(path string) rl.Model {
			loaded = append(loaded, path)
			if path == "missing.obj" {
				return rl.Model{}
			}
			return rl.Model{MeshCount: 1}
		},
	}

	_, ok := c.Model("meshes/../crate.obj")
	assert.True(t, ok)
	_, ok = c.Model("crate.obj")
	assert.True(t, ok)

	_, ok = c.Model("missing.obj")
	assert.False(t, ok)
	_, ok = c.Model("missing.obj")
	assert.False(t, ok)

	_, ok = c.Model("robot.FBX")
	assert.True(t, ok)

	assert.Equal(t, []string{"crate.obj", "missing.obj", "robot.glb"}, loaded)
	assert.Equal(t, 3, c.Len())
}
