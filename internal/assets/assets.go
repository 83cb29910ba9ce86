package assets

import (
	"path/filepath"
	"strings"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Palette is the color picker's swatch order.
var Palette = []string{
	"Red", "Orange", "Gold", "Yellow", "Lime", "Green", "DarkGreen", "SkyBlue",
	"Blue", "DarkBlue", "Purple", "Pink", "Maroon", "Brown", "Beige",
	"White", "LightGray", "Gray", "DarkGray", "Black",
}

var colorByName = map[string]rl.Color{
	"Red":       rl.Red,
	"Blue":      rl.Blue,
	"Green":     rl.Green,
	"Purple":    rl.Purple,
	"Orange":    rl.Orange,
	"Yellow":    rl.Yellow,
	"Gold":      rl.Gold,
	"White":     rl.White,
	"Gray":      rl.Gray,
	"LightGray": rl.LightGray,
	"DarkGray":  rl.DarkGray,
	"Black":     rl.Black,
	"Pink":      rl.Pink,
	"Maroon":    rl.Maroon,
	"Brown":     rl.Brown,
	"Beige":     rl.Beige,
	"SkyBlue":   rl.SkyBlue,
	"DarkBlue":  rl.DarkBlue,
	"Lime":      rl.Lime,
	"DarkGreen": rl.DarkGreen,
}

// LookupColor returns a raylib color from a name string
func LookupColor(name string) rl.Color {
	if c, ok := colorByName[name]; ok {
		return c
	}
	return rl.White
}

// NextColor returns the palette entry after c, wrapping around. Colors not
// in the palette start over at the first swatch.
func NextColor(c rl.Color) rl.Color {
	for i, name := range Palette {
		if colorByName[name] == c {
			return colorByName[Palette[(i+1)%len(Palette)]]
		}
	}
	return colorByName[Palette[0]]
}

// Cache shares loaded mesh files between nodes. Models are keyed by
// cleaned path and stay loaded until Unload.
type Cache struct {
	mu     sync.Mutex
	models map[string]rl.Model
	load   func(path string) rl.Model
}

func NewCache() *Cache {
	return &Cache{
		models: make(map[string]rl.Model),
		load:   rl.LoadModel,
	}
}

// Model returns the model for path, loading it on first use. A file raylib
// cannot read yields a model with no meshes and ok false.
func (c *Cache) Model(path string) (model rl.Model, ok bool) {
	key := filepath.Clean(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if model, exists := c.models[key]; exists {
		return model, model.MeshCount > 0
	}

	// raylib has no fbx importer; a sibling gltf export is picked up instead.
	if strings.EqualFold(filepath.Ext(key), ".fbx") {
		key = strings.TrimSuffix(key, filepath.Ext(key)) + ".glb"
	}
	model = c.load(key)
	c.models[filepath.Clean(path)] = model
	return model, model.MeshCount > 0
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.models)
}

func (c *Cache) Unload() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, model := range c.models {
		if model.MeshCount > 0 {
			rl.UnloadModel(model)
		}
	}
	c.models = make(map[string]rl.Model)
}
