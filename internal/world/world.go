// Package world draws the editor scene: the floor, every entity node and
// every connection line.
package world

import (
	"projector/internal/config"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const FloorSize = 60.0

// World is the stage the renderer's nodes stand on.
type World struct {
	Renderer   *Renderer
	GroundY    float32
	FloorModel rl.Model
	loaded     bool
}

func New(renderer *Renderer, cfg config.Physics) *World {
	return &World{Renderer: renderer, GroundY: cfg.GroundY}
}

// Initialize builds the floor. It needs an open window.
func (w *World) Initialize() {
	floorMesh := rl.GenMeshPlane(FloorSize, FloorSize, 1, 1)
	w.FloorModel = rl.LoadModelFromMesh(floorMesh)
	w.loaded = true
}

func (w *World) Draw(camera rl.Camera3D) {
	if w.loaded {
		rl.DrawModel(w.FloorModel, rl.Vector3{Y: w.GroundY}, 1.0, rl.LightGray)
	}
	rl.PushMatrix()
	rl.Translatef(0, w.GroundY+0.001, 0)
	rl.DrawGrid(int32(FloorSize), 1)
	rl.PopMatrix()

	w.Renderer.Draw(camera)
}

func (w *World) Unload() {
	w.Renderer.Unload()
	if w.loaded {
		rl.UnloadModel(w.FloorModel)
		w.loaded = false
	}
}
