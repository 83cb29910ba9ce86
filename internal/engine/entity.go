package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MeshAsset describes an externally supplied mesh backing a KindMesh entity.
type MeshAsset struct {
	Path            string
	Scale           float32
	CenterOfGravity rl.Vector3
	Hash            uint64 // content hash, zero when not yet loaded
}

// Entity is one simulated object: a visual node and a physics body sharing an id.
type Entity struct {
	ID        int
	Kind      Kind
	Name      string
	Transform Transform
	Dims      Dimensions
	Mass      float32 // dynamic mass, kept while fixed
	Color     rl.Color
	Fixed     bool

	Visual         NodeID
	Body           BodyID
	FixedIndicator NodeID // zero when not fixed

	Asset *MeshAsset

	// Meta is free-form user data carried through save/load.
	Meta map[string]any
}

// Scale is the visual scale. Only imported meshes are scaled.
func (e *Entity) Scale() rl.Vector3 {
	if e.Asset != nil && e.Asset.Scale > 0 {
		s := e.Asset.Scale
		return rl.Vector3{X: s, Y: s, Z: s}
	}
	return rl.Vector3{X: 1, Y: 1, Z: 1}
}

// Geometry describes the entity's current visual for the renderer.
func (e *Entity) Geometry() Geometry {
	g := Geometry{Kind: e.Kind, Dims: e.Dims, Color: e.Color}
	if e.Asset != nil {
		g.AssetPath = e.Asset.Path
	}
	return g
}

// Shape describes the entity's collision shape for the physics world.
func (e *Entity) Shape() Shape {
	switch e.Kind {
	case KindSphere:
		return Shape{Type: ShapeSphere, Radius: e.Dims.Radius}
	case KindCylinder, KindCone, KindTorus, KindWheel:
		ext := e.Dims.Extents(e.Kind)
		return Shape{Type: ShapeCylinder, HalfExtents: rl.Vector3Scale(ext, 0.5), Radius: e.Dims.Radius}
	}
	return Shape{Type: ShapeBox, HalfExtents: rl.Vector3Scale(e.Dims.Extents(e.Kind), 0.5)}
}

// BodyMass is what the physics body should weigh: zero when fixed.
func (e *Entity) BodyMass() float32 {
	if e.Fixed {
		return 0
	}
	return e.Mass
}

// ColorHex packs the color as 0xRRGGBB.
func ColorHex(c rl.Color) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func ColorFromHex(v uint32) rl.Color {
	return rl.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
