package physics

import (
	"projector/internal/engine"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// boundsOf returns the world AABB enclosing the body's shape.
func boundsOf(b *Body) AABB {
	c := b.center()
	if b.Shape.Type == engine.ShapeSphere {
		r := rl.Vector3{X: b.Shape.Radius, Y: b.Shape.Radius, Z: b.Shape.Radius}
		return AABB{Min: rl.Vector3Subtract(c, r), Max: rl.Vector3Add(c, r)}
	}
	// |R|·h gives the rotated box's half size on each world axis.
	m := rl.QuaternionToMatrix(b.Transform.Rotation)
	h := b.Shape.HalfExtents
	half := rl.Vector3{
		X: math32.Abs(m.M0)*h.X + math32.Abs(m.M4)*h.Y + math32.Abs(m.M8)*h.Z,
		Y: math32.Abs(m.M1)*h.X + math32.Abs(m.M5)*h.Y + math32.Abs(m.M9)*h.Z,
		Z: math32.Abs(m.M2)*h.X + math32.Abs(m.M6)*h.Y + math32.Abs(m.M10)*h.Z,
	}
	return AABB{Min: rl.Vector3Subtract(c, half), Max: rl.Vector3Add(c, half)}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Resolve returns the minimum translation that pushes a out of b, or the
// zero vector when they do not overlap.
func (a AABB) Resolve(b AABB) rl.Vector3 {
	if !a.Intersects(b) {
		return rl.Vector3{}
	}

	candidates := [6]rl.Vector3{
		{X: b.Max.X - a.Min.X},
		{X: -(a.Max.X - b.Min.X)},
		{Y: b.Max.Y - a.Min.Y},
		{Y: -(a.Max.Y - b.Min.Y)},
		{Z: b.Max.Z - a.Min.Z},
		{Z: -(a.Max.Z - b.Min.Z)},
	}
	best := candidates[0]
	bestLen := math32.Abs(best.X)
	for _, c := range candidates[1:] {
		if l := math32.Abs(c.X + c.Y + c.Z); l < bestLen {
			best, bestLen = c, l
		}
	}
	return best
}
