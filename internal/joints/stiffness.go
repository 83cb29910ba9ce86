package joints

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	// RigidStiffness stands in for infinity on rigid motors.
	RigidStiffness float32 = 1e6
	// PointMaxForce caps every point constraint sticks and glues create.
	PointMaxForce float32 = 1000
	// ArrowLength is the axis indicator's length.
	ArrowLength float32 = 0.5
)

// GlueSecondPoint offsets glue's second point constraint from the first.
var GlueSecondPoint = rl.Vector3{X: 0.1, Y: 0.1, Z: 0.1}

// EngineStiffness maps the 0-100 UI stiffness onto the solver's scale.
// The curve is quadratic: 50 maps to 100, 100 maps to 400.
func EngineStiffness(ui float32) float32 {
	r := ui / 50
	return 100 * r * r
}

// Relaxation for a given engine stiffness.
func Relaxation(stiffness float32) float32 {
	return 3 / (stiffness + 1)
}

// ClampStiffness limits a UI stiffness to [0,100].
func ClampStiffness(ui float32) float32 {
	return math32.Max(0, math32.Min(100, ui))
}

// HingeAxis picks a rotation axis perpendicular to the segment a→b. It
// crosses world up with the segment and falls back to world forward, then
// world right, when the cross product degenerates.
func HingeAxis(a, b rl.Vector3) rl.Vector3 {
	dir := rl.Vector3Normalize(rl.Vector3Subtract(b, a))
	for _, ref := range []rl.Vector3{{Y: 1}, {Z: 1}} {
		axis := rl.Vector3CrossProduct(ref, dir)
		if rl.Vector3Length(axis) >= 0.01 {
			return rl.Vector3Normalize(axis)
		}
	}
	axis := rl.Vector3CrossProduct(rl.Vector3{X: 1}, dir)
	if rl.Vector3Length(axis) < 1e-6 {
		// a == b: any axis will do
		return rl.Vector3{X: 1}
	}
	return rl.Vector3Normalize(axis)
}
