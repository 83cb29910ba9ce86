package engine

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	WorldUp      = rl.Vector3{Y: 1}
	WorldForward = rl.Vector3{Z: 1}
	WorldRight   = rl.Vector3{X: 1}
)

// Transform is a rigid pose: position plus orientation.
type Transform struct {
	Position rl.Vector3
	Rotation rl.Quaternion
}

func NewTransform(position rl.Vector3) Transform {
	return Transform{Position: position, Rotation: rl.QuaternionIdentity()}
}

// Apply maps a point from this transform's local frame into world space.
func (t Transform) Apply(local rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(t.Position, rl.Vector3RotateByQuaternion(local, t.Rotation))
}

// InverseApply maps a world point into this transform's local frame.
func (t Transform) InverseApply(world rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3Subtract(world, t.Position), rl.QuaternionInvert(t.Rotation))
}

// ApplyDirection rotates a local direction into world space.
func (t Transform) ApplyDirection(local rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(local, t.Rotation)
}

// InverseApplyDirection rotates a world direction into the local frame.
func (t Transform) InverseApplyDirection(world rl.Vector3) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(world, rl.QuaternionInvert(t.Rotation))
}

// Compose returns t ∘ rel: rel expressed in t's frame, taken to world space.
func (t Transform) Compose(rel Transform) Transform {
	return Transform{
		Position: t.Apply(rel.Position),
		Rotation: rl.QuaternionNormalize(rl.QuaternionMultiply(t.Rotation, rel.Rotation)),
	}
}

// Relative returns other's pose expressed in t's frame, so t.Compose(t.Relative(other)) == other.
func (t Transform) Relative(other Transform) Transform {
	inv := rl.QuaternionInvert(t.Rotation)
	return Transform{
		Position: rl.Vector3RotateByQuaternion(rl.Vector3Subtract(other.Position, t.Position), inv),
		Rotation: rl.QuaternionNormalize(rl.QuaternionMultiply(inv, other.Rotation)),
	}
}

func (t Transform) Translated(delta rl.Vector3) Transform {
	t.Position = rl.Vector3Add(t.Position, delta)
	return t
}

// EulerDegrees returns the orientation as XYZ Euler angles in degrees.
func (t Transform) EulerDegrees() rl.Vector3 {
	return rl.Vector3Scale(rl.QuaternionToEuler(t.Rotation), rl.Rad2deg)
}

// QuaternionFromEulerDegrees builds an orientation from XYZ Euler angles in degrees.
func QuaternionFromEulerDegrees(deg rl.Vector3) rl.Quaternion {
	return rl.QuaternionFromEuler(deg.X*rl.Deg2rad, deg.Y*rl.Deg2rad, deg.Z*rl.Deg2rad)
}

// Finite reports whether every component is a real number.
func Finite(v rl.Vector3) bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func FiniteQuaternion(q rl.Quaternion) bool {
	return Finite(rl.Vector3{X: q.X, Y: q.Y, Z: q.Z}) && !math32.IsNaN(q.W) && !math32.IsInf(q.W, 0)
}

// Midpoint of a and b.
func Midpoint(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(a, b), 0.5)
}
