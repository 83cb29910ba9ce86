package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// clamp restricts a value to a range
func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// corners returns the eight world-space corners of the body's box hull.
// Cylinders use their bounding box.
func corners(b *Body) [8]rl.Vector3 {
	var out [8]rl.Vector3
	h := b.Shape.HalfExtents
	for i := range out {
		local := rl.Vector3{X: h.X, Y: h.Y, Z: h.Z}
		if i&1 != 0 {
			local.X = -local.X
		}
		if i&2 != 0 {
			local.Y = -local.Y
		}
		if i&4 != 0 {
			local.Z = -local.Z
		}
		out[i] = b.Transform.Apply(rl.Vector3Add(b.Offset, local))
	}
	return out
}

// basis returns two unit vectors perpendicular to n and to each other.
func basis(n rl.Vector3) (t1, t2 rl.Vector3) {
	if math32.Abs(n.X) > 0.57735 {
		t1 = rl.Vector3{X: n.Y, Y: -n.X}
	} else {
		t1 = rl.Vector3{Y: n.Z, Z: -n.Y}
	}
	t1 = rl.Vector3Normalize(t1)
	t2 = rl.Vector3CrossProduct(n, t1)
	return t1, t2
}

// rotationError is the small-angle rotation vector taking orientation from
// onto to.
func rotationError(from, to rl.Quaternion) rl.Vector3 {
	d := rl.QuaternionMultiply(to, rl.QuaternionInvert(from))
	if d.W < 0 {
		d = rl.Quaternion{X: -d.X, Y: -d.Y, Z: -d.Z, W: -d.W}
	}
	return rl.Vector3{X: 2 * d.X, Y: 2 * d.Y, Z: 2 * d.Z}
}

// integrateRotation advances q by angular velocity w over dt.
func integrateRotation(q rl.Quaternion, w rl.Vector3, dt float32) rl.Quaternion {
	spin := rl.QuaternionMultiply(rl.Quaternion{X: w.X, Y: w.Y, Z: w.Z}, q)
	q.X += 0.5 * dt * spin.X
	q.Y += 0.5 * dt * spin.Y
	q.Z += 0.5 * dt * spin.Z
	q.W += 0.5 * dt * spin.W
	return rl.QuaternionNormalize(q)
}
