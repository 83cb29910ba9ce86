package engine

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-4

func assertVec(t *testing.T, want, got rl.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "x")
	assert.InDelta(t, want.Y, got.Y, eps, "y")
	assert.InDelta(t, want.Z, got.Z, eps, "z")
}

func TestApplyInverseApply(t *testing.T) {
	tr := Transform{
		Position: rl.Vector3{X: 1, Y: 2, Z: 3},
		Rotation: rl.QuaternionFromAxisAngle(WorldUp, math.Pi/2),
	}
	local := rl.Vector3{X: 1}

	world := tr.Apply(local)
	// +X rotated 90° about Y is -Z
	assertVec(t, rl.Vector3{X: 1, Y: 2, Z: 2}, world)
	assertVec(t, local, tr.InverseApply(world))
}

func TestComposeRelative(t *testing.T) {
	leader := Transform{
		Position: rl.Vector3{X: -2, Y: 1},
		Rotation: rl.QuaternionFromAxisAngle(rl.Vector3{X: 1}, 0.7),
	}
	follower := Transform{
		Position: rl.Vector3{X: 3, Y: 4, Z: 5},
		Rotation: rl.QuaternionFromAxisAngle(WorldUp, 1.1),
	}

	rel := leader.Relative(follower)
	back := leader.Compose(rel)

	assertVec(t, follower.Position, back.Position)
	q, r := follower.Rotation, back.Rotation
	dot := q.X*r.X + q.Y*r.Y + q.Z*r.Z + q.W*r.W
	assert.InDelta(t, 1, math.Abs(float64(dot)), eps)
}

func TestIdentityRelativeIsDifference(t *testing.T) {
	a := NewTransform(rl.Vector3{X: 1, Y: 1, Z: 1})
	b := NewTransform(rl.Vector3{X: 4, Y: 0, Z: 1})
	assertVec(t, rl.Vector3{X: 3, Y: -1}, a.Relative(b).Position)
	assertVec(t, rl.Vector3{X: 3, Y: -1}, a.InverseApply(b.Position))
}

func TestEulerDegreesRoundTrip(t *testing.T) {
	deg := rl.Vector3{X: 10, Y: 20, Z: 30}
	tr := Transform{Rotation: QuaternionFromEulerDegrees(deg)}
	assertVec(t, deg, tr.EulerDegrees())
}

func TestFinite(t *testing.T) {
	assert.True(t, Finite(rl.Vector3{X: 1, Y: -2, Z: 0}))
	assert.False(t, Finite(rl.Vector3{X: float32(math.NaN())}))
	assert.False(t, Finite(rl.Vector3{Z: float32(math.Inf(1))}))
	assert.False(t, FiniteQuaternion(rl.Quaternion{W: float32(math.NaN())}))
}
