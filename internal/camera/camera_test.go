package camera

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got rl.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4)
	assert.InDelta(t, want.Y, got.Y, 1e-4)
	assert.InDelta(t, want.Z, got.Z, 1e-4)
}

func TestPositionOrbitsTarget(t *testing.T) {
	c := New(rl.Vector3{Y: 1})
	c.Yaw, c.Pitch, c.Distance = 0, 0, 10
	assertVec(t, rl.Vector3{X: 10, Y: 1}, c.Position())

	c.Pitch = 89
	assert.InDelta(t, 10, rl.Vector3Distance(c.Position(), c.Target), 1e-4)

	cam := c.GetRaylibCamera()
	assert.Equal(t, c.Target, cam.Target)
	assert.Equal(t, rl.CameraPerspective, cam.Projection)
}

func TestOrbitClampsPitch(t *testing.T) {
	c := New(rl.Vector3{})
	c.Orbit(0, 500)
	assert.Equal(t, float32(89), c.Pitch)
	c.Orbit(0, -500)
	assert.Equal(t, float32(-89), c.Pitch)

	c.Yaw = 350
	c.Orbit(20, 0)
	assert.InDelta(t, 10, c.Yaw, 1e-4)
}

func TestZoomStaysInRange(t *testing.T) {
	c := New(rl.Vector3{})
	c.Distance = 10
	c.Zoom(1)
	assert.InDelta(t, 9, c.Distance, 1e-4)

	for range 100 {
		c.Zoom(5)
	}
	assert.Equal(t, minDistance, c.Distance)
	for range 100 {
		c.Zoom(-5)
	}
	assert.Equal(t, maxDistance, c.Distance)
}

func TestDirectionsAreHorizontalAndPerpendicular(t *testing.T) {
	c := New(rl.Vector3{})
	c.Yaw, c.Pitch = 0, 30

	forward, right := c.Directions()
	assertVec(t, rl.Vector3{X: -1}, forward)
	assertVec(t, rl.Vector3{Z: -1}, right)
	assert.InDelta(t, 0, rl.Vector3DotProduct(forward, right), 1e-6)
}

func TestMoveAndPanShiftTarget(t *testing.T) {
	c := New(rl.Vector3{})
	c.Yaw, c.Pitch, c.Distance = 0, 0, 500
	c.MoveSpeed = 2

	c.Move(rl.Vector3{X: -3}, 0.5)
	assertVec(t, rl.Vector3{X: -1}, c.Target)
	c.Move(rl.Vector3{}, 1)
	assertVec(t, rl.Vector3{X: -1}, c.Target)

	c.Pan(1, 1)
	assertVec(t, rl.Vector3{X: -1, Y: 1, Z: -1}, c.Target)
}

func TestFocusEasesOntoTarget(t *testing.T) {
	c := New(rl.Vector3{})
	c.Distance = 20
	c.Focus(rl.Vector3{X: 10}, 2)
	assert.True(t, c.Focusing())

	c.Animate(0.1)
	assert.Greater(t, c.Target.X, float32(0))
	assert.Less(t, c.Target.X, float32(10))

	c.Animate(1)
	assert.False(t, c.Focusing())
	assert.Equal(t, rl.Vector3{X: 10}, c.Target)
	assert.Equal(t, float32(6), c.Distance)

	c.Focus(rl.Vector3{}, 0.1)
	c.Animate(1)
	assert.Equal(t, float32(3), c.Distance, "never closer than 3")
}
