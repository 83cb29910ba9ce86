package camera

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	minDistance float32 = 1
	maxDistance float32 = 200
	maxPitch    float32 = 89
	focusSpeed  float32 = 4 // completes in ~0.25s
)

// OrbitCamera circles a target point. Yaw and pitch are in degrees; pitch
// is the elevation above the target.
type OrbitCamera struct {
	Target    rl.Vector3
	Yaw       float32
	Pitch     float32
	Distance  float32
	MoveSpeed float32
	LookSpeed float32
	ZoomSpeed float32

	focusing      bool
	focusFrom     rl.Vector3
	focusTo       rl.Vector3
	focusDist     [2]float32
	focusProgress float32
}

func New(target rl.Vector3) *OrbitCamera {
	return &OrbitCamera{
		Target:    target,
		Yaw:       45,
		Pitch:     30,
		Distance:  15,
		MoveSpeed: 8.0, // Units per second
		LookSpeed: 0.3,
		ZoomSpeed: 0.1,
	}
}

// Update applies mouse and keyboard input: right drag orbits, middle drag
// pans, the wheel zooms and WASD/QE move the target.
func (c *OrbitCamera) Update(deltaTime float32) {
	c.Animate(deltaTime)

	delta := rl.GetMouseDelta()
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		c.Orbit(delta.X*c.LookSpeed, -delta.Y*c.LookSpeed)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		c.Pan(-delta.X, delta.Y)
	}
	if scroll := rl.GetMouseWheelMove(); scroll != 0 {
		c.Zoom(scroll)
	}

	// keyboard flight only while orbiting, so shortcuts stay free
	if !rl.IsMouseButtonDown(rl.MouseButtonRight) {
		return
	}
	var move rl.Vector3
	forward, right := c.Directions()
	if rl.IsKeyDown(rl.KeyW) {
		move = rl.Vector3Add(move, forward)
	}
	if rl.IsKeyDown(rl.KeyS) {
		move = rl.Vector3Subtract(move, forward)
	}
	if rl.IsKeyDown(rl.KeyD) {
		move = rl.Vector3Add(move, right)
	}
	if rl.IsKeyDown(rl.KeyA) {
		move = rl.Vector3Subtract(move, right)
	}
	if rl.IsKeyDown(rl.KeyE) {
		move.Y++
	}
	if rl.IsKeyDown(rl.KeyQ) {
		move.Y--
	}
	c.Move(move, deltaTime)
}

// Orbit turns the view by the given degrees. Pitch stays short of the poles.
func (c *OrbitCamera) Orbit(yaw, pitch float32) {
	c.Yaw = math32.Mod(c.Yaw+yaw, 360)
	c.Pitch = max(-maxPitch, min(maxPitch, c.Pitch+pitch))
}

// Zoom moves toward the target for positive steps, proportionally to the
// current distance.
func (c *OrbitCamera) Zoom(steps float32) {
	c.Distance *= 1 - steps*c.ZoomSpeed
	c.Distance = max(minDistance, min(maxDistance, c.Distance))
}

// Pan slides the target in the view plane by screen pixels.
func (c *OrbitCamera) Pan(dx, dy float32) {
	_, right := c.Directions()
	up := rl.Vector3CrossProduct(right, c.viewDir())
	scale := c.Distance * 0.002
	c.Target = rl.Vector3Add(c.Target, rl.Vector3Scale(right, dx*scale))
	c.Target = rl.Vector3Add(c.Target, rl.Vector3Scale(up, dy*scale))
}

// Move flies the target along dir, normalized, at MoveSpeed.
func (c *OrbitCamera) Move(dir rl.Vector3, deltaTime float32) {
	if rl.Vector3Length(dir) == 0 {
		return
	}
	step := rl.Vector3Scale(rl.Vector3Normalize(dir), c.MoveSpeed*deltaTime)
	c.Target = rl.Vector3Add(c.Target, step)
}

// Directions returns the horizontal forward and right vectors.
func (c *OrbitCamera) Directions() (forward, right rl.Vector3) {
	yaw := c.Yaw * rl.Deg2rad
	forward = rl.Vector3{X: -math32.Cos(yaw), Z: -math32.Sin(yaw)}
	right = rl.Vector3{X: math32.Sin(yaw), Z: -math32.Cos(yaw)}
	return forward, right
}

// viewDir points from the eye toward the target.
func (c *OrbitCamera) viewDir() rl.Vector3 {
	return rl.Vector3Negate(c.offset(1))
}

func (c *OrbitCamera) offset(distance float32) rl.Vector3 {
	yaw := c.Yaw * rl.Deg2rad
	pitch := c.Pitch * rl.Deg2rad
	return rl.Vector3{
		X: math32.Cos(yaw) * math32.Cos(pitch) * distance,
		Y: math32.Sin(pitch) * distance,
		Z: math32.Sin(yaw) * math32.Cos(pitch) * distance,
	}
}

func (c *OrbitCamera) Position() rl.Vector3 {
	return rl.Vector3Add(c.Target, c.offset(c.Distance))
}

// Focus eases the view onto a point, backing off to fit an object of the
// given radius.
func (c *OrbitCamera) Focus(target rl.Vector3, radius float32) {
	c.focusing = true
	c.focusFrom = c.Target
	c.focusTo = target
	c.focusDist = [2]float32{c.Distance, max(3, radius*3)}
	c.focusProgress = 0
}

func (c *OrbitCamera) Focusing() bool { return c.focusing }

// Animate advances a running Focus.
func (c *OrbitCamera) Animate(deltaTime float32) {
	if !c.focusing {
		return
	}
	c.focusProgress += deltaTime * focusSpeed
	if c.focusProgress >= 1 {
		c.focusing = false
		c.Target = c.focusTo
		c.Distance = c.focusDist[1]
		return
	}

	// ease-out cubic
	t := c.focusProgress
	ease := 1 - (1-t)*(1-t)*(1-t)
	c.Target = rl.Vector3Lerp(c.focusFrom, c.focusTo, ease)
	c.Distance = c.focusDist[0] + (c.focusDist[1]-c.focusDist[0])*ease
}

func (c *OrbitCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position(),
		Target:     c.Target,
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}
