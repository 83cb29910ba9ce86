package physics

import (
	"projector/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Sleep thresholds
const (
	SleepVelocityThreshold = 0.05 // m/s - below this, a body might sleep
	SleepAngularThreshold  = 0.05 // rad/s
	SleepTimeThreshold     = 1.0  // seconds of low velocity before sleeping
)

// Body is one rigid body. Its transform is the entity's pose; the collision
// shape sits at Offset in the body frame.
type Body struct {
	ID        engine.BodyID
	Type      engine.BodyType
	Shape     engine.Shape
	Offset    rl.Vector3
	Transform engine.Transform

	Velocity        rl.Vector3
	AngularVelocity rl.Vector3 // rad/s, world frame

	Mass           float32
	Bounciness     float32 // 0 = no bounce, 1 = perfect bounce
	Friction       float32 // 0 = ice, 1 = stops immediately
	LinearDamping  float32 // fraction of velocity lost per second
	AngularDamping float32

	invMass    float32
	invInertia rl.Vector3 // body-frame diagonal

	inWorld    bool
	sleeping   bool
	sleepTimer float32
}

func newBody(id engine.BodyID, mass float32, shape engine.Shape, t engine.Transform) *Body {
	b := &Body{
		ID:             id,
		Type:           engine.BodyDynamic,
		Shape:          shape,
		Transform:      t,
		Mass:           mass,
		Bounciness:     0.2,
		Friction:       0.4,
		LinearDamping:  0.01,
		AngularDamping: 0.05,
	}
	if mass <= 0 {
		b.Type = engine.BodyStatic
	}
	b.updateMassProperties()
	return b
}

func (b *Body) Dynamic() bool {
	return b.Type == engine.BodyDynamic && b.invMass > 0
}

func (b *Body) Sleeping() bool {
	return b.sleeping
}

// updateMassProperties recomputes inverse mass and inertia from mass,
// shape and type.
func (b *Body) updateMassProperties() {
	if b.Type == engine.BodyStatic || b.Mass <= 0 {
		b.invMass = 0
		b.invInertia = rl.Vector3{}
		return
	}
	b.invMass = 1 / b.Mass
	i := inertia(b.Mass, b.Shape)
	b.invInertia = rl.Vector3{X: inv(i.X), Y: inv(i.Y), Z: inv(i.Z)}
}

// inertia is the diagonal inertia tensor of a solid shape about its center.
func inertia(m float32, s engine.Shape) rl.Vector3 {
	switch s.Type {
	case engine.ShapeSphere:
		v := 0.4 * m * s.Radius * s.Radius
		return rl.Vector3{X: v, Y: v, Z: v}
	case engine.ShapeCylinder:
		r, h := s.Radius, 2*s.HalfExtents.Y
		side := m * (3*r*r + h*h) / 12
		return rl.Vector3{X: side, Y: 0.5 * m * r * r, Z: side}
	}
	w, h, d := 2*s.HalfExtents.X, 2*s.HalfExtents.Y, 2*s.HalfExtents.Z
	return rl.Vector3{
		X: m * (h*h + d*d) / 12,
		Y: m * (w*w + d*d) / 12,
		Z: m * (w*w + h*h) / 12,
	}
}

func inv(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return 1 / v
}

// applyInvInertia maps a world-frame torque impulse to an angular velocity change.
func (b *Body) applyInvInertia(v rl.Vector3) rl.Vector3 {
	if b.invMass == 0 {
		return rl.Vector3{}
	}
	local := b.Transform.InverseApplyDirection(v)
	local = rl.Vector3Multiply(local, b.invInertia)
	return b.Transform.ApplyDirection(local)
}

// applyImpulse changes the body's velocities as if impulse p hit it at
// world offset r from its center.
func (b *Body) applyImpulse(p, r rl.Vector3) {
	if !b.Dynamic() {
		return
	}
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(p, b.invMass))
	b.AngularVelocity = rl.Vector3Add(b.AngularVelocity, b.applyInvInertia(rl.Vector3CrossProduct(r, p)))
}

func (b *Body) applyAngularImpulse(p rl.Vector3) {
	if !b.Dynamic() {
		return
	}
	b.AngularVelocity = rl.Vector3Add(b.AngularVelocity, b.applyInvInertia(p))
}

// pointVelocity is the world velocity of the material point at offset r.
func (b *Body) pointVelocity(r rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(b.Velocity, rl.Vector3CrossProduct(b.AngularVelocity, r))
}

// center is the collision shape's world center.
func (b *Body) center() rl.Vector3 {
	return b.Transform.Apply(b.Offset)
}

// Wake forces the body out of sleep.
func (b *Body) Wake() {
	b.sleeping = false
	b.sleepTimer = 0
}

func (b *Body) resetVelocity() {
	b.Velocity = rl.Vector3{}
	b.AngularVelocity = rl.Vector3{}
}

// trySleep puts the body to sleep after it has been slow for long enough.
func (b *Body) trySleep(dt float32) {
	if b.sleeping {
		return
	}
	speed := rl.Vector3Length(b.Velocity)
	angSpeed := rl.Vector3Length(b.AngularVelocity)
	if speed >= SleepVelocityThreshold || angSpeed >= SleepAngularThreshold {
		b.sleepTimer = 0
		return
	}
	b.sleepTimer += dt
	if b.sleepTimer >= SleepTimeThreshold {
		b.sleeping = true
		b.resetVelocity()
	}
}
