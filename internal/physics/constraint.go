package physics

import (
	"projector/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var worldAxes = [3]rl.Vector3{{X: 1}, {Y: 1}, {Z: 1}}

// Constraint joins two bodies. Anchors and axes are in each body's frame.
type Constraint struct {
	ID     engine.ConstraintID
	Kind   engine.ConstraintKind
	A, B   *Body
	LocalA rl.Vector3
	LocalB rl.Vector3
	AxisA  rl.Vector3
	AxisB  rl.Vector3

	MaxForce   float32
	Stiffness  float32
	Relaxation float32

	MotorEnabled  bool
	MotorSpeed    float32 // rad/s of B relative to A about the hinge axis
	MotorMaxForce float32

	// B's orientation in A's frame when the lock was made
	relRotation  rl.Quaternion
	motorImpulse float32
}

func newConstraint(id engine.ConstraintID, kind engine.ConstraintKind, a *Body, localA rl.Vector3, b *Body, localB rl.Vector3, p engine.ConstraintParams) *Constraint {
	c := &Constraint{
		ID:         id,
		Kind:       kind,
		A:          a,
		B:          b,
		LocalA:     localA,
		LocalB:     localB,
		AxisA:      rl.Vector3Normalize(p.AxisA),
		AxisB:      rl.Vector3Normalize(p.AxisB),
		MaxForce:   p.MaxForce,
		Stiffness:  p.Stiffness,
		Relaxation: p.Relaxation,
		relRotation: rl.QuaternionNormalize(
			rl.QuaternionMultiply(rl.QuaternionInvert(a.Transform.Rotation), b.Transform.Rotation)),
	}
	if kind == engine.ConstraintHinge && rl.Vector3Length(p.AxisA) == 0 {
		c.AxisA = rl.Vector3{X: 1}
		c.AxisB = b.Transform.InverseApplyDirection(a.Transform.ApplyDirection(c.AxisA))
	}
	return c
}

// Driven reports whether the motor is pushing the bodies.
func (c *Constraint) Driven() bool {
	return c.Kind == engine.ConstraintHinge && c.MotorEnabled && c.MotorSpeed != 0
}

// softness turns stiffness and relaxation into the share of positional
// error corrected per step and a damping term on the effective mass.
func (c *Constraint) softness(h float32) (beta, gamma float32) {
	if c.Stiffness <= 0 {
		return 0.2, 0
	}
	kh2 := c.Stiffness * h * h
	beta = clamp(kh2/(1+c.Relaxation+kh2), 0, 0.8)
	gamma = 1 / (1 + kh2)
	return beta, gamma
}

func (c *Constraint) solve(h float32) {
	if !c.A.Dynamic() && !c.B.Dynamic() {
		return
	}
	beta, gamma := c.softness(h)
	c.solvePoint(h, beta, gamma)
	switch c.Kind {
	case engine.ConstraintLock:
		target := rl.QuaternionMultiply(c.A.Transform.Rotation, c.relRotation)
		e := rotationError(target, c.B.Transform.Rotation)
		for _, n := range worldAxes {
			c.solveAngular(n, rl.Vector3DotProduct(e, n), h, beta, gamma)
		}
	case engine.ConstraintHinge:
		axisA := c.A.Transform.ApplyDirection(c.AxisA)
		axisB := c.B.Transform.ApplyDirection(c.AxisB)
		e := rl.Vector3CrossProduct(axisA, axisB)
		t1, t2 := basis(axisA)
		c.solveAngular(t1, rl.Vector3DotProduct(e, t1), h, beta, gamma)
		c.solveAngular(t2, rl.Vector3DotProduct(e, t2), h, beta, gamma)
		if c.MotorEnabled {
			c.solveMotor(axisA, h)
		}
	}
}

// solvePoint drives the two anchors together, one world axis at a time.
func (c *Constraint) solvePoint(h, beta, gamma float32) {
	a, b := c.A, c.B
	rA := a.Transform.ApplyDirection(c.LocalA)
	rB := b.Transform.ApplyDirection(c.LocalB)
	gap := rl.Vector3Subtract(
		rl.Vector3Add(b.Transform.Position, rB),
		rl.Vector3Add(a.Transform.Position, rA))
	limit := c.MaxForce * h

	for _, n := range worldAxes {
		k := a.invMass + b.invMass + angularMass(a, rA, n) + angularMass(b, rB, n)
		if k <= 0 {
			continue
		}
		vrel := rl.Vector3DotProduct(rl.Vector3Subtract(b.pointVelocity(rB), a.pointVelocity(rA)), n)
		lambda := -(vrel + beta/h*rl.Vector3DotProduct(gap, n)) / (k * (1 + gamma))
		if c.MaxForce > 0 {
			lambda = clamp(lambda, -limit, limit)
		}
		p := rl.Vector3Scale(n, lambda)
		b.applyImpulse(p, rB)
		a.applyImpulse(rl.Vector3Negate(p), rA)
	}
}

// angularMass is the rotational part of the effective mass of point r along n.
func angularMass(b *Body, r, n rl.Vector3) float32 {
	rn := rl.Vector3CrossProduct(r, n)
	return rl.Vector3DotProduct(rn, b.applyInvInertia(rn))
}

func (c *Constraint) solveAngular(n rl.Vector3, err, h, beta, gamma float32) {
	a, b := c.A, c.B
	k := rl.Vector3DotProduct(n, a.applyInvInertia(n)) + rl.Vector3DotProduct(n, b.applyInvInertia(n))
	if k <= 0 {
		return
	}
	wrel := rl.Vector3DotProduct(rl.Vector3Subtract(b.AngularVelocity, a.AngularVelocity), n)
	lambda := -(wrel + beta/h*err) / (k * (1 + gamma))
	p := rl.Vector3Scale(n, lambda)
	b.applyAngularImpulse(p)
	a.applyAngularImpulse(rl.Vector3Negate(p))
}

// solveMotor pushes the relative spin about axis toward MotorSpeed. The
// impulse accumulated over one step never exceeds MotorMaxForce·h.
func (c *Constraint) solveMotor(axis rl.Vector3, h float32) {
	a, b := c.A, c.B
	k := rl.Vector3DotProduct(axis, a.applyInvInertia(axis)) + rl.Vector3DotProduct(axis, b.applyInvInertia(axis))
	if k <= 0 {
		return
	}
	wrel := rl.Vector3DotProduct(rl.Vector3Subtract(b.AngularVelocity, a.AngularVelocity), axis)
	lambda := -(wrel - c.MotorSpeed) / k

	limit := c.MotorMaxForce * h
	total := clamp(c.motorImpulse+lambda, -limit, limit)
	lambda = total - c.motorImpulse
	c.motorImpulse = total

	p := rl.Vector3Scale(axis, lambda)
	b.applyAngularImpulse(p)
	a.applyAngularImpulse(rl.Vector3Negate(p))
}
