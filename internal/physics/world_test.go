package physics

import (
	"projector/internal/config"
	"projector/internal/engine"
	"projector/internal/log"
	"testing"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const h = float32(1.0 / 60.0)

func newWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld(config.Default().Physics, log.Nop())
}

func box(half float32) engine.Shape {
	return engine.Shape{Type: engine.ShapeBox, HalfExtents: rl.Vector3{X: half, Y: half, Z: half}}
}

func addBody(w *World, mass float32, shape engine.Shape, pos rl.Vector3) *Body {
	id := w.CreateBody(mass, shape, engine.NewTransform(pos))
	w.AddToWorld(id)
	return w.Body(id)
}

func run(w *World, seconds float32) {
	for i := 0; i < int(seconds/h); i++ {
		w.Step(h, h)
	}
}

func TestBoxSettlesOnGround(t *testing.T) {
	w := newWorld(t)
	b := addBody(w, 1, box(0.5), rl.Vector3{Y: 3})

	run(w, 3)
	assert.InDelta(t, 0.5, b.Transform.Position.Y, 0.05)
	assert.InDelta(t, 0, b.Transform.Position.X, 1e-3)

	run(w, 3)
	assert.True(t, b.Sleeping())

	w.WakeUp(b.ID)
	assert.False(t, b.Sleeping())
}

func TestSphereSettlesOnStaticBox(t *testing.T) {
	w := newWorld(t)
	floor := addBody(w, 0, box(0.5), rl.Vector3{Y: 0.5})
	ball := addBody(w, 1, engine.Shape{Type: engine.ShapeSphere, Radius: 0.25}, rl.Vector3{Y: 3})

	run(w, 3)
	assert.InDelta(t, 1.25, ball.Transform.Position.Y, 0.05)
	assert.Equal(t, rl.Vector3{Y: 0.5}, floor.Transform.Position)
}

func TestStaticBodiesDoNotMove(t *testing.T) {
	w := newWorld(t)
	b := addBody(w, 1, box(0.5), rl.Vector3{Y: 5})
	w.SetBodyType(b.ID, engine.BodyStatic)

	run(w, 1)
	assert.Equal(t, rl.Vector3{Y: 5}, b.Transform.Position)

	w.SetBodyType(b.ID, engine.BodyDynamic)
	run(w, 0.5)
	assert.Less(t, b.Transform.Position.Y, float32(5))
}

func TestStepAccumulatesTime(t *testing.T) {
	w := newWorld(t)
	w.Ground = false
	b := addBody(w, 1, box(0.5), rl.Vector3{Y: 100})

	w.Step(h, h/2)
	assert.Zero(t, b.Velocity.Y, "half a step does not advance")

	w.Step(h, h/2)
	assert.Less(t, b.Velocity.Y, float32(0))
}

func TestStepCapsSubSteps(t *testing.T) {
	w := newWorld(t)
	w.Ground = false
	w.MaxSubSteps = 3
	b := addBody(w, 1, box(0.5), rl.Vector3{Y: 100})

	w.Step(h, 1)
	perStep := w.Gravity.Y * h
	assert.InDelta(t, 3*perStep, b.Velocity.Y, 0.01)

	// the backlog was dropped
	w.Step(h, h/2)
	assert.InDelta(t, 3*perStep, b.Velocity.Y, 0.01)
}

func TestPointConstraintHoldsPendulum(t *testing.T) {
	w := newWorld(t)
	w.Ground = false
	pivot := addBody(w, 0, engine.Shape{Type: engine.ShapeSphere, Radius: 0.1}, rl.Vector3{Y: 5})
	bob := addBody(w, 1, box(0.2), rl.Vector3{X: 2, Y: 5})

	_, err := w.CreateConstraint(engine.ConstraintPoint, pivot.ID, rl.Vector3{}, bob.ID, rl.Vector3{X: -2},
		engine.ConstraintParams{MaxForce: 1000, Stiffness: 1e6})
	require.NoError(t, err)

	lowest := bob.Transform.Position.Y
	for i := 0; i < 90; i++ {
		w.Step(h, h)
		anchor := bob.Transform.Apply(rl.Vector3{X: -2})
		require.Less(t, rl.Vector3Distance(anchor, pivot.Transform.Position), float32(0.15), "step %d", i)
		lowest = min(lowest, bob.Transform.Position.Y)
	}
	assert.Less(t, lowest, float32(4), "the bob swings down")
}

func TestLockHoldsPose(t *testing.T) {
	w := newWorld(t)
	w.Ground = false
	anchor := addBody(w, 0, box(0.5), rl.Vector3{Y: 5})
	held := addBody(w, 1, box(0.5), rl.Vector3{X: 1.5, Y: 5})

	_, err := w.CreateConstraint(engine.ConstraintLock, anchor.ID, rl.Vector3{X: 0.75}, held.ID, rl.Vector3{X: -0.75},
		engine.ConstraintParams{Stiffness: 1e6})
	require.NoError(t, err)

	run(w, 1)
	assert.InDelta(t, 1.5, held.Transform.Position.X, 0.1)
	assert.InDelta(t, 5, held.Transform.Position.Y, 0.1)
	q := held.Transform.Rotation
	assert.InDelta(t, 1, math32.Abs(q.W), 0.01)
}

func TestHingeMotorSpins(t *testing.T) {
	w := newWorld(t)
	w.Ground = false
	w.Gravity = rl.Vector3{}
	base := addBody(w, 0, box(0.5), rl.Vector3{})
	rotor := addBody(w, 1, box(0.5), rl.Vector3{})

	id, err := w.CreateConstraint(engine.ConstraintHinge, base.ID, rl.Vector3{}, rotor.ID, rl.Vector3{},
		engine.ConstraintParams{MaxForce: 1000, Stiffness: 1e6, AxisA: rl.Vector3{Y: 1}, AxisB: rl.Vector3{Y: 1}})
	require.NoError(t, err)

	w.SetMotorSpeed(id, 2)
	w.SetMotorMaxForce(id, 100)
	run(w, 1)
	assert.InDelta(t, 0, rotor.AngularVelocity.Y, 1e-6, "a disabled motor does nothing")

	w.EnableMotor(id)
	run(w, 1)
	assert.InDelta(t, 2, rotor.AngularVelocity.Y, 0.1)
	assert.InDelta(t, 0, rotor.AngularVelocity.X, 0.05)
	assert.InDelta(t, 0, rotor.AngularVelocity.Z, 0.05)
	assert.False(t, rotor.Sleeping(), "driven bodies stay awake")

	w.DisableMotor(id)
	assert.False(t, w.Constraint(id).MotorEnabled)
}

func TestJoinedBodiesDoNotCollide(t *testing.T) {
	w := newWorld(t)
	w.Ground = false
	w.Gravity = rl.Vector3{}
	a := addBody(w, 1, box(0.5), rl.Vector3{})
	b := addBody(w, 1, box(0.5), rl.Vector3{X: 0.5})

	_, err := w.CreateConstraint(engine.ConstraintPoint, a.ID, rl.Vector3{X: 0.25}, b.ID, rl.Vector3{X: -0.25},
		engine.ConstraintParams{Stiffness: 1e6})
	require.NoError(t, err)

	w.Step(h, h)
	assert.InDelta(t, 0, a.Transform.Position.X, 1e-4)
	assert.InDelta(t, 0.5, b.Transform.Position.X, 1e-4)
}

func TestOverlappingBodiesSeparate(t *testing.T) {
	w := newWorld(t)
	w.Ground = false
	w.Gravity = rl.Vector3{}
	a := addBody(w, 1, box(0.5), rl.Vector3{})
	b := addBody(w, 1, box(0.5), rl.Vector3{X: 0.8})

	w.Step(h, h)
	gap := b.Transform.Position.X - a.Transform.Position.X
	assert.GreaterOrEqual(t, gap, float32(0.999))
}

func TestCreateConstraintRejects(t *testing.T) {
	w := newWorld(t)
	a := addBody(w, 1, box(0.5), rl.Vector3{})

	_, err := w.CreateConstraint(engine.ConstraintPoint, a.ID, rl.Vector3{}, 99, rl.Vector3{}, engine.ConstraintParams{})
	assert.ErrorIs(t, err, engine.ErrNotFound)

	_, err = w.CreateConstraint(engine.ConstraintPoint, a.ID, rl.Vector3{}, a.ID, rl.Vector3{}, engine.ConstraintParams{})
	assert.ErrorIs(t, err, engine.ErrInvalidEndpoints)
}

func TestRemoveFromWorldDropsConstraints(t *testing.T) {
	w := newWorld(t)
	a := addBody(w, 1, box(0.5), rl.Vector3{})
	b := addBody(w, 1, box(0.5), rl.Vector3{X: 2})
	id, err := w.CreateConstraint(engine.ConstraintPoint, a.ID, rl.Vector3{}, b.ID, rl.Vector3{}, engine.ConstraintParams{})
	require.NoError(t, err)

	w.RemoveFromWorld(b.ID)
	assert.Nil(t, w.Constraint(id))
	assert.Nil(t, w.Body(b.ID))
	assert.Equal(t, 1, w.BodyCount())
	assert.Empty(t, w.joined)
}

func TestReplaceShapeKeepsBodyInWorld(t *testing.T) {
	w := newWorld(t)
	b := addBody(w, 2, box(0.5), rl.Vector3{Y: 1})

	err := w.ReplaceShape(b.ID, engine.Shape{Type: engine.ShapeBox}, rl.Vector3{})
	require.ErrorIs(t, err, engine.ErrInvalidGeometry)
	assert.True(t, b.inWorld)
	assert.Equal(t, 1, w.BodyCount())
	assert.Equal(t, box(0.5), b.Shape, "a rejected shape changes nothing")

	sphere := engine.Shape{Type: engine.ShapeSphere, Radius: 1}
	require.NoError(t, w.ReplaceShape(b.ID, sphere, rl.Vector3{Y: 0.2}))
	assert.True(t, b.inWorld)
	assert.Equal(t, 1, w.BodyCount())
	assert.Equal(t, sphere, b.Shape)
	assert.Equal(t, rl.Vector3{Y: 0.2}, b.Offset)
	assert.InDelta(t, 1/(0.4*2), b.invInertia.X, 1e-5)

	assert.ErrorIs(t, w.ReplaceShape(42, sphere, rl.Vector3{}), engine.ErrNotFound)
}

func TestSetMassRecomputesMassProperties(t *testing.T) {
	w := newWorld(t)
	b := addBody(w, 1, box(0.5), rl.Vector3{})

	w.SetMass(b.ID, 4)
	assert.InDelta(t, 0.25, b.invMass, 1e-6)

	w.SetMass(b.ID, 0)
	assert.False(t, b.Dynamic())
}

func TestAABBResolve(t *testing.T) {
	a := AABB{Max: rl.Vector3{X: 1, Y: 1, Z: 1}}
	b := AABB{Min: rl.Vector3{X: 0.8}, Max: rl.Vector3{X: 1.8, Y: 1, Z: 1}}
	push := a.Resolve(b)
	assert.InDelta(t, -0.2, push.X, 1e-6)
	assert.Zero(t, push.Y)
	assert.Zero(t, push.Z)

	far := AABB{Min: rl.Vector3{X: 5}, Max: rl.Vector3{X: 6, Y: 1, Z: 1}}
	assert.Equal(t, rl.Vector3{}, a.Resolve(far))
}

func TestBoundsOfRotatedBox(t *testing.T) {
	w := newWorld(t)
	b := addBody(w, 1, box(0.5), rl.Vector3{})
	b.Transform.Rotation = rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, math32.Pi/4)

	bounds := boundsOf(b)
	assert.InDelta(t, math32.Sqrt2/2, bounds.Max.X, 1e-5)
	assert.InDelta(t, 0.5, bounds.Max.Y, 1e-5)
}

func TestRaycast(t *testing.T) {
	w := newWorld(t)
	cube := addBody(w, 1, box(0.5), rl.Vector3{Y: 1})
	addBody(w, 1, engine.Shape{Type: engine.ShapeSphere, Radius: 0.5}, rl.Vector3{Y: 1, Z: 5})

	hit, ok := w.Raycast(rl.Vector3{Y: 1, Z: -5}, rl.Vector3{Z: 1}, 100)
	require.True(t, ok)
	assert.Equal(t, cube.ID, hit.Body)
	assert.InDelta(t, 4.5, hit.Distance, 1e-4)
	assert.InDelta(t, -1, hit.Normal.Z, 1e-4)

	_, ok = w.Raycast(rl.Vector3{Y: 1, Z: -5}, rl.Vector3{Z: 1}, 2)
	assert.False(t, ok, "beyond max distance")

	_, ok = w.Raycast(rl.Vector3{X: 3, Y: 1, Z: -5}, rl.Vector3{Z: 1}, 100)
	assert.False(t, ok)
}

func TestRayBoxRotated(t *testing.T) {
	tr := engine.Transform{Rotation: rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, math32.Pi/4)}
	hit, ok := RayBox(rl.Vector3{Z: -5}, rl.Vector3{Z: 1}, tr, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}, 100)
	require.True(t, ok)
	assert.InDelta(t, 5-math32.Sqrt2/2, hit.Distance, 1e-4)
}

func TestRaySphereFromInside(t *testing.T) {
	hit, ok := RaySphere(rl.Vector3{}, rl.Vector3{X: 1}, rl.Vector3{}, 2, 100)
	require.True(t, ok)
	assert.InDelta(t, 2, hit.Distance, 1e-5)
	assertNear(t, rl.Vector3{X: 1}, hit.Normal)
}

func assertNear(t *testing.T, want, got rl.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4)
	assert.InDelta(t, want.Y, got.Y, 1e-4)
	assert.InDelta(t, want.Z, got.Z, 1e-4)
}
