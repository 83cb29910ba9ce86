// Package physics is a small rigid-body world: boxes, spheres and cylinders
// under gravity, resting on a ground plane, joined by point, lock and
// motorized hinge constraints.
package physics

import (
	"fmt"
	"projector/internal/config"
	"projector/internal/engine"
	"projector/internal/log"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

var _ engine.Physics = (*World)(nil)

// Spatial grid cell size - bodies within same or neighboring cells are checked
const CellSize = 5.0

// Cell key for spatial hashing
type CellKey struct {
	X, Y, Z int
}

func posToCell(pos rl.Vector3) CellKey {
	return CellKey{
		X: int(math32.Floor(pos.X / CellSize)),
		Y: int(math32.Floor(pos.Y / CellSize)),
		Z: int(math32.Floor(pos.Z / CellSize)),
	}
}

// pairKey orders two body ids so either argument order finds the same pair.
type pairKey struct {
	A, B engine.BodyID
}

func makePair(a, b engine.BodyID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{A: a, B: b}
}

type World struct {
	Gravity     rl.Vector3
	GroundY     float32
	Ground      bool
	Iterations  int
	MaxSubSteps int

	bodies      map[engine.BodyID]*Body
	order       []*Body // bodies in the world, in insertion order
	constraints map[engine.ConstraintID]*Constraint
	corder      []*Constraint
	// bodies joined by a constraint do not collide with each other
	joined map[pairKey]int
	grid   map[CellKey][]*Body

	next        uint32
	accumulator float32
	log         log.Log
}

func NewWorld(cfg config.Physics, logger log.Log) *World {
	return &World{
		Gravity:     rl.Vector3{Y: cfg.Gravity},
		GroundY:     cfg.GroundY,
		Ground:      true,
		Iterations:  max(cfg.SolverIterations, 1),
		MaxSubSteps: max(cfg.MaxSubSteps, 1),
		bodies:      make(map[engine.BodyID]*Body),
		constraints: make(map[engine.ConstraintID]*Constraint),
		joined:      make(map[pairKey]int),
		grid:        make(map[CellKey][]*Body),
		log:         logger.With(log.String("component", "physics")),
	}
}

func (w *World) mint() uint32 {
	w.next++
	return w.next
}

// Body returns the body for id, or nil.
func (w *World) Body(id engine.BodyID) *Body {
	return w.bodies[id]
}

func (w *World) Constraint(id engine.ConstraintID) *Constraint {
	return w.constraints[id]
}

// BodyCount is the number of bodies in the world.
func (w *World) BodyCount() int {
	return len(w.order)
}

func (w *World) CreateBody(mass float32, shape engine.Shape, t engine.Transform) engine.BodyID {
	id := engine.BodyID(w.mint())
	w.bodies[id] = newBody(id, mass, shape, t)
	return id
}

func (w *World) AddToWorld(id engine.BodyID) {
	b := w.bodies[id]
	if b == nil || b.inWorld {
		return
	}
	b.inWorld = true
	w.order = append(w.order, b)
}

func (w *World) detach(b *Body) {
	if !b.inWorld {
		return
	}
	b.inWorld = false
	for i, o := range w.order {
		if o == b {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// RemoveFromWorld releases the body. Constraints still attached to it are
// removed too.
func (w *World) RemoveFromWorld(id engine.BodyID) {
	b := w.bodies[id]
	if b == nil {
		return
	}
	for _, c := range append([]*Constraint(nil), w.corder...) {
		if c.A == b || c.B == b {
			w.log.Warn("constraint outlived its body", log.Int("constraint", int(c.ID)), log.Int("body", int(id)))
			w.RemoveConstraint(c.ID)
		}
	}
	w.detach(b)
	delete(w.bodies, id)
}

func (w *World) BodyTransform(id engine.BodyID) engine.Transform {
	if b := w.bodies[id]; b != nil {
		return b.Transform
	}
	return engine.NewTransform(rl.Vector3{})
}

func (w *World) SetBodyTransform(id engine.BodyID, t engine.Transform) {
	if b := w.bodies[id]; b != nil {
		b.Transform = t
	}
}

func (w *World) SetBodyType(id engine.BodyID, typ engine.BodyType) {
	b := w.bodies[id]
	if b == nil {
		return
	}
	b.Type = typ
	if typ == engine.BodyStatic {
		b.resetVelocity()
	}
	b.updateMassProperties()
}

func (w *World) SetMass(id engine.BodyID, mass float32) {
	b := w.bodies[id]
	if b == nil {
		return
	}
	b.Mass = mass
	b.updateMassProperties()
}

func (w *World) ResetVelocity(id engine.BodyID) {
	if b := w.bodies[id]; b != nil {
		b.resetVelocity()
	}
}

func (w *World) Sleep(id engine.BodyID) {
	if b := w.bodies[id]; b != nil {
		b.sleeping = true
		b.resetVelocity()
	}
}

func (w *World) WakeUp(id engine.BodyID) {
	if b := w.bodies[id]; b != nil {
		b.Wake()
	}
}

// ReplaceShape takes the body out of the world, swaps its shape and puts it
// back. The body is back in the world on every return path.
func (w *World) ReplaceShape(id engine.BodyID, shape engine.Shape, offset rl.Vector3) error {
	b := w.bodies[id]
	if b == nil {
		return fmt.Errorf("replace shape: body %d: %w", id, engine.ErrNotFound)
	}
	if b.inWorld {
		w.detach(b)
		defer w.AddToWorld(id)
	}

	if err := validShape(shape); err != nil {
		return fmt.Errorf("replace shape: body %d: %w", id, err)
	}
	if !engine.Finite(offset) {
		return fmt.Errorf("replace shape: body %d: %w: non-finite offset", id, engine.ErrInvalidGeometry)
	}
	b.Shape = shape
	b.Offset = offset
	b.updateMassProperties()
	b.Wake()
	return nil
}

func validShape(s engine.Shape) error {
	switch s.Type {
	case engine.ShapeSphere:
		if !(s.Radius > 0) {
			return fmt.Errorf("%w: sphere radius %v", engine.ErrInvalidGeometry, s.Radius)
		}
	case engine.ShapeBox, engine.ShapeCylinder:
		h := s.HalfExtents
		if !(h.X > 0 && h.Y > 0 && h.Z > 0) {
			return fmt.Errorf("%w: half extents %v", engine.ErrInvalidGeometry, h)
		}
	default:
		return fmt.Errorf("%w: shape type %d", engine.ErrInvalidGeometry, s.Type)
	}
	return nil
}

func (w *World) CreateConstraint(kind engine.ConstraintKind, a engine.BodyID, localA rl.Vector3, b engine.BodyID, localB rl.Vector3, p engine.ConstraintParams) (engine.ConstraintID, error) {
	ba, bb := w.bodies[a], w.bodies[b]
	if ba == nil || bb == nil {
		return 0, fmt.Errorf("create %s constraint: %w: bodies %d, %d", kind, engine.ErrNotFound, a, b)
	}
	if ba == bb {
		return 0, fmt.Errorf("create %s constraint: %w: body %d joined to itself", kind, engine.ErrInvalidEndpoints, a)
	}
	if !engine.Finite(localA) || !engine.Finite(localB) {
		return 0, fmt.Errorf("create %s constraint: %w", kind, engine.ErrInvalidGeometry)
	}

	id := engine.ConstraintID(w.mint())
	c := newConstraint(id, kind, ba, localA, bb, localB, p)
	w.constraints[id] = c
	w.corder = append(w.corder, c)
	w.joined[makePair(a, b)]++
	return id, nil
}

func (w *World) RemoveConstraint(id engine.ConstraintID) {
	c := w.constraints[id]
	if c == nil {
		return
	}
	delete(w.constraints, id)
	for i, o := range w.corder {
		if o == c {
			w.corder = append(w.corder[:i], w.corder[i+1:]...)
			break
		}
	}
	key := makePair(c.A.ID, c.B.ID)
	if w.joined[key]--; w.joined[key] <= 0 {
		delete(w.joined, key)
	}
	c.A.Wake()
	c.B.Wake()
}

func (w *World) SetConstraintStiffness(id engine.ConstraintID, stiffness, relaxation float32) {
	if c := w.constraints[id]; c != nil {
		c.Stiffness = stiffness
		c.Relaxation = relaxation
	}
}

func (w *World) EnableMotor(id engine.ConstraintID) {
	if c := w.constraints[id]; c != nil && c.Kind == engine.ConstraintHinge {
		c.MotorEnabled = true
		c.A.Wake()
		c.B.Wake()
	}
}

func (w *World) DisableMotor(id engine.ConstraintID) {
	if c := w.constraints[id]; c != nil {
		c.MotorEnabled = false
	}
}

func (w *World) SetMotorSpeed(id engine.ConstraintID, speed float32) {
	if c := w.constraints[id]; c != nil {
		c.MotorSpeed = speed
	}
}

func (w *World) SetMotorMaxForce(id engine.ConstraintID, force float32) {
	if c := w.constraints[id]; c != nil {
		c.MotorMaxForce = force
	}
}

// Step advances the world by elapsed seconds in fixed substeps. At most
// MaxSubSteps run per call; time beyond that is dropped so a slow frame
// cannot snowball.
func (w *World) Step(fixedTimestep, elapsed float32) {
	if fixedTimestep <= 0 || elapsed <= 0 {
		return
	}
	w.accumulator += elapsed
	steps := 0
	for w.accumulator >= fixedTimestep && steps < w.MaxSubSteps {
		w.step(fixedTimestep)
		w.accumulator -= fixedTimestep
		steps++
	}
	if steps == w.MaxSubSteps && w.accumulator >= fixedTimestep {
		w.log.Debug("physics falling behind", log.Float32("dropped", w.accumulator))
		w.accumulator = 0
	}
}

func (w *World) step(h float32) {
	// 1. Forces
	for _, b := range w.order {
		if !b.Dynamic() || b.sleeping {
			continue
		}
		b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(w.Gravity, h))
		b.Velocity = rl.Vector3Scale(b.Velocity, clamp(1-b.LinearDamping*h, 0, 1))
		b.AngularVelocity = rl.Vector3Scale(b.AngularVelocity, clamp(1-b.AngularDamping*h, 0, 1))
	}

	// 2. Constraints
	w.wakeJoined()
	for _, c := range w.corder {
		c.motorImpulse = 0
	}
	for i := 0; i < w.Iterations; i++ {
		for _, c := range w.corder {
			if c.A.inWorld && c.B.inWorld {
				c.solve(h)
			}
		}
	}

	// 3. Integrate
	for _, b := range w.order {
		if !b.Dynamic() || b.sleeping {
			continue
		}
		b.Transform.Position = rl.Vector3Add(b.Transform.Position, rl.Vector3Scale(b.Velocity, h))
		b.Transform.Rotation = integrateRotation(b.Transform.Rotation, b.AngularVelocity, h)
	}

	// 4. Contacts
	w.collide()

	// 5. Sleep
	driven := make(map[*Body]bool)
	for _, c := range w.corder {
		if c.Driven() {
			driven[c.A], driven[c.B] = true, true
		}
	}
	for _, b := range w.order {
		if b.Dynamic() && !driven[b] {
			b.trySleep(h)
		}
	}
}

// wakeJoined wakes sleeping bodies held by a constraint to an awake one.
func (w *World) wakeJoined() {
	for _, c := range w.corder {
		awakeA := c.A.Dynamic() && !c.A.sleeping
		awakeB := c.B.Dynamic() && !c.B.sleeping
		switch {
		case c.Driven():
			c.A.Wake()
			c.B.Wake()
		case awakeA && c.B.sleeping:
			c.B.Wake()
		case awakeB && c.A.sleeping:
			c.A.Wake()
		}
	}
}

// rebuildGrid clears and repopulates the spatial hash grid with dynamic bodies
func (w *World) rebuildGrid() {
	for k := range w.grid {
		delete(w.grid, k)
	}
	for _, b := range w.order {
		if b.Dynamic() {
			cell := posToCell(b.center())
			w.grid[cell] = append(w.grid[cell], b)
		}
	}
}

// neighbors returns all bodies in the same cell and the 26 around it
func (w *World) neighbors(b *Body) []*Body {
	cell := posToCell(b.center())
	var out []*Body
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				out = append(out, w.grid[CellKey{cell.X + dx, cell.Y + dy, cell.Z + dz}]...)
			}
		}
	}
	return out
}

func (w *World) collide() {
	w.rebuildGrid()
	checked := make(map[pairKey]bool)

	for _, b := range w.order {
		if !b.Dynamic() {
			continue
		}
		for _, other := range w.neighbors(b) {
			if other == b {
				continue
			}
			key := makePair(b.ID, other.ID)
			if checked[key] {
				continue
			}
			checked[key] = true
			w.resolvePair(b, other)
		}
	}

	// dynamic vs static
	for _, b := range w.order {
		if !b.Dynamic() {
			continue
		}
		for _, s := range w.order {
			if s.Dynamic() {
				continue
			}
			w.resolvePair(b, s)
		}
		w.resolveGround(b)
	}
}

func (w *World) resolvePair(a, b *Body) {
	if a.sleeping && (b.sleeping || !b.Dynamic()) {
		return
	}
	if w.joined[makePair(a.ID, b.ID)] > 0 {
		return
	}

	var push rl.Vector3
	if a.Shape.Type == engine.ShapeSphere && b.Shape.Type == engine.ShapeSphere {
		diff := rl.Vector3Subtract(a.center(), b.center())
		dist := rl.Vector3Length(diff)
		minDist := a.Shape.Radius + b.Shape.Radius
		if dist >= minDist || dist < 0.0001 {
			return
		}
		push = rl.Vector3Scale(diff, (minDist-dist)/dist)
	} else {
		push = boundsOf(a).Resolve(boundsOf(b))
	}
	pushLen := rl.Vector3Length(push)
	if pushLen < 0.0001 {
		return
	}

	// Split the push by inverse mass
	total := a.invMass + b.invMass
	if total == 0 {
		return
	}
	a.Transform.Position = rl.Vector3Add(a.Transform.Position, rl.Vector3Scale(push, a.invMass/total))
	b.Transform.Position = rl.Vector3Subtract(b.Transform.Position, rl.Vector3Scale(push, b.invMass/total))

	normal := rl.Vector3Scale(push, 1/pushLen)
	contact := overlapCenter(boundsOf(a), boundsOf(b))
	w.impulse(a, b, normal, contact)
}

// overlapCenter is the middle of the region two boxes share.
func overlapCenter(a, b AABB) rl.Vector3 {
	return rl.Vector3{
		X: (max(a.Min.X, b.Min.X) + min(a.Max.X, b.Max.X)) / 2,
		Y: (max(a.Min.Y, b.Min.Y) + min(a.Max.Y, b.Max.Y)) / 2,
		Z: (max(a.Min.Z, b.Min.Z) + min(a.Max.Z, b.Max.Z)) / 2,
	}
}

// resolveGround keeps the body above the ground plane.
func (w *World) resolveGround(b *Body) {
	if !w.Ground || b.sleeping {
		return
	}

	var depth float32
	var contact rl.Vector3
	if b.Shape.Type == engine.ShapeSphere {
		c := b.center()
		depth = w.GroundY - (c.Y - b.Shape.Radius)
		contact = rl.Vector3{X: c.X, Y: w.GroundY, Z: c.Z}
	} else {
		pts := corners(b)
		lowest := pts[0].Y
		for _, p := range pts[1:] {
			lowest = min(lowest, p.Y)
		}
		depth = w.GroundY - lowest
		// average the corners touching the plane
		n := 0
		for _, p := range pts {
			if p.Y <= lowest+0.01 {
				contact = rl.Vector3Add(contact, p)
				n++
			}
		}
		contact = rl.Vector3Scale(contact, 1/float32(n))
		contact.Y = w.GroundY
	}
	if depth <= 0 {
		return
	}

	b.Transform.Position.Y += depth
	w.impulse(b, nil, rl.Vector3{Y: 1}, contact)
}

// impulse applies a bounce and friction impulse at contact along normal,
// which points from b toward a. A nil b is the immovable ground.
func (w *World) impulse(a, b *Body, normal, contact rl.Vector3) {
	rA := rl.Vector3Subtract(contact, a.Transform.Position)
	relVel := a.pointVelocity(rA)
	k := a.invMass + angularMass(a, rA, normal)
	bounciness, friction := a.Bounciness, a.Friction

	var rB rl.Vector3
	if b != nil {
		rB = rl.Vector3Subtract(contact, b.Transform.Position)
		relVel = rl.Vector3Subtract(relVel, b.pointVelocity(rB))
		k += b.invMass + angularMass(b, rB, normal)
		bounciness = (a.Bounciness + b.Bounciness) / 2
		friction = (a.Friction + b.Friction) / 2

		// Wake sleeping bodies only if the hit is hard enough
		if rl.Vector3Length(relVel) > SleepVelocityThreshold*2 {
			a.Wake()
			b.Wake()
		}
	}

	velAlongNormal := rl.Vector3DotProduct(relVel, normal)
	// Only resolve if moving toward each other
	if velAlongNormal > 0 || k <= 0 {
		return
	}
	j := -(1 + bounciness) * velAlongNormal / k
	p := rl.Vector3Scale(normal, j)
	a.applyImpulse(p, rA)
	if b != nil {
		b.applyImpulse(rl.Vector3Negate(p), rB)
	}

	tangent := rl.Vector3Subtract(relVel, rl.Vector3Scale(normal, velAlongNormal))
	slide := rl.Vector3Length(tangent)
	if slide < 0.0001 {
		return
	}
	t := rl.Vector3Scale(tangent, 1/slide)
	kt := a.invMass + angularMass(a, rA, t)
	if b != nil {
		kt += b.invMass + angularMass(b, rB, t)
	}
	if kt <= 0 {
		return
	}
	jt := min(slide/kt, friction*j)
	pt := rl.Vector3Scale(t, -jt)
	a.applyImpulse(pt, rA)
	if b != nil {
		b.applyImpulse(rl.Vector3Negate(pt), rB)
	}
}
