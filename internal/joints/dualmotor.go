package joints

import (
	"fmt"
	"projector/internal/engine"
	"projector/internal/log"
)

// DualMotorForce is the coupler hinge's max force when none is given.
const DualMotorForce float32 = 20

// AddDualMotor registers the link record for a freshly created housing.
func (s *Store) AddDualMotor(housing *engine.Entity, speed, force float32) *DualMotorLink {
	if d := s.DualMotor(housing.ID); d != nil {
		return d
	}
	if force == 0 {
		force = DualMotorForce
	}
	d := &DualMotorLink{Housing: housing, Speed: speed, Force: force}
	s.DualMotors = append(s.DualMotors, d)
	return d
}

// DualMotor finds the link for a housing entity id.
func (s *Store) DualMotor(housingID int) *DualMotorLink {
	for _, d := range s.DualMotors {
		if d.Housing.ID == housingID {
			return d
		}
	}
	return nil
}

// Attach locks cube c of the housing to target. Re-attaching a cube replaces
// its previous lock. Once both cubes hold an entity the motorized hinge
// between the two targets is created.
func (s *Store) Attach(d *DualMotorLink, c engine.Cube, target *engine.Entity) error {
	if !c.Valid() {
		return fmt.Errorf("attach %s: %w", c, engine.ErrInvalidEndpoints)
	}
	if err := validate(d.Housing, target); err != nil {
		return fmt.Errorf("attach %s: %w", c, err)
	}
	if target.Kind == engine.KindDualMotor {
		return fmt.Errorf("attach %s: %w: cannot attach to another dual motor", c, engine.ErrInvalidEndpoints)
	}
	other := engine.CubeA
	if c == engine.CubeA {
		other = engine.CubeB
	}
	if d.Target(other) == target {
		return fmt.Errorf("attach %s: %w: both cubes on entity %d", c, engine.ErrInvalidEndpoints, target.ID)
	}

	cubeWorld := d.CubeWorld(c)
	lock, err := s.physics.CreateConstraint(engine.ConstraintLock,
		d.Housing.Body, d.Housing.Dims.CubeOffset(c),
		target.Body, target.Transform.InverseApply(cubeWorld),
		engine.ConstraintParams{Stiffness: RigidStiffness})
	if err != nil {
		return fmt.Errorf("attach %s: %w", c, err)
	}
	// The old lock goes only once its replacement exists.
	s.Detach(d, c)
	d.Cubes[c-1] = &CubeLink{Cube: c, Target: target, Lock: lock}

	s.log.Debug("dual motor cube attached",
		log.Int("housing", d.Housing.ID), log.String("cube", c.String()), log.Int("target", target.ID))

	if d.Attached() == 2 {
		return s.ensureHinge(d)
	}
	return nil
}

// ensureHinge creates the motorized hinge about the housing's long axis,
// pivoting midway between the two cubes.
func (s *Store) ensureHinge(d *DualMotorLink) error {
	if d.Hinge != 0 {
		return nil
	}
	a, b := d.Endpoints()
	if a == nil || b == nil {
		return nil
	}
	pivot := engine.Midpoint(d.CubeWorld(engine.CubeA), d.CubeWorld(engine.CubeB))
	axis := d.Housing.Transform.ApplyDirection(engine.WorldRight)
	hinge, err := s.physics.CreateConstraint(engine.ConstraintHinge,
		a.Body, a.Transform.InverseApply(pivot),
		b.Body, b.Transform.InverseApply(pivot),
		engine.ConstraintParams{
			MaxForce: d.Force,
			AxisA:    a.Transform.InverseApplyDirection(axis),
			AxisB:    b.Transform.InverseApplyDirection(axis),
		})
	if err != nil {
		return fmt.Errorf("dual motor %d hinge: %w", d.Housing.ID, err)
	}
	d.Hinge = hinge
	s.log.Debug("dual motor hinge created", log.Int("housing", d.Housing.ID))
	return nil
}

func (s *Store) removeHinge(d *DualMotorLink) {
	if d.Hinge != 0 {
		s.physics.RemoveConstraint(d.Hinge)
		d.Hinge = 0
	}
}

// Detach frees cube c, dropping the hinge first. Returns false if the cube
// was not attached.
func (s *Store) Detach(d *DualMotorLink, c engine.Cube) bool {
	link := d.Cube(c)
	if link == nil {
		return false
	}
	s.removeHinge(d)
	if link.Lock != 0 {
		s.physics.RemoveConstraint(link.Lock)
	}
	d.Cubes[c-1] = nil
	return true
}

// RemoveDualMotor drops every constraint the link owns and the record.
func (s *Store) RemoveDualMotor(d *DualMotorLink) {
	s.removeHinge(d)
	for _, c := range []engine.Cube{engine.CubeA, engine.CubeB} {
		if link := d.Cube(c); link != nil && link.Lock != 0 {
			s.physics.RemoveConstraint(link.Lock)
			link.Lock = 0
		}
	}
	d.Cubes = [2]*CubeLink{}
	s.DualMotors = without(s.DualMotors, d)
}

// Reanchor rebuilds every constraint of d from the housing's current
// geometry. Used after the housing is resized or its cubes move.
func (s *Store) Reanchor(d *DualMotorLink) error {
	targets := [2]*engine.Entity{d.Target(engine.CubeA), d.Target(engine.CubeB)}
	for i, t := range targets {
		if t != nil {
			s.Detach(d, engine.Cube(i+1))
		}
	}
	for i, t := range targets {
		if t == nil {
			continue
		}
		if err := s.Attach(d, engine.Cube(i+1), t); err != nil {
			return err
		}
	}
	return nil
}
