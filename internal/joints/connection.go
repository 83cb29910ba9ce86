package joints

import (
	"projector/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Kind tags a Connection variant.
type Kind int

const (
	KindStick Kind = iota
	KindMotor
	KindGlue
	KindDualMotor
)

func (k Kind) String() string {
	switch k {
	case KindStick:
		return "stick"
	case KindMotor:
		return "motor"
	case KindGlue:
		return "glue"
	case KindDualMotor:
		return "dual-motor"
	}
	return "unknown"
}

// Connection is a joint binding two entities.
type Connection interface {
	ID() int
	Kind() Kind
	// Endpoints returns the two joined entities. Either may be nil for a
	// dual-motor link that is not fully attached.
	Endpoints() (a, b *engine.Entity)
	Involves(e *engine.Entity) bool
}

var (
	_ Connection = (*Stick)(nil)
	_ Connection = (*Motor)(nil)
	_ Connection = (*Glue)(nil)
	_ Connection = (*DualMotorLink)(nil)
)

// Link holds what sticks, motors and glues share: two endpoints, the
// attachment points in each endpoint's local frame, and a line visual.
type Link struct {
	id      int
	A, B    *engine.Entity
	OffsetA rl.Vector3
	OffsetB rl.Vector3
	Line    engine.LineID
}

func (l *Link) ID() int { return l.id }

func (l *Link) Endpoints() (a, b *engine.Entity) { return l.A, l.B }

func (l *Link) Involves(e *engine.Entity) bool {
	return e != nil && (l.A == e || l.B == e)
}

// WorldPoints returns both attachment points in world space.
func (l *Link) WorldPoints() (a, b rl.Vector3) {
	return l.A.Transform.Apply(l.OffsetA), l.B.Transform.Apply(l.OffsetB)
}

type Stick struct {
	Link
	Stiffness  float32 // UI scale, 0-100
	Rigid      bool
	Constraint engine.ConstraintID
}

func (*Stick) Kind() Kind { return KindStick }

type Motor struct {
	Link
	Stiffness  float32
	Rigid      bool
	Speed      float32 // rad/s, signed
	Force      float32 // max torque
	AxisLocal  rl.Vector3 // hinge axis in A's frame
	Constraint engine.ConstraintID
	Arrow      engine.LineID
}

func (*Motor) Kind() Kind { return KindMotor }

// Axis returns the hinge axis in world space.
func (m *Motor) Axis() rl.Vector3 {
	return m.A.Transform.ApplyDirection(m.AxisLocal)
}

// Glue holds B (the follower) to A (the leader).
type Glue struct {
	Link
	Constraints [2]engine.ConstraintID
	// Relative is B's pose in A's frame. Nil when a scene file did not carry one.
	Relative *engine.Transform
}

func (*Glue) Kind() Kind { return KindGlue }

func (g *Glue) Leader() *engine.Entity   { return g.A }
func (g *Glue) Follower() *engine.Entity { return g.B }

// CubeLink is one attached cube of a dual-motor housing.
type CubeLink struct {
	Cube   engine.Cube
	Target *engine.Entity
	Lock   engine.ConstraintID
}

// DualMotorLink couples two entities through a dual-motor housing. Its id is
// the housing entity's id.
type DualMotorLink struct {
	Housing *engine.Entity
	Cubes   [2]*CubeLink
	Hinge   engine.ConstraintID
	Speed   float32
	Force   float32
}

func (d *DualMotorLink) ID() int { return d.Housing.ID }

func (*DualMotorLink) Kind() Kind { return KindDualMotor }

func (d *DualMotorLink) Endpoints() (a, b *engine.Entity) {
	return d.Target(engine.CubeA), d.Target(engine.CubeB)
}

func (d *DualMotorLink) Involves(e *engine.Entity) bool {
	if e == nil {
		return false
	}
	if d.Housing == e {
		return true
	}
	for _, c := range d.Cubes {
		if c != nil && c.Target == e {
			return true
		}
	}
	return false
}

func (d *DualMotorLink) Cube(c engine.Cube) *CubeLink {
	if !c.Valid() {
		return nil
	}
	return d.Cubes[c-1]
}

func (d *DualMotorLink) Target(c engine.Cube) *engine.Entity {
	if link := d.Cube(c); link != nil {
		return link.Target
	}
	return nil
}

// FreeCube returns the first unattached cube.
func (d *DualMotorLink) FreeCube() (engine.Cube, bool) {
	for _, c := range []engine.Cube{engine.CubeA, engine.CubeB} {
		if d.Cube(c) == nil {
			return c, true
		}
	}
	return 0, false
}

func (d *DualMotorLink) Attached() int {
	n := 0
	for _, c := range d.Cubes {
		if c != nil {
			n++
		}
	}
	return n
}

// CubeWorld returns the cube's center in world space.
func (d *DualMotorLink) CubeWorld(c engine.Cube) rl.Vector3 {
	return d.Housing.Transform.Apply(d.Housing.Dims.CubeOffset(c))
}
