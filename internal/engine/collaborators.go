package engine

import rl "github.com/gen2brain/raylib-go/raylib"

// Handles are opaque ids minted by the collaborators. Zero means none.
type (
	NodeID       uint32
	LineID       uint32
	BodyID       uint32
	ConstraintID uint32
)

// Geometry is the renderer's recipe for an entity node.
type Geometry struct {
	Kind      Kind
	Dims      Dimensions
	Color     rl.Color
	AssetPath string
	Indicator bool // wireframe overlay drawn around a fixed entity
}

type LineStyle int

const (
	LineStick LineStyle = iota
	LineRigidStick
	LineMotor
	LineRigidMotor
	LineGlue
	LinePreview
	LineArrow
)

// PickHit is one node under the cursor, nearest first.
type PickHit struct {
	Node     NodeID
	Point    rl.Vector3
	Distance float32
}

// Renderer is the visual scene the editor drives.
type Renderer interface {
	CreateNode(g Geometry) NodeID
	// SetGeometry rebuilds a node's mesh in place, keeping its id.
	SetGeometry(n NodeID, g Geometry)
	SetTransform(n NodeID, t Transform, scale rl.Vector3)
	SetColor(n NodeID, c rl.Color)
	AddToScene(n NodeID)
	RemoveFromScene(n NodeID)

	PickAt(screen rl.Vector2) []PickHit

	CreateLine(a, b rl.Vector3, style LineStyle) LineID
	SetLine(l LineID, a, b rl.Vector3)
	// CreateArrow draws from origin along dir; SetLine on an arrow takes origin and tip.
	CreateArrow(origin, dir rl.Vector3) LineID
	RemoveLine(l LineID)
}

type ShapeType int

const (
	ShapeBox ShapeType = iota
	ShapeSphere
	ShapeCylinder
)

// Shape is a collision shape centered on the body, cylinders along local Y.
type Shape struct {
	Type        ShapeType
	HalfExtents rl.Vector3
	Radius      float32
}

type BodyType int

const (
	BodyDynamic BodyType = iota
	BodyStatic
)

type ConstraintKind int

const (
	ConstraintPoint ConstraintKind = iota
	ConstraintLock
	ConstraintHinge
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintPoint:
		return "point"
	case ConstraintLock:
		return "lock"
	case ConstraintHinge:
		return "hinge"
	}
	return "unknown"
}

// ConstraintParams tunes a constraint. Axes are in each body's local frame.
type ConstraintParams struct {
	MaxForce   float32
	Stiffness  float32
	Relaxation float32
	AxisA      rl.Vector3
	AxisB      rl.Vector3
}

// Physics is the rigid-body world the editor drives.
type Physics interface {
	CreateBody(mass float32, shape Shape, t Transform) BodyID
	AddToWorld(b BodyID)
	RemoveFromWorld(b BodyID)

	BodyTransform(b BodyID) Transform
	SetBodyTransform(b BodyID, t Transform)
	SetBodyType(b BodyID, typ BodyType)
	// SetMass changes the mass and recomputes mass properties.
	SetMass(b BodyID, mass float32)
	ResetVelocity(b BodyID)
	Sleep(b BodyID)
	WakeUp(b BodyID)
	// ReplaceShape swaps the body's shape, keeping it in the world on every exit path.
	ReplaceShape(b BodyID, shape Shape, offset rl.Vector3) error

	CreateConstraint(kind ConstraintKind, a BodyID, localA rl.Vector3, b BodyID, localB rl.Vector3, p ConstraintParams) (ConstraintID, error)
	RemoveConstraint(c ConstraintID)
	SetConstraintStiffness(c ConstraintID, stiffness, relaxation float32)
	EnableMotor(c ConstraintID)
	DisableMotor(c ConstraintID)
	SetMotorSpeed(c ConstraintID, speed float32)
	SetMotorMaxForce(c ConstraintID, force float32)

	Step(fixedTimestep, elapsed float32)
}
