package engine

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Kind tags what an entity is. The string values are the scene file's "type" field.
type Kind string

const (
	KindBox       Kind = "box"
	KindSphere    Kind = "sphere"
	KindCylinder  Kind = "cylinder"
	KindCone      Kind = "cone"
	KindTorus     Kind = "torus"
	KindCar       Kind = "car"
	KindWheel     Kind = "wheel"
	KindDualMotor Kind = "dual-motor"
	KindMesh      Kind = "fbx"
)

// Kinds lists every kind the editor can create, in toolbar order.
var Kinds = []Kind{
	KindBox, KindSphere, KindCylinder, KindCone, KindTorus,
	KindCar, KindWheel, KindDualMotor, KindMesh,
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// Compound kinds have a visual subtree that is rebuilt on resize.
func (k Kind) Compound() bool {
	return k == KindCar || k == KindWheel || k == KindDualMotor
}

// Dimensions holds every size field any kind uses. Unused fields stay zero.
type Dimensions struct {
	Width      float32
	Height     float32
	Length     float32
	Radius     float32
	TubeRadius float32
}

// Dual-motor housings have a fixed size.
var DualMotorDimensions = Dimensions{Width: 0.2, Height: 0.1, Length: 0.3}

// DefaultDimensions returns the size a freshly created entity of kind k gets.
func DefaultDimensions(k Kind) Dimensions {
	switch k {
	case KindBox, KindMesh:
		return Dimensions{Width: 1, Height: 1, Length: 1}
	case KindSphere:
		return Dimensions{Radius: 0.5}
	case KindCylinder, KindCone:
		return Dimensions{Radius: 0.5, Height: 1}
	case KindTorus:
		return Dimensions{Radius: 0.5, TubeRadius: 0.2}
	case KindCar:
		return Dimensions{Width: 2, Height: 0.5, Length: 1}
	case KindWheel:
		return Dimensions{Radius: 0.4, Width: 0.2}
	case KindDualMotor:
		return DualMotorDimensions
	}
	return Dimensions{}
}

// Extents returns the full axis-aligned size of the kind's local bounding box.
func (d Dimensions) Extents(k Kind) rl.Vector3 {
	switch k {
	case KindSphere:
		return rl.Vector3{X: 2 * d.Radius, Y: 2 * d.Radius, Z: 2 * d.Radius}
	case KindCylinder, KindCone:
		return rl.Vector3{X: 2 * d.Radius, Y: d.Height, Z: 2 * d.Radius}
	case KindTorus:
		r := d.Radius + d.TubeRadius
		return rl.Vector3{X: 2 * r, Y: 2 * d.TubeRadius, Z: 2 * r}
	case KindWheel:
		// wheels roll about X
		return rl.Vector3{X: d.Width, Y: 2 * d.Radius, Z: 2 * d.Radius}
	}
	return rl.Vector3{X: d.Width, Y: d.Height, Z: d.Length}
}

// Valid reports whether every size the kind uses is positive.
func (d Dimensions) Valid(k Kind) bool {
	e := d.Extents(k)
	return e.X > 0 && e.Y > 0 && e.Z > 0
}

// Cube identifies one of a dual-motor housing's two attachment cubes.
type Cube int

const (
	CubeA Cube = 1
	CubeB Cube = 2
)

func (c Cube) String() string {
	switch c {
	case CubeA:
		return "cubeA"
	case CubeB:
		return "cubeB"
	}
	return fmt.Sprintf("cube(%d)", int(c))
}

func (c Cube) Valid() bool {
	return c == CubeA || c == CubeB
}

// CubeSize is the edge length of each attachment cube.
func (d Dimensions) CubeSize() float32 {
	return d.Height * 0.8
}

// CubeOffset is the cube's center in the housing's local frame.
func (d Dimensions) CubeOffset(c Cube) rl.Vector3 {
	x := d.Width * 0.8
	if c == CubeA {
		x = -x
	}
	return rl.Vector3{X: x}
}
