// Package scenefile saves and restores a whole editor scene as a flat JSON
// document. Entities are written with their ids and every cross reference is
// a plain integer id.
package scenefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"projector/internal/engine"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Version is written into every exported document.
const Version = "1.1"

type Document struct {
	Objects []Object `json:"objects"`
	Sticks  []Stick  `json:"sticks"`
	Motors  []Motor  `json:"motors"`
	Glues   []Glue   `json:"glues"`
	// DualMotors is kept for compatibility. Dual-motor state lives on the
	// housing's object record.
	DualMotors []json.RawMessage `json:"dualMotors"`
	FbxModels  []Object          `json:"fbxModels"`
	Version    string            `json:"version"`
}

type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

type Quat struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	W float32 `json:"w"`
}

func toVec3(v rl.Vector3) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func (v Vec3) Vector3() rl.Vector3 { return rl.Vector3{X: v.X, Y: v.Y, Z: v.Z} }

func toQuat(q rl.Quaternion) Quat { return Quat{X: q.X, Y: q.Y, Z: q.Z, W: q.W} }

func (q Quat) Quaternion() rl.Quaternion { return rl.Quaternion{X: q.X, Y: q.Y, Z: q.Z, W: q.W} }

// Object is one entity. Size fields are written only for the kinds that use them.
type Object struct {
	ID       *int    `json:"id"`
	Type     string  `json:"type"`
	Name     string  `json:"name,omitempty"`
	Position Vec3    `json:"position"`
	Rotation *Quat   `json:"rotation,omitempty"`
	Scale    *Vec3   `json:"scale,omitempty"`
	Mass     float32 `json:"mass"`
	Color    *uint32 `json:"color,omitempty"` // 0xRRGGBB
	IsFixed  bool    `json:"isFixed"`

	Width      float32 `json:"width,omitempty"`
	Height     float32 `json:"height,omitempty"`
	Length     float32 `json:"length,omitempty"`
	Radius     float32 `json:"radius,omitempty"`
	TubeRadius float32 `json:"tubeRadius,omitempty"`

	IsDualMotor bool             `json:"isDualMotor,omitempty"`
	Speed       *float32         `json:"speed,omitempty"`
	Force       *float32         `json:"force,omitempty"`
	Connections []CubeConnection `json:"connections,omitempty"`

	FilePath        string `json:"filePath,omitempty"`
	CenterOfGravity *Vec3  `json:"centerOfGravity,omitempty"`

	Meta map[string]any `json:"meta,omitempty"`
}

// CubeConnection records which entity a dual-motor cube holds.
type CubeConnection struct {
	CubeNumber int `json:"cubeNumber"`
	ObjectID   int `json:"objectId"`
}

// Stick points are attachment offsets in each endpoint's local frame.
type Stick struct {
	ID        FlexID   `json:"id"`
	Object1ID int      `json:"object1Id"`
	Object2ID int      `json:"object2Id"`
	Point1    *Vec3    `json:"point1"`
	Point2    *Vec3    `json:"point2"`
	Stiffness *float32 `json:"stiffness,omitempty"`
	IsRigid   bool     `json:"isRigid"`
}

type Motor struct {
	ID        FlexID `json:"id"`
	Object1ID int    `json:"object1Id"`
	Object2ID int    `json:"object2Id"`
	Point1    *Vec3  `json:"point1"`
	Point2    *Vec3  `json:"point2"`
	// Axis is informational; it is recomputed from the endpoints on import.
	Axis      *Vec3    `json:"axis,omitempty"`
	Speed     float32  `json:"speed"`
	Force     *float32 `json:"force,omitempty"`
	Stiffness *float32 `json:"stiffness,omitempty"`
	IsRigid   bool     `json:"isRigid"`
}

type Glue struct {
	ID                 FlexID `json:"id"`
	Object1ID          int    `json:"object1Id"`
	Object2ID          int    `json:"object2Id"`
	RelativePosition   *Vec3  `json:"relativePosition,omitempty"`
	RelativeQuaternion *Quat  `json:"relativeQuaternion,omitempty"`
}

// FlexID reads a connection id written either as a number or as a tagged
// string like "stick_3", and always writes a number.
type FlexID int

func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if i := strings.LastIndexByte(s, '_'); i >= 0 {
			s = s[i+1:]
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("connection id %q: %w", s, err)
		}
		*id = FlexID(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("connection id %s: %w", data, err)
	}
	*id = FlexID(f)
	return nil
}

// deniedKeys never appear in a written document. They name runtime handles
// that may point back into the scene.
var deniedKeys = map[string]struct{}{
	"constraint":     {},
	"line":           {},
	"body":           {},
	"bodies":         {},
	"world":          {},
	"physicsBody":    {},
	"fixedIndicator": {},
	"parent":         {},
	"children":       {},
}

// scrub copies m without denied keys, recursing into nested maps and slices.
func scrub(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, denied := deniedKeys[k]; denied {
			continue
		}
		out[k] = scrubValue(v)
	}
	return out
}

func scrubValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return scrub(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = scrubValue(item)
		}
		return out
	}
	return v
}

func dimsOf(o Object) engine.Dimensions {
	return engine.Dimensions{
		Width:      o.Width,
		Height:     o.Height,
		Length:     o.Length,
		Radius:     o.Radius,
		TubeRadius: o.TubeRadius,
	}
}

// setDims writes only the size fields kind k uses.
func setDims(o *Object, k engine.Kind, d engine.Dimensions) {
	switch k {
	case engine.KindBox, engine.KindCar, engine.KindDualMotor, engine.KindMesh:
		o.Width, o.Height, o.Length = d.Width, d.Height, d.Length
	case engine.KindSphere:
		o.Radius = d.Radius
	case engine.KindWheel:
		o.Radius, o.Width = d.Radius, d.Width
	case engine.KindCylinder, engine.KindCone:
		o.Radius, o.Height = d.Radius, d.Height
	case engine.KindTorus:
		o.Radius, o.TubeRadius = d.Radius, d.TubeRadius
	}
}
