package scenefile

import (
	"encoding/json"
	"fmt"
	"io"
	"projector/internal/editor"
	"projector/internal/engine"
	"projector/internal/joints"
)

// Export snapshots the editor's entities and connections.
func Export(ed *editor.Editor) *Document {
	doc := &Document{
		Objects:    []Object{},
		Sticks:     []Stick{},
		Motors:     []Motor{},
		Glues:      []Glue{},
		DualMotors: []json.RawMessage{},
		FbxModels:  []Object{},
		Version:    Version,
	}

	for _, e := range ed.Entities.All() {
		o := exportEntity(e)
		if e.Kind == engine.KindDualMotor {
			if d := ed.Connections.DualMotor(e.ID); d != nil {
				exportDualMotor(&o, d)
			}
		}
		if e.Kind == engine.KindMesh {
			doc.FbxModels = append(doc.FbxModels, o)
			continue
		}
		doc.Objects = append(doc.Objects, o)
	}

	for _, st := range ed.Connections.Sticks {
		stiffness := st.Stiffness
		doc.Sticks = append(doc.Sticks, Stick{
			ID:        FlexID(st.ID()),
			Object1ID: st.A.ID,
			Object2ID: st.B.ID,
			Point1:    ptr(toVec3(st.OffsetA)),
			Point2:    ptr(toVec3(st.OffsetB)),
			Stiffness: &stiffness,
			IsRigid:   st.Rigid,
		})
	}
	for _, m := range ed.Connections.Motors {
		stiffness, force := m.Stiffness, m.Force
		doc.Motors = append(doc.Motors, Motor{
			ID:        FlexID(m.ID()),
			Object1ID: m.A.ID,
			Object2ID: m.B.ID,
			Point1:    ptr(toVec3(m.OffsetA)),
			Point2:    ptr(toVec3(m.OffsetB)),
			Axis:      ptr(toVec3(m.Axis())),
			Speed:     m.Speed,
			Force:     &force,
			Stiffness: &stiffness,
			IsRigid:   m.Rigid,
		})
	}
	for _, g := range ed.Connections.Glues {
		rec := Glue{ID: FlexID(g.ID()), Object1ID: g.A.ID, Object2ID: g.B.ID}
		if g.Relative != nil {
			rec.RelativePosition = ptr(toVec3(g.Relative.Position))
			rec.RelativeQuaternion = ptr(toQuat(g.Relative.Rotation))
		}
		doc.Glues = append(doc.Glues, rec)
	}
	return doc
}

func exportEntity(e *engine.Entity) Object {
	id := e.ID
	color := engine.ColorHex(e.Color)
	o := Object{
		ID:       &id,
		Type:     string(e.Kind),
		Name:     e.Name,
		Position: toVec3(e.Transform.Position),
		Rotation: ptr(toQuat(e.Transform.Rotation)),
		Mass:     e.Mass,
		Color:    &color,
		IsFixed:  e.Fixed,
		Meta:     scrub(e.Meta),
	}
	setDims(&o, e.Kind, e.Dims)
	if e.Asset != nil {
		o.FilePath = e.Asset.Path
		o.Scale = ptr(toVec3(e.Scale()))
		o.CenterOfGravity = ptr(toVec3(e.Asset.CenterOfGravity))
	}
	return o
}

func exportDualMotor(o *Object, d *joints.DualMotorLink) {
	speed, force := d.Speed, d.Force
	o.IsDualMotor = true
	o.Speed = &speed
	o.Force = &force
	for _, c := range []engine.Cube{engine.CubeA, engine.CubeB} {
		if t := d.Target(c); t != nil {
			o.Connections = append(o.Connections, CubeConnection{CubeNumber: int(c), ObjectID: t.ID})
		}
	}
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
