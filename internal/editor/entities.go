package editor

import (
	"fmt"
	"projector/internal/engine"
	"projector/internal/log"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/iancoleman/strcase"
)

// DefaultMass is what an entity weighs when no mass is given, in kilograms.
const DefaultMass float32 = 1

var defaultColors = map[engine.Kind]rl.Color{
	engine.KindBox:       {R: 0x44, G: 0xaa, B: 0x88, A: 255},
	engine.KindSphere:    {R: 0x88, G: 0x44, B: 0xaa, A: 255},
	engine.KindCylinder:  {R: 0xaa, G: 0x88, B: 0x44, A: 255},
	engine.KindCone:      {R: 0xaa, G: 0x44, B: 0x44, A: 255},
	engine.KindTorus:     {R: 0x44, G: 0x88, B: 0xaa, A: 255},
	engine.KindCar:       {R: 0xff, G: 0x00, B: 0x00, A: 255},
	engine.KindWheel:     {R: 0x33, G: 0x33, B: 0x33, A: 255},
	engine.KindDualMotor: {R: 0x33, G: 0x66, B: 0x99, A: 255},
	engine.KindMesh:      {R: 0xcc, G: 0xcc, B: 0xcc, A: 255},
}

// CreateParams are the entity fields as the UI enters them: grams and
// centimeters. Zero values take the kind's defaults.
type CreateParams struct {
	Name      string
	MassGrams float32
	SizeCM    engine.Dimensions
	Position  *rl.Vector3
	Color     rl.Color // zero alpha means the kind's color
	Fixed     bool
	Asset     *engine.MeshAsset
}

// EntitySpec describes an entity in scene units: meters and kilograms.
type EntitySpec struct {
	ID        int // kept when positive and free, otherwise allocated
	Kind      engine.Kind
	Name      string
	Transform engine.Transform
	Dims      engine.Dimensions
	Mass      float32
	Color     rl.Color
	Fixed     bool
	Asset     *engine.MeshAsset
	Meta      map[string]any
}

// CreateEntity spawns a new entity of kind k above the origin.
func (ed *Editor) CreateEntity(k engine.Kind, p CreateParams) (*engine.Entity, error) {
	pos := rl.Vector3{Y: ed.cfg.SpawnHeight}
	if p.Position != nil {
		pos = *p.Position
	}
	spec := EntitySpec{
		Kind:      k,
		Name:      p.Name,
		Transform: engine.NewTransform(pos),
		Dims:      ed.scaleDims(k, p.SizeCM),
		Mass:      p.MassGrams * ed.cfg.MassScale,
		Color:     p.Color,
		Fixed:     p.Fixed,
		Asset:     p.Asset,
	}
	e, err := ed.AddEntity(spec)
	if err != nil {
		ed.notifier.Notify(fmt.Sprintf("Could not create %s: %v", k, err), true)
		return nil, err
	}
	ed.notifier.Notify(fmt.Sprintf("Created %s", e.Name), false)
	return e, nil
}

func (ed *Editor) scaleDims(k engine.Kind, cm engine.Dimensions) engine.Dimensions {
	d := engine.DefaultDimensions(k)
	if k == engine.KindDualMotor {
		return d
	}
	s := ed.cfg.SizeScale
	set := func(dst *float32, v float32) {
		if v > 0 {
			*dst = v * s
		}
	}
	set(&d.Width, cm.Width)
	set(&d.Height, cm.Height)
	set(&d.Length, cm.Length)
	set(&d.Radius, cm.Radius)
	set(&d.TubeRadius, cm.TubeRadius)
	return d
}

// AddEntity builds the visual node and physics body for spec and registers
// the pair. Dual-motor housings also get their (empty) link record.
func (ed *Editor) AddEntity(spec EntitySpec) (*engine.Entity, error) {
	if _, err := engine.ParseKind(string(spec.Kind)); err != nil {
		return nil, err
	}
	dims := spec.Dims
	switch {
	case spec.Kind == engine.KindDualMotor:
		dims = engine.DualMotorDimensions
	case dims == (engine.Dimensions{}):
		dims = engine.DefaultDimensions(spec.Kind)
	}
	if !dims.Valid(spec.Kind) {
		return nil, fmt.Errorf("%w: %s dimensions %+v", engine.ErrInvalidGeometry, spec.Kind, dims)
	}
	if spec.Kind == engine.KindMesh && spec.Asset == nil {
		return nil, fmt.Errorf("%w: %s entity without a mesh", engine.ErrMissingAsset, spec.Kind)
	}

	t := spec.Transform
	if t.Rotation == (rl.Quaternion{}) {
		t.Rotation = rl.QuaternionIdentity()
	}
	if !engine.Finite(t.Position) || !engine.FiniteQuaternion(t.Rotation) {
		return nil, fmt.Errorf("%w: non-finite transform", engine.ErrInvalidGeometry)
	}

	id := spec.ID
	if id <= 0 || ed.Entities.FindByID(id) != nil {
		id = ed.Entities.NextID()
	}
	e := &engine.Entity{
		ID:        id,
		Kind:      spec.Kind,
		Name:      spec.Name,
		Transform: t,
		Dims:      dims,
		Mass:      spec.Mass,
		Color:     spec.Color,
		Fixed:     spec.Fixed,
		Asset:     spec.Asset,
		Meta:      spec.Meta,
	}
	if e.Name == "" {
		e.Name = DefaultName(e.Kind, e.ID)
	}
	if e.Mass <= 0 {
		e.Mass = DefaultMass
	}
	if e.Color.A == 0 {
		e.Color = defaultColors[e.Kind]
	}

	e.Visual = ed.renderer.CreateNode(e.Geometry())
	ed.renderer.SetTransform(e.Visual, e.Transform, e.Scale())
	ed.renderer.AddToScene(e.Visual)

	e.Body = ed.physics.CreateBody(e.BodyMass(), e.Shape(), e.Transform)
	if e.Asset != nil && e.Asset.CenterOfGravity != (rl.Vector3{}) {
		offset := rl.Vector3Negate(rl.Vector3Scale(e.Asset.CenterOfGravity, e.Scale().X))
		if err := ed.physics.ReplaceShape(e.Body, e.Shape(), offset); err != nil {
			ed.log.Warn("center of gravity not applied", log.Int("id", e.ID), log.Error(err))
		}
	}
	ed.physics.AddToWorld(e.Body)
	if e.Fixed {
		ed.physics.SetBodyType(e.Body, engine.BodyStatic)
		ed.showIndicator(e)
	}

	wasEmpty := ed.Entities.Empty()
	ed.Entities.Add(e)
	if e.Kind == engine.KindDualMotor {
		ed.Connections.AddDualMotor(e, 0, ed.cfg.DualMotorForce)
	}

	ed.log.Debug("entity created",
		log.Int("id", e.ID), log.String("kind", string(e.Kind)), log.Any("position", e.Transform.Position))
	ed.Hooks.EntityCreated.Invoke(e)
	if wasEmpty {
		ed.Hooks.EmptyChanged.Invoke(false)
	}
	return e, nil
}

// DefaultName is "<Kind> <id>", e.g. "DualMotor 4".
func DefaultName(k engine.Kind, id int) string {
	return fmt.Sprintf("%s %d", strcase.ToCamel(string(k)), id)
}

func (ed *Editor) entity(id int) (*engine.Entity, error) {
	e := ed.Entities.FindByID(id)
	if e == nil {
		return nil, fmt.Errorf("entity %d: %w", id, engine.ErrNotFound)
	}
	return e, nil
}

// DeleteEntity removes an entity and every connection that references it.
// Dual-motor links holding it on a cube are detached instead.
func (ed *Editor) DeleteEntity(id int) error {
	e, err := ed.entity(id)
	if err != nil {
		return err
	}
	if ed.auth.involves(e) {
		ed.Cancel()
	}
	ed.deselect(e)

	n := ed.Connections.RemoveEntity(e)
	ed.hideIndicator(e)
	ed.renderer.RemoveFromScene(e.Visual)
	ed.physics.RemoveFromWorld(e.Body)
	ed.Entities.Remove(e)
	delete(ed.startPoses, e.ID)

	ed.log.Debug("entity deleted", log.Int("id", e.ID), log.Int("connections", n))
	ed.Hooks.EntityDeleted.Invoke(e)
	if n > 0 {
		ed.Hooks.ConnectionsChanged.Invoke()
	}
	if ed.Entities.Empty() {
		ed.Hooks.EmptyChanged.Invoke(true)
	}
	return nil
}

// ResizeEntity replaces the entity's shape. Simple kinds update their mesh in
// place; compound kinds get a new visual node. The id, kind and pose are kept
// and connection offsets stay valid.
func (ed *Editor) ResizeEntity(id int, dims engine.Dimensions) error {
	e, err := ed.entity(id)
	if err != nil {
		return err
	}
	if !dims.Valid(e.Kind) {
		return fmt.Errorf("resize %d: %w: %+v", id, engine.ErrInvalidGeometry, dims)
	}
	prev := e.Dims
	e.Dims = dims
	if err := ed.physics.ReplaceShape(e.Body, e.Shape(), rl.Vector3{}); err != nil {
		e.Dims = prev
		return fmt.Errorf("resize %d: %w", id, err)
	}

	if e.Kind.Compound() {
		old := e.Visual
		e.Visual = ed.renderer.CreateNode(e.Geometry())
		ed.renderer.SetTransform(e.Visual, e.Transform, e.Scale())
		ed.renderer.AddToScene(e.Visual)
		ed.renderer.RemoveFromScene(old)
	} else {
		ed.renderer.SetGeometry(e.Visual, e.Geometry())
	}
	if e.FixedIndicator != 0 {
		ed.renderer.SetGeometry(e.FixedIndicator, indicatorGeometry(e))
	}

	if e.Kind == engine.KindDualMotor {
		if d := ed.Connections.DualMotor(e.ID); d != nil {
			if err := ed.Connections.Reanchor(d); err != nil {
				ed.log.Warn("dual motor reanchor failed", log.Int("id", e.ID), log.Error(err))
			}
		}
	}
	for _, g := range ed.Connections.Glues {
		if g.Leader() == e {
			ed.log.Debug("glue leader resized, relative pose kept", log.Int("glue", g.ID()), log.Int("leader", e.ID))
		}
	}

	ed.Sync()
	return nil
}

// MoveEntity translates an entity by delta.
func (ed *Editor) MoveEntity(id int, delta rl.Vector3) error {
	e, err := ed.entity(id)
	if err != nil {
		return err
	}
	return ed.setPose(e, e.Transform.Translated(delta))
}

// RotateEntity applies rot on top of the entity's current orientation.
func (ed *Editor) RotateEntity(id int, rot rl.Quaternion) error {
	e, err := ed.entity(id)
	if err != nil {
		return err
	}
	t := e.Transform
	t.Rotation = rl.QuaternionNormalize(rl.QuaternionMultiply(rot, t.Rotation))
	return ed.setPose(e, t)
}

// ApplyPosition sets an absolute position and XYZ Euler rotation in degrees.
func (ed *Editor) ApplyPosition(id int, position, eulerDeg rl.Vector3) error {
	e, err := ed.entity(id)
	if err != nil {
		return err
	}
	return ed.setPose(e, engine.Transform{
		Position: position,
		Rotation: engine.QuaternionFromEulerDegrees(eulerDeg),
	})
}

func (ed *Editor) setPose(e *engine.Entity, t engine.Transform) error {
	if ed.simulating {
		return ErrSimulating
	}
	if !engine.Finite(t.Position) || !engine.FiniteQuaternion(t.Rotation) {
		return fmt.Errorf("move %d: %w", e.ID, engine.ErrInvalidGeometry)
	}
	e.Transform = t
	ed.physics.SetBodyTransform(e.Body, t)
	ed.physics.ResetVelocity(e.Body)
	ed.Sync()
	return nil
}

func (ed *Editor) SetColor(id int, c rl.Color) error {
	e, err := ed.entity(id)
	if err != nil {
		return err
	}
	e.Color = c
	ed.renderer.SetColor(e.Visual, c)
	return nil
}

func (ed *Editor) Rename(id int, name string) error {
	e, err := ed.entity(id)
	if err != nil {
		return err
	}
	if name == "" {
		name = DefaultName(e.Kind, e.ID)
	}
	e.Name = name
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}

// SetFixed pins an entity in place (static, infinite mass) or releases it.
// The dynamic mass is kept on the entity so unfixing restores it.
func (ed *Editor) SetFixed(id int, fixed bool) error {
	e, err := ed.entity(id)
	if err != nil {
		return err
	}
	if e.Fixed == fixed {
		return nil
	}
	e.Fixed = fixed
	if fixed {
		ed.physics.SetMass(e.Body, 0)
		ed.physics.SetBodyType(e.Body, engine.BodyStatic)
		ed.physics.ResetVelocity(e.Body)
		ed.showIndicator(e)
		ed.notifier.Notify(fmt.Sprintf("%s fixed in place", e.Name), false)
	} else {
		ed.physics.SetBodyType(e.Body, engine.BodyDynamic)
		ed.physics.SetMass(e.Body, e.Mass)
		ed.physics.WakeUp(e.Body)
		ed.hideIndicator(e)
		ed.notifier.Notify(fmt.Sprintf("%s released", e.Name), false)
	}
	return nil
}

// ToggleFixed flips the fixed flag of every selected entity.
func (ed *Editor) ToggleFixed() {
	for _, e := range ed.selection.Entities {
		if err := ed.SetFixed(e.ID, !e.Fixed); err != nil {
			ed.log.Warn("toggle fixed", log.Int("id", e.ID), log.Error(err))
		}
	}
}

func indicatorGeometry(e *engine.Entity) engine.Geometry {
	g := e.Geometry()
	g.Indicator = true
	g.Color = rl.Red
	return g
}

func (ed *Editor) showIndicator(e *engine.Entity) {
	if e.FixedIndicator != 0 {
		return
	}
	e.FixedIndicator = ed.renderer.CreateNode(indicatorGeometry(e))
	ed.renderer.SetTransform(e.FixedIndicator, e.Transform, e.Scale())
	ed.renderer.AddToScene(e.FixedIndicator)
}

func (ed *Editor) hideIndicator(e *engine.Entity) {
	if e.FixedIndicator == 0 {
		return
	}
	ed.renderer.RemoveFromScene(e.FixedIndicator)
	e.FixedIndicator = 0
}
