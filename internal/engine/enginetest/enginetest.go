// Package enginetest provides in-memory recording implementations of the
// engine collaborators for tests.
package enginetest

import (
	"errors"
	"fmt"
	"projector/internal/engine"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	_ engine.Renderer = (*Renderer)(nil)
	_ engine.Physics  = (*Physics)(nil)
)

type Node struct {
	Geometry  engine.Geometry
	Transform engine.Transform
	Scale     rl.Vector3
	InScene   bool
}

type Line struct {
	A, B  rl.Vector3
	Style engine.LineStyle
}

// Renderer records every node and line it is asked to create.
type Renderer struct {
	next  uint32
	Nodes map[engine.NodeID]*Node
	Lines map[engine.LineID]*Line

	// Hits is returned by PickAt.
	Hits []engine.PickHit

	NodesCreated int
	LinesCreated int
}

func NewRenderer() *Renderer {
	return &Renderer{
		Nodes: make(map[engine.NodeID]*Node),
		Lines: make(map[engine.LineID]*Line),
	}
}

func (r *Renderer) CreateNode(g engine.Geometry) engine.NodeID {
	r.next++
	id := engine.NodeID(r.next)
	r.Nodes[id] = &Node{Geometry: g, Transform: engine.NewTransform(rl.Vector3{}), Scale: rl.Vector3{X: 1, Y: 1, Z: 1}}
	r.NodesCreated++
	return id
}

func (r *Renderer) SetGeometry(n engine.NodeID, g engine.Geometry) {
	if node, ok := r.Nodes[n]; ok {
		node.Geometry = g
	}
}

func (r *Renderer) SetTransform(n engine.NodeID, t engine.Transform, scale rl.Vector3) {
	if node, ok := r.Nodes[n]; ok {
		node.Transform = t
		node.Scale = scale
	}
}

func (r *Renderer) SetColor(n engine.NodeID, c rl.Color) {
	if node, ok := r.Nodes[n]; ok {
		node.Geometry.Color = c
	}
}

func (r *Renderer) AddToScene(n engine.NodeID) {
	if node, ok := r.Nodes[n]; ok {
		node.InScene = true
	}
}

func (r *Renderer) RemoveFromScene(n engine.NodeID) {
	delete(r.Nodes, n)
}

func (r *Renderer) PickAt(rl.Vector2) []engine.PickHit {
	return r.Hits
}

func (r *Renderer) CreateLine(a, b rl.Vector3, style engine.LineStyle) engine.LineID {
	r.next++
	id := engine.LineID(r.next)
	r.Lines[id] = &Line{A: a, B: b, Style: style}
	r.LinesCreated++
	return id
}

func (r *Renderer) SetLine(l engine.LineID, a, b rl.Vector3) {
	if line, ok := r.Lines[l]; ok {
		line.A, line.B = a, b
	}
}

func (r *Renderer) CreateArrow(origin, dir rl.Vector3) engine.LineID {
	return r.CreateLine(origin, rl.Vector3Add(origin, dir), engine.LineArrow)
}

func (r *Renderer) RemoveLine(l engine.LineID) {
	delete(r.Lines, l)
}

// CountLines counts live lines of the given styles, or all lines when none are given.
func (r *Renderer) CountLines(styles ...engine.LineStyle) int {
	if len(styles) == 0 {
		return len(r.Lines)
	}
	n := 0
	for _, l := range r.Lines {
		for _, s := range styles {
			if l.Style == s {
				n++
				break
			}
		}
	}
	return n
}

// Indicators returns the live fixed-indicator nodes.
func (r *Renderer) Indicators() []*Node {
	var out []*Node
	for _, n := range r.Nodes {
		if n.Geometry.Indicator {
			out = append(out, n)
		}
	}
	return out
}

type Body struct {
	Mass      float32
	Shape     engine.Shape
	Offset    rl.Vector3
	Transform engine.Transform
	Type      engine.BodyType
	InWorld   bool
	Sleeping  bool
	Resets    int
}

type Constraint struct {
	Kind         engine.ConstraintKind
	A, B         engine.BodyID
	LocalA       rl.Vector3
	LocalB       rl.Vector3
	Params       engine.ConstraintParams
	MotorEnabled bool
	Speed        float32
	MaxForce     float32
}

// Physics records bodies, constraints and every motor call.
type Physics struct {
	next        uint32
	Bodies      map[engine.BodyID]*Body
	Constraints map[engine.ConstraintID]*Constraint

	// MotorCalls logs "enable N", "disable N", "speed N", "force N".
	MotorCalls []string
	Steps      int

	// FailConstraints makes CreateConstraint return an error.
	FailConstraints bool
}

func NewPhysics() *Physics {
	return &Physics{
		Bodies:      make(map[engine.BodyID]*Body),
		Constraints: make(map[engine.ConstraintID]*Constraint),
	}
}

func (p *Physics) CreateBody(mass float32, shape engine.Shape, t engine.Transform) engine.BodyID {
	p.next++
	id := engine.BodyID(p.next)
	typ := engine.BodyDynamic
	if mass == 0 {
		typ = engine.BodyStatic
	}
	p.Bodies[id] = &Body{Mass: mass, Shape: shape, Transform: t, Type: typ}
	return id
}

func (p *Physics) AddToWorld(b engine.BodyID) {
	if body, ok := p.Bodies[b]; ok {
		body.InWorld = true
	}
}

func (p *Physics) RemoveFromWorld(b engine.BodyID) {
	delete(p.Bodies, b)
}

func (p *Physics) BodyTransform(b engine.BodyID) engine.Transform {
	if body, ok := p.Bodies[b]; ok {
		return body.Transform
	}
	return engine.NewTransform(rl.Vector3{})
}

func (p *Physics) SetBodyTransform(b engine.BodyID, t engine.Transform) {
	if body, ok := p.Bodies[b]; ok {
		body.Transform = t
	}
}

func (p *Physics) SetBodyType(b engine.BodyID, typ engine.BodyType) {
	if body, ok := p.Bodies[b]; ok {
		body.Type = typ
	}
}

func (p *Physics) SetMass(b engine.BodyID, mass float32) {
	if body, ok := p.Bodies[b]; ok {
		body.Mass = mass
	}
}

func (p *Physics) ResetVelocity(b engine.BodyID) {
	if body, ok := p.Bodies[b]; ok {
		body.Resets++
	}
}

func (p *Physics) Sleep(b engine.BodyID) {
	if body, ok := p.Bodies[b]; ok {
		body.Sleeping = true
	}
}

func (p *Physics) WakeUp(b engine.BodyID) {
	if body, ok := p.Bodies[b]; ok {
		body.Sleeping = false
	}
}

func (p *Physics) ReplaceShape(b engine.BodyID, shape engine.Shape, offset rl.Vector3) error {
	body, ok := p.Bodies[b]
	if !ok {
		return fmt.Errorf("body %d: %w", b, engine.ErrNotFound)
	}
	body.Shape = shape
	body.Offset = offset
	return nil
}

func (p *Physics) CreateConstraint(kind engine.ConstraintKind, a engine.BodyID, localA rl.Vector3, b engine.BodyID, localB rl.Vector3, params engine.ConstraintParams) (engine.ConstraintID, error) {
	if p.FailConstraints {
		return 0, errors.New("constraint rejected")
	}
	if _, ok := p.Bodies[a]; !ok {
		return 0, fmt.Errorf("body %d: %w", a, engine.ErrNotFound)
	}
	if _, ok := p.Bodies[b]; !ok {
		return 0, fmt.Errorf("body %d: %w", b, engine.ErrNotFound)
	}
	p.next++
	id := engine.ConstraintID(p.next)
	p.Constraints[id] = &Constraint{Kind: kind, A: a, B: b, LocalA: localA, LocalB: localB, Params: params}
	return id, nil
}

func (p *Physics) RemoveConstraint(c engine.ConstraintID) {
	delete(p.Constraints, c)
}

func (p *Physics) SetConstraintStiffness(c engine.ConstraintID, stiffness, relaxation float32) {
	if con, ok := p.Constraints[c]; ok {
		con.Params.Stiffness = stiffness
		con.Params.Relaxation = relaxation
	}
}

func (p *Physics) EnableMotor(c engine.ConstraintID) {
	p.MotorCalls = append(p.MotorCalls, fmt.Sprintf("enable %d", c))
	if con, ok := p.Constraints[c]; ok {
		con.MotorEnabled = true
	}
}

func (p *Physics) DisableMotor(c engine.ConstraintID) {
	p.MotorCalls = append(p.MotorCalls, fmt.Sprintf("disable %d", c))
	if con, ok := p.Constraints[c]; ok {
		con.MotorEnabled = false
	}
}

func (p *Physics) SetMotorSpeed(c engine.ConstraintID, speed float32) {
	p.MotorCalls = append(p.MotorCalls, fmt.Sprintf("speed %d", c))
	if con, ok := p.Constraints[c]; ok {
		con.Speed = speed
	}
}

func (p *Physics) SetMotorMaxForce(c engine.ConstraintID, force float32) {
	p.MotorCalls = append(p.MotorCalls, fmt.Sprintf("force %d", c))
	if con, ok := p.Constraints[c]; ok {
		con.MaxForce = force
	}
}

func (p *Physics) Step(float32, float32) {
	p.Steps++
}

// ConstraintsOn returns the constraints touching body b, ordered by id.
func (p *Physics) ConstraintsOn(b engine.BodyID) []*Constraint {
	ids := make([]int, 0)
	for id, c := range p.Constraints {
		if c.A == b || c.B == b {
			ids = append(ids, int(id))
		}
	}
	sort.Ints(ids)
	out := make([]*Constraint, len(ids))
	for i, id := range ids {
		out[i] = p.Constraints[engine.ConstraintID(id)]
	}
	return out
}

func (p *Physics) CountConstraints(kind engine.ConstraintKind) int {
	n := 0
	for _, c := range p.Constraints {
		if c.Kind == kind {
			n++
		}
	}
	return n
}
