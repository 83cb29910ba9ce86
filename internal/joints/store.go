package joints

import (
	"fmt"
	"projector/internal/engine"
	"projector/internal/log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Store owns every connection and the physics constraints and line visuals
// behind them. Teardown always runs constraints, then visuals, then the record.
type Store struct {
	physics  engine.Physics
	renderer engine.Renderer
	log      log.Log

	Sticks     []*Stick
	Motors     []*Motor
	Glues      []*Glue
	DualMotors []*DualMotorLink

	// Stiffness and MotorForce seed new connections, like the UI sliders do.
	Stiffness  float32
	MotorForce float32

	nextID [3]int
}

func NewStore(physics engine.Physics, renderer engine.Renderer, logger log.Log) *Store {
	return &Store{
		physics:    physics,
		renderer:   renderer,
		log:        logger,
		Stiffness:  50,
		MotorForce: 10,
		nextID:     [3]int{1, 1, 1},
	}
}

func (s *Store) mintID(k Kind) int {
	id := s.nextID[k]
	s.nextID[k]++
	return id
}

// Renumber gives c the id want when want is positive and no other
// connection of the same kind holds it. Otherwise c keeps its minted id.
// Dual-motor links are keyed by their housing and are left alone.
func (s *Store) Renumber(c Connection, want int) int {
	l := linkOf(c)
	if l == nil || want <= 0 || want == l.id {
		return c.ID()
	}
	k := c.Kind()
	if s.Find(k, want) != nil {
		return l.id
	}
	l.id = want
	if want >= s.nextID[k] {
		s.nextID[k] = want + 1
	}
	return want
}

func linkOf(c Connection) *Link {
	switch c := c.(type) {
	case *Stick:
		return &c.Link
	case *Motor:
		return &c.Link
	case *Glue:
		return &c.Link
	}
	return nil
}

func validate(a, b *engine.Entity, points ...rl.Vector3) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: missing entity", engine.ErrInvalidEndpoints)
	}
	if a == b {
		return fmt.Errorf("%w: entity %d connected to itself", engine.ErrInvalidEndpoints, a.ID)
	}
	if a.Body == 0 || b.Body == 0 {
		return fmt.Errorf("%w: missing physics body", engine.ErrInvalidEndpoints)
	}
	for _, p := range points {
		if !engine.Finite(p) {
			return fmt.Errorf("%w: non-finite point %v", engine.ErrInvalidGeometry, p)
		}
	}
	return nil
}

func stickStyle(rigid bool) engine.LineStyle {
	if rigid {
		return engine.LineRigidStick
	}
	return engine.LineStick
}

func motorStyle(rigid bool) engine.LineStyle {
	if rigid {
		return engine.LineRigidMotor
	}
	return engine.LineMotor
}

// CreateStick joins a and b at two world points. Rigid sticks lock the
// relative pose; flexible ones hold the points apart like a spring rod.
func (s *Store) CreateStick(a, b *engine.Entity, worldA, worldB rl.Vector3, rigid bool) (*Stick, error) {
	if err := validate(a, b, worldA, worldB); err != nil {
		return nil, fmt.Errorf("create stick: %w", err)
	}
	st := &Stick{
		Link: Link{
			A:       a,
			B:       b,
			OffsetA: a.Transform.InverseApply(worldA),
			OffsetB: b.Transform.InverseApply(worldB),
		},
		Stiffness: s.Stiffness,
		Rigid:     rigid,
	}

	kind := engine.ConstraintPoint
	params := engine.ConstraintParams{MaxForce: PointMaxForce}
	if rigid {
		kind = engine.ConstraintLock
		params.Stiffness = RigidStiffness
	} else {
		params.Stiffness = EngineStiffness(st.Stiffness)
		params.Relaxation = Relaxation(params.Stiffness)
	}
	c, err := s.physics.CreateConstraint(kind, a.Body, st.OffsetA, b.Body, st.OffsetB, params)
	if err != nil {
		return nil, fmt.Errorf("create stick: %w", err)
	}
	st.Constraint = c
	st.Line = s.renderer.CreateLine(worldA, worldB, stickStyle(rigid))
	st.id = s.mintID(KindStick)
	s.Sticks = append(s.Sticks, st)

	s.log.Debug("stick created",
		log.Int("id", st.id), log.Int("a", a.ID), log.Int("b", b.ID), log.Bool("rigid", rigid))
	return st, nil
}

// CreateMotor hinges a and b about an axis perpendicular to the segment
// between the two points. Nil points default to the entity origins. The
// motor starts disabled with speed 0.
func (s *Store) CreateMotor(a, b *engine.Entity, pointA, pointB *rl.Vector3, rigid bool) (*Motor, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("create motor: %w: missing entity", engine.ErrInvalidEndpoints)
	}
	worldA, worldB := originOr(a, pointA), originOr(b, pointB)
	if err := validate(a, b, worldA, worldB); err != nil {
		return nil, fmt.Errorf("create motor: %w", err)
	}

	axis := HingeAxis(worldA, worldB)
	m := &Motor{
		Link: Link{
			A:       a,
			B:       b,
			OffsetA: a.Transform.InverseApply(worldA),
			OffsetB: b.Transform.InverseApply(worldB),
		},
		Stiffness: s.Stiffness,
		Rigid:     rigid,
		Force:     s.MotorForce,
		AxisLocal: a.Transform.InverseApplyDirection(axis),
	}

	params := engine.ConstraintParams{
		MaxForce: m.Force,
		AxisA:    m.AxisLocal,
		AxisB:    b.Transform.InverseApplyDirection(axis),
	}
	params.Stiffness, params.Relaxation = m.solverStiffness()
	c, err := s.physics.CreateConstraint(engine.ConstraintHinge, a.Body, m.OffsetA, b.Body, m.OffsetB, params)
	if err != nil {
		return nil, fmt.Errorf("create motor: %w", err)
	}
	m.Constraint = c
	m.Line = s.renderer.CreateLine(worldA, worldB, motorStyle(rigid))
	m.Arrow = s.renderer.CreateArrow(engine.Midpoint(worldA, worldB), rl.Vector3Scale(axis, ArrowLength))
	m.id = s.mintID(KindMotor)
	s.Motors = append(s.Motors, m)

	s.log.Debug("motor created",
		log.Int("id", m.id), log.Int("a", a.ID), log.Int("b", b.ID), log.Any("axis", axis))
	return m, nil
}

func (m *Motor) solverStiffness() (stiffness, relaxation float32) {
	if m.Rigid {
		return RigidStiffness, 0
	}
	k := EngineStiffness(m.Stiffness)
	return k, Relaxation(k)
}

// CreateGlue holds b to a with two point constraints a small distance
// apart, so the pair resists rotation as well as translation. Nil points
// default to the entity origins.
func (s *Store) CreateGlue(a, b *engine.Entity, pointA, pointB *rl.Vector3) (*Glue, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("create glue: %w: missing entity", engine.ErrInvalidEndpoints)
	}
	worldA, worldB := originOr(a, pointA), originOr(b, pointB)
	if err := validate(a, b, worldA, worldB); err != nil {
		return nil, fmt.Errorf("create glue: %w", err)
	}

	g := &Glue{
		Link: Link{
			A:       a,
			B:       b,
			OffsetA: a.Transform.InverseApply(worldA),
			OffsetB: b.Transform.InverseApply(worldB),
		},
	}
	params := engine.ConstraintParams{MaxForce: PointMaxForce}
	first, err := s.physics.CreateConstraint(engine.ConstraintPoint, a.Body, g.OffsetA, b.Body, g.OffsetB, params)
	if err != nil {
		return nil, fmt.Errorf("create glue: %w", err)
	}
	second, err := s.physics.CreateConstraint(engine.ConstraintPoint,
		a.Body, a.Transform.InverseApply(rl.Vector3Add(worldA, GlueSecondPoint)),
		b.Body, b.Transform.InverseApply(rl.Vector3Add(worldB, GlueSecondPoint)),
		params)
	if err != nil {
		s.physics.RemoveConstraint(first)
		return nil, fmt.Errorf("create glue: %w", err)
	}
	g.Constraints = [2]engine.ConstraintID{first, second}

	rel := a.Transform.Relative(b.Transform)
	g.Relative = &rel
	g.Line = s.renderer.CreateLine(worldA, worldB, engine.LineGlue)
	g.id = s.mintID(KindGlue)
	s.Glues = append(s.Glues, g)

	s.log.Debug("glue created", log.Int("id", g.id), log.Int("leader", a.ID), log.Int("follower", b.ID))
	return g, nil
}

func originOr(e *engine.Entity, p *rl.Vector3) rl.Vector3 {
	if p != nil {
		return *p
	}
	return e.Transform.Position
}

func (s *Store) RemoveStick(st *Stick) {
	if st.Constraint != 0 {
		s.physics.RemoveConstraint(st.Constraint)
		st.Constraint = 0
	}
	if st.Line != 0 {
		s.renderer.RemoveLine(st.Line)
		st.Line = 0
	}
	s.Sticks = without(s.Sticks, st)
}

func (s *Store) RemoveMotor(m *Motor) {
	if m.Constraint != 0 {
		s.physics.RemoveConstraint(m.Constraint)
		m.Constraint = 0
	}
	if m.Line != 0 {
		s.renderer.RemoveLine(m.Line)
		m.Line = 0
	}
	if m.Arrow != 0 {
		s.renderer.RemoveLine(m.Arrow)
		m.Arrow = 0
	}
	s.Motors = without(s.Motors, m)
}

func (s *Store) RemoveGlue(g *Glue) {
	for i, c := range g.Constraints {
		if c != 0 {
			s.physics.RemoveConstraint(c)
			g.Constraints[i] = 0
		}
	}
	if g.Line != 0 {
		s.renderer.RemoveLine(g.Line)
		g.Line = 0
	}
	s.Glues = without(s.Glues, g)
}

// Remove tears down any connection variant.
func (s *Store) Remove(c Connection) {
	switch c := c.(type) {
	case *Stick:
		s.RemoveStick(c)
	case *Motor:
		s.RemoveMotor(c)
	case *Glue:
		s.RemoveGlue(c)
	case *DualMotorLink:
		s.RemoveDualMotor(c)
	}
}

// RemoveEntity removes every connection touching e. Dual-motor links that
// merely hold e on a cube are detached from it instead; a link whose
// housing is e is removed. Returns how many connections changed.
func (s *Store) RemoveEntity(e *engine.Entity) int {
	n := 0
	for _, st := range clone(s.Sticks) {
		if st.Involves(e) {
			s.RemoveStick(st)
			n++
		}
	}
	for _, m := range clone(s.Motors) {
		if m.Involves(e) {
			s.RemoveMotor(m)
			n++
		}
	}
	for _, g := range clone(s.Glues) {
		if g.Involves(e) {
			s.RemoveGlue(g)
			n++
		}
	}
	for _, d := range clone(s.DualMotors) {
		if d.Housing == e {
			s.RemoveDualMotor(d)
			n++
			continue
		}
		for _, c := range []engine.Cube{engine.CubeA, engine.CubeB} {
			if d.Target(c) == e {
				s.Detach(d, c)
				n++
			}
		}
	}
	return n
}

// ForEntity lists the connections touching e.
func (s *Store) ForEntity(e *engine.Entity) []Connection {
	var out []Connection
	for _, c := range s.All() {
		if c.Involves(e) {
			out = append(out, c)
		}
	}
	return out
}

// All lists every connection: sticks, motors, glues, then dual motors.
func (s *Store) All() []Connection {
	out := make([]Connection, 0, s.Len())
	for _, c := range s.Sticks {
		out = append(out, c)
	}
	for _, c := range s.Motors {
		out = append(out, c)
	}
	for _, c := range s.Glues {
		out = append(out, c)
	}
	for _, c := range s.DualMotors {
		out = append(out, c)
	}
	return out
}

func (s *Store) Len() int {
	return len(s.Sticks) + len(s.Motors) + len(s.Glues) + len(s.DualMotors)
}

// Find looks a connection up by kind and id.
func (s *Store) Find(k Kind, id int) Connection {
	switch k {
	case KindStick:
		if c := s.Stick(id); c != nil {
			return c
		}
	case KindMotor:
		if c := s.Motor(id); c != nil {
			return c
		}
	case KindGlue:
		if c := s.Glue(id); c != nil {
			return c
		}
	case KindDualMotor:
		if c := s.DualMotor(id); c != nil {
			return c
		}
	}
	return nil
}

func (s *Store) Stick(id int) *Stick {
	for _, c := range s.Sticks {
		if c.id == id {
			return c
		}
	}
	return nil
}

func (s *Store) Motor(id int) *Motor {
	for _, c := range s.Motors {
		if c.id == id {
			return c
		}
	}
	return nil
}

func (s *Store) Glue(id int) *Glue {
	for _, c := range s.Glues {
		if c.id == id {
			return c
		}
	}
	return nil
}

// SetStiffness updates a stick or motor's UI stiffness and its live
// constraint. Rigid connections keep their locked stiffness.
func (s *Store) SetStiffness(c Connection, ui float32) error {
	ui = ClampStiffness(ui)
	switch c := c.(type) {
	case *Stick:
		c.Stiffness = ui
		if !c.Rigid && c.Constraint != 0 {
			k := EngineStiffness(ui)
			s.physics.SetConstraintStiffness(c.Constraint, k, Relaxation(k))
		}
	case *Motor:
		c.Stiffness = ui
		if c.Constraint != 0 {
			k, r := c.solverStiffness()
			s.physics.SetConstraintStiffness(c.Constraint, k, r)
		}
	default:
		return fmt.Errorf("set stiffness on %s: %w", c.Kind(), engine.ErrUnsupportedKind)
	}
	return nil
}

func without[T comparable](items []T, item T) []T {
	for i, it := range items {
		if it == item {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
