package editor

import (
	"errors"
	"fmt"
	"projector/internal/engine"
	"projector/internal/joints"
	"projector/internal/log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Mode is the current authoring gesture.
type Mode int

const (
	ModeIdle Mode = iota
	ModeStick
	ModeRigidStick
	ModeMotor
	ModeRigidMotor
	ModeGlue
	ModeDualMotorAttach
)

// Modes lists the two-click connection modes in toolbar order.
var Modes = []Mode{ModeStick, ModeRigidStick, ModeMotor, ModeRigidMotor, ModeGlue}

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeStick:
		return "stick"
	case ModeRigidStick:
		return "rigid-stick"
	case ModeMotor:
		return "motor"
	case ModeRigidMotor:
		return "rigid-motor"
	case ModeGlue:
		return "glue"
	case ModeDualMotorAttach:
		return "dual-motor-attach"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Label is the mode's toolbar text.
func (m Mode) Label() string {
	switch m {
	case ModeStick:
		return "Stick"
	case ModeRigidStick:
		return "Rigid Stick"
	case ModeMotor:
		return "Motor"
	case ModeRigidMotor:
		return "Rigid Motor"
	case ModeGlue:
		return "Glue"
	case ModeDualMotorAttach:
		return "Attach Cube"
	}
	return "Select"
}

func (m Mode) connects() bool {
	return m >= ModeStick && m <= ModeGlue
}

// Pick is one click on an entity at a world point.
type Pick struct {
	Entity *engine.Entity
	Point  rl.Vector3
}

// authoring is the gesture state machine. It is Idle when mode is ModeIdle
// and AwaitingSecondPick when first is set. Dual-motor attach mode waits for
// a single pick for cube.
type authoring struct {
	mode    Mode
	first   *Pick
	preview engine.LineID

	dualMotor *joints.DualMotorLink
	cube      engine.Cube
}

func (a *authoring) involves(e *engine.Entity) bool {
	if a.first != nil && a.first.Entity == e {
		return true
	}
	return a.dualMotor != nil && a.dualMotor.Housing == e
}

// AuthoringState is a read-only view of the gesture in progress.
type AuthoringState struct {
	Mode Mode
	// First is set while waiting for the second pick.
	First *Pick
	// Housing and Cube are set in dual-motor attach mode.
	Housing *engine.Entity
	Cube    engine.Cube
}

func (s AuthoringState) AwaitingSecondPick() bool {
	return s.First != nil
}

func (ed *Editor) Authoring() AuthoringState {
	s := AuthoringState{Mode: ed.auth.mode, Cube: ed.auth.cube}
	if ed.auth.first != nil {
		first := *ed.auth.first
		s.First = &first
	}
	if ed.auth.dualMotor != nil {
		s.Housing = ed.auth.dualMotor.Housing
	}
	return s
}

func (ed *Editor) Mode() Mode {
	return ed.auth.mode
}

// SetMode switches to a connection mode, dropping any gesture in progress
// and the selection. ModeIdle is the same as Cancel.
func (ed *Editor) SetMode(m Mode) error {
	if m == ModeDualMotorAttach {
		return errors.New("dual-motor attach mode starts from a housing")
	}
	if m != ModeIdle && ed.simulating {
		return ErrSimulating
	}
	ed.reset()
	ed.ClearSelection()
	ed.setMode(m)
	if m.connects() {
		ed.notifier.Notify(fmt.Sprintf("%s mode: select the first object", m.Label()), false)
	}
	return nil
}

// Cancel abandons the gesture in progress and returns to idle. No physics
// state is touched.
func (ed *Editor) Cancel() {
	ed.reset()
	ed.setMode(ModeIdle)
}

func (ed *Editor) reset() {
	if ed.auth.preview != 0 {
		ed.renderer.RemoveLine(ed.auth.preview)
	}
	ed.auth = authoring{mode: ed.auth.mode}
}

func (ed *Editor) setMode(m Mode) {
	if ed.auth.mode == m {
		return
	}
	ed.auth.mode = m
	ed.log.Debug("authoring mode", log.String("mode", m.String()))
	ed.Hooks.ModeChanged.Invoke(m)
}

// StartDualMotorAttach enters attach mode for the first free cube of the
// housing with entity id housingID.
func (ed *Editor) StartDualMotorAttach(housingID int) error {
	d, err := ed.dualMotor(housingID)
	if err != nil {
		return err
	}
	cube, ok := d.FreeCube()
	if !ok {
		return fmt.Errorf("dual motor %d: %w", housingID, engine.ErrBothCubesAttached)
	}
	return ed.startAttach(d, cube)
}

// StartCubeAttach enters attach mode for a specific cube, replacing its
// current attachment when the pick completes.
func (ed *Editor) StartCubeAttach(housingID int, cube engine.Cube) error {
	if !cube.Valid() {
		return fmt.Errorf("%w: %s", engine.ErrInvalidEndpoints, cube)
	}
	d, err := ed.dualMotor(housingID)
	if err != nil {
		return err
	}
	return ed.startAttach(d, cube)
}

func (ed *Editor) startAttach(d *joints.DualMotorLink, cube engine.Cube) error {
	if ed.simulating {
		return ErrSimulating
	}
	ed.reset()
	ed.ClearSelection()
	ed.auth.dualMotor = d
	ed.auth.cube = cube
	ed.setMode(ModeDualMotorAttach)
	ed.notifier.Notify(fmt.Sprintf("Click an object to attach %s", cube), false)
	return nil
}

func (ed *Editor) dualMotor(housingID int) (*joints.DualMotorLink, error) {
	e, err := ed.entity(housingID)
	if err != nil {
		return nil, err
	}
	if e.Kind != engine.KindDualMotor {
		return nil, fmt.Errorf("entity %d is a %s: %w", housingID, e.Kind, engine.ErrUnsupportedKind)
	}
	d := ed.Connections.DualMotor(housingID)
	if d == nil {
		d = ed.Connections.AddDualMotor(e, 0, ed.cfg.DualMotorForce)
	}
	return d, nil
}

// Click resolves a screen click to the nearest entity under the cursor and
// feeds it to Pick.
func (ed *Editor) Click(screen rl.Vector2) {
	if p, ok := ed.pickScreen(screen); ok {
		ed.Pick(&p)
		return
	}
	ed.Pick(nil)
}

func (ed *Editor) pickScreen(screen rl.Vector2) (Pick, bool) {
	for _, hit := range ed.renderer.PickAt(screen) {
		if e := ed.Entities.FindByNode(hit.Node); e != nil {
			return Pick{Entity: e, Point: hit.Point}, true
		}
	}
	return Pick{}, false
}

// Pick advances the state machine with a click on p, or on empty space when
// p is nil.
func (ed *Editor) Pick(p *Pick) {
	switch {
	case ed.auth.mode == ModeDualMotorAttach:
		ed.pickAttach(p)
	case ed.auth.mode.connects():
		ed.pickConnect(p)
	default:
		if p == nil {
			ed.ClearSelection()
			return
		}
		ed.Select(p.Entity)
	}
}

func (ed *Editor) pickConnect(p *Pick) {
	if p == nil {
		ed.notifier.Notify("Press Esc to leave connect mode", false)
		return
	}
	if ed.auth.first == nil {
		first := *p
		ed.auth.first = &first
		ed.auth.preview = ed.renderer.CreateLine(p.Point, p.Point, engine.LinePreview)
		ed.notifier.Notify(fmt.Sprintf("%s mode: select the second object", ed.auth.mode.Label()), false)
		return
	}
	if p.Entity == ed.auth.first.Entity {
		ed.notifier.Notify("Select a different object", true)
		return
	}

	mode, first := ed.auth.mode, *ed.auth.first
	ed.Cancel()

	c, err := ed.connect(mode, first, *p)
	if err != nil {
		ed.log.Warn("connection failed", log.String("mode", mode.String()), log.Error(err))
		ed.notifier.Notify(fmt.Sprintf("%s failed: %v", mode.Label(), err), true)
		return
	}
	ed.notifier.Notify(fmt.Sprintf("%s created", mode.Label()), false)
	ed.Hooks.ConnectionsChanged.Invoke()
	ed.syncConnection(c)
}

func (ed *Editor) connect(mode Mode, a, b Pick) (joints.Connection, error) {
	switch mode {
	case ModeStick, ModeRigidStick:
		return ed.Connections.CreateStick(a.Entity, b.Entity, a.Point, b.Point, mode == ModeRigidStick)
	case ModeMotor, ModeRigidMotor:
		return ed.Connections.CreateMotor(a.Entity, b.Entity, &a.Point, &b.Point, mode == ModeRigidMotor)
	case ModeGlue:
		return ed.Connections.CreateGlue(a.Entity, b.Entity, nil, nil)
	}
	return nil, fmt.Errorf("mode %s does not connect", mode)
}

func (ed *Editor) pickAttach(p *Pick) {
	if p == nil {
		ed.Cancel()
		ed.notifier.Notify("Attach cancelled", false)
		return
	}
	d, cube := ed.auth.dualMotor, ed.auth.cube
	if p.Entity == d.Housing {
		return
	}
	ed.Cancel()

	if err := ed.Connections.Attach(d, cube, p.Entity); err != nil {
		ed.log.Warn("cube attach failed", log.Int("housing", d.Housing.ID), log.Error(err))
		ed.notifier.Notify(fmt.Sprintf("Attach failed: %v", err), true)
		return
	}
	msg := fmt.Sprintf("Attached %s to %s", cube, p.Entity.Name)
	if d.Hinge != 0 {
		msg += ", motor ready"
	}
	ed.notifier.Notify(msg, false)
	ed.Hooks.ConnectionsChanged.Invoke()
}

// PointerMove drags the preview line's free end to whatever is under the cursor.
func (ed *Editor) PointerMove(screen rl.Vector2) {
	if ed.auth.first == nil {
		return
	}
	if p, ok := ed.pickScreen(screen); ok {
		ed.Hover(p.Point)
	}
}

// Hover moves the preview line's free end to a world point.
func (ed *Editor) Hover(point rl.Vector3) {
	if ed.auth.first == nil || ed.auth.preview == 0 {
		return
	}
	ed.renderer.SetLine(ed.auth.preview, ed.auth.first.Point, point)
}

// DetachCube frees one cube of a dual-motor housing.
func (ed *Editor) DetachCube(housingID int, cube engine.Cube) error {
	d, err := ed.dualMotor(housingID)
	if err != nil {
		return err
	}
	if !ed.Connections.Detach(d, cube) {
		return fmt.Errorf("dual motor %d %s: %w", housingID, cube, engine.ErrNotFound)
	}
	ed.notifier.Notify(fmt.Sprintf("Detached %s", cube), false)
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}
