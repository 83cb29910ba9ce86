package editor

import (
	"projector/internal/engine"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStickGesture(t *testing.T) {
	h := newHarness(t)
	a := h.spawn(t, engine.KindBox, rl.Vector3{})
	b := h.spawn(t, engine.KindSphere, rl.Vector3{X: 3})
	var modes []Mode
	h.Hooks.ModeChanged.AddListener(func(m Mode) { modes = append(modes, m) })

	require.NoError(t, h.SetMode(ModeRigidStick))
	h.Pick(&Pick{Entity: a, Point: rl.Vector3{X: 0.5}})

	state := h.Authoring()
	require.True(t, state.AwaitingSecondPick())
	assert.Same(t, a, state.First.Entity)
	assert.Equal(t, 1, h.renderer.CountLines(engine.LinePreview))
	assert.Empty(t, h.physics.Constraints)

	h.Hover(rl.Vector3{X: 2})
	for _, l := range h.renderer.Lines {
		assertVec(t, rl.Vector3{X: 2}, l.B)
	}

	h.Pick(&Pick{Entity: b, Point: rl.Vector3{X: 2.5}})

	assert.Equal(t, ModeIdle, h.Mode())
	assert.False(t, h.Authoring().AwaitingSecondPick())
	assert.Zero(t, h.renderer.CountLines(engine.LinePreview))
	require.Len(t, h.Connections.Sticks, 1)
	st := h.Connections.Sticks[0]
	assert.True(t, st.Rigid)
	assertVec(t, rl.Vector3{X: 0.5}, st.OffsetA)
	assertVec(t, rl.Vector3{X: -0.5}, st.OffsetB)
	assert.Equal(t, []Mode{ModeRigidStick, ModeIdle}, modes)
}

func TestMotorAndGlueGestures(t *testing.T) {
	h := newHarness(t)
	a := h.spawn(t, engine.KindBox, rl.Vector3{})
	b := h.spawn(t, engine.KindWheel, rl.Vector3{X: 2})

	require.NoError(t, h.SetMode(ModeMotor))
	h.Pick(&Pick{Entity: a, Point: a.Transform.Position})
	h.Pick(&Pick{Entity: b, Point: b.Transform.Position})
	require.Len(t, h.Connections.Motors, 1)
	assert.Equal(t, 1, h.renderer.CountLines(engine.LineArrow))

	require.NoError(t, h.SetMode(ModeGlue))
	h.Pick(&Pick{Entity: b, Point: rl.Vector3{X: 2, Y: 0.4}})
	h.Pick(&Pick{Entity: a, Point: rl.Vector3{X: 0.5}})
	require.Len(t, h.Connections.Glues, 1)
	assert.Same(t, b, h.Connections.Glues[0].Leader())
	assert.Equal(t, 3, h.physics.CountConstraints(engine.ConstraintPoint)+h.physics.CountConstraints(engine.ConstraintHinge))
}

func TestGestureIgnoresSameEntityAndEmptySpace(t *testing.T) {
	h := newHarness(t)
	a := h.spawn(t, engine.KindBox, rl.Vector3{})

	require.NoError(t, h.SetMode(ModeStick))
	h.Pick(nil)
	assert.False(t, h.Authoring().AwaitingSecondPick())
	assert.Equal(t, ModeStick, h.Mode())

	h.Pick(&Pick{Entity: a, Point: rl.Vector3{}})
	h.Pick(&Pick{Entity: a, Point: rl.Vector3{Y: 0.5}})

	assert.True(t, h.Authoring().AwaitingSecondPick())
	assert.Empty(t, h.physics.Constraints)
	assert.Empty(t, h.Connections.Sticks)
	assert.Equal(t, 1, h.notes.errors)
}

func TestCancelDisposesPreview(t *testing.T) {
	h := newHarness(t)
	a := h.spawn(t, engine.KindBox, rl.Vector3{})

	require.NoError(t, h.SetMode(ModeMotor))
	h.Pick(&Pick{Entity: a, Point: rl.Vector3{}})
	h.Cancel()

	assert.Equal(t, ModeIdle, h.Mode())
	assert.Zero(t, h.renderer.CountLines())
	assert.Empty(t, h.physics.Constraints)
	assert.Empty(t, h.physics.MotorCalls)
}

func TestModeSwitchDropsStalePick(t *testing.T) {
	h := newHarness(t)
	a := h.spawn(t, engine.KindBox, rl.Vector3{})
	b := h.spawn(t, engine.KindBox, rl.Vector3{X: 2})

	require.NoError(t, h.SetMode(ModeStick))
	h.Pick(&Pick{Entity: a, Point: rl.Vector3{}})
	require.NoError(t, h.SetMode(ModeGlue))

	assert.False(t, h.Authoring().AwaitingSecondPick())
	assert.Zero(t, h.renderer.CountLines(engine.LinePreview))

	h.Pick(&Pick{Entity: b, Point: b.Transform.Position})
	assert.Same(t, b, h.Authoring().First.Entity)
}

func TestEnteringModeClearsSelection(t *testing.T) {
	h := newHarness(t)
	a := h.spawn(t, engine.KindBox, rl.Vector3{})
	h.Select(a)

	require.NoError(t, h.SetMode(ModeStick))
	assert.True(t, h.Selection().Empty())

	h.StartSimulation()
	assert.ErrorIs(t, h.SetMode(ModeGlue), ErrSimulating)
}

func TestDeletingFirstPickCancels(t *testing.T) {
	h := newHarness(t)
	a := h.spawn(t, engine.KindBox, rl.Vector3{})

	require.NoError(t, h.SetMode(ModeStick))
	h.Pick(&Pick{Entity: a, Point: rl.Vector3{}})
	require.NoError(t, h.DeleteEntity(a.ID))

	assert.Equal(t, ModeIdle, h.Mode())
	assert.Zero(t, h.renderer.CountLines())
}

func TestIdlePickSelects(t *testing.T) {
	h := newHarness(t)
	a := h.spawn(t, engine.KindBox, rl.Vector3{})
	h.renderer.Hits = []engine.PickHit{
		{Node: 999, Point: rl.Vector3{}},
		{Node: a.Visual, Point: rl.Vector3{Y: 0.5}, Distance: 2},
	}

	h.Click(rl.Vector2{X: 10, Y: 10})
	assert.Equal(t, []*engine.Entity{a}, h.Selection().Entities)

	h.renderer.Hits = nil
	h.Click(rl.Vector2{})
	assert.True(t, h.Selection().Empty())
}

func TestDualMotorAttachMode(t *testing.T) {
	h := newHarness(t)
	housing := h.spawn(t, engine.KindDualMotor, rl.Vector3{})
	a := h.spawn(t, engine.KindBox, rl.Vector3{X: -1})
	b := h.spawn(t, engine.KindBox, rl.Vector3{X: 1})

	require.NoError(t, h.StartDualMotorAttach(housing.ID))
	state := h.Authoring()
	assert.Equal(t, ModeDualMotorAttach, state.Mode)
	assert.Equal(t, engine.CubeA, state.Cube)
	assert.Same(t, housing, state.Housing)

	h.Pick(&Pick{Entity: housing})
	assert.Equal(t, ModeDualMotorAttach, h.Mode())

	h.Pick(&Pick{Entity: a})
	assert.Equal(t, ModeIdle, h.Mode())
	d := h.Connections.DualMotor(housing.ID)
	assert.Same(t, a, d.Target(engine.CubeA))
	assert.Zero(t, h.physics.CountConstraints(engine.ConstraintHinge))

	require.NoError(t, h.StartDualMotorAttach(housing.ID))
	assert.Equal(t, engine.CubeB, h.Authoring().Cube)
	h.Pick(&Pick{Entity: b})
	assert.Equal(t, 1, h.physics.CountConstraints(engine.ConstraintHinge))

	assert.ErrorIs(t, h.StartDualMotorAttach(housing.ID), engine.ErrBothCubesAttached)
	assert.ErrorIs(t, h.StartDualMotorAttach(a.ID), engine.ErrUnsupportedKind)

	require.NoError(t, h.DetachCube(housing.ID, engine.CubeA))
	assert.Zero(t, h.physics.CountConstraints(engine.ConstraintHinge))
	assert.ErrorIs(t, h.DetachCube(housing.ID, engine.CubeA), engine.ErrNotFound)
}

func TestDualMotorAttachCancelledByEmptyClick(t *testing.T) {
	h := newHarness(t)
	housing := h.spawn(t, engine.KindDualMotor, rl.Vector3{})

	require.NoError(t, h.StartDualMotorAttach(housing.ID))
	h.Pick(nil)

	assert.Equal(t, ModeIdle, h.Mode())
	assert.Empty(t, h.physics.Constraints)
}

func TestReattachSpecificCube(t *testing.T) {
	h := newHarness(t)
	housing := h.spawn(t, engine.KindDualMotor, rl.Vector3{})
	a := h.spawn(t, engine.KindBox, rl.Vector3{X: -1})
	c := h.spawn(t, engine.KindBox, rl.Vector3{Z: -1})

	require.NoError(t, h.StartCubeAttach(housing.ID, engine.CubeA))
	h.Pick(&Pick{Entity: a})
	require.NoError(t, h.StartCubeAttach(housing.ID, engine.CubeA))
	h.Pick(&Pick{Entity: c})

	assert.Equal(t, 1, h.physics.CountConstraints(engine.ConstraintLock))
	assert.Same(t, c, h.Connections.DualMotor(housing.ID).Target(engine.CubeA))
}

func TestDeleteSelected(t *testing.T) {
	h := newHarness(t)
	a := h.spawn(t, engine.KindBox, rl.Vector3{})
	b := h.spawn(t, engine.KindBox, rl.Vector3{X: 2})
	c := h.spawn(t, engine.KindBox, rl.Vector3{X: 4})
	st, err := h.Connections.CreateStick(a, b, a.Transform.Position, b.Transform.Position, false)
	require.NoError(t, err)
	_, err = h.Connections.CreateGlue(b, c, nil, nil)
	require.NoError(t, err)

	h.SelectConnection(st, false)
	h.ToggleSelect(c)
	h.DeleteSelected()

	assert.Empty(t, h.Connections.Sticks)
	assert.Empty(t, h.Connections.Glues)
	assert.Nil(t, h.Entities.FindByID(c.ID))
	assert.NotNil(t, h.Entities.FindByID(a.ID))
	assert.Empty(t, h.physics.Constraints)
	assert.True(t, h.Selection().Empty())
}

func TestSelectedMotors(t *testing.T) {
	h := newHarness(t)
	a := h.spawn(t, engine.KindBox, rl.Vector3{})
	b := h.spawn(t, engine.KindBox, rl.Vector3{X: 2})
	c := h.spawn(t, engine.KindBox, rl.Vector3{X: 4})
	m1, err := h.Connections.CreateMotor(a, b, nil, nil, false)
	require.NoError(t, err)
	_, err = h.Connections.CreateMotor(b, c, nil, nil, false)
	require.NoError(t, err)

	h.Select(a)
	assert.Len(t, h.SelectedMotors(), 1)
	assert.Same(t, m1, h.SelectedMotors()[0])
	h.ToggleSelect(c)
	assert.Len(t, h.SelectedMotors(), 2)
}
