package game

import (
	"context"
	"projector/internal/assets"
	"projector/internal/editor"
	"projector/internal/log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type Action int

const (
	ActionNone Action = iota
	ActionCancel
	ActionDelete
	ActionToggleSimulation
	ActionResetPositions
	ActionToggleFixed
	ActionStick
	ActionRigidStick
	ActionMotor
	ActionRigidMotor
	ActionGlue
	ActionSave
	ActionLoad
	ActionFocus
	ActionCycleColor
	ActionToggleHelp
)

type binding struct {
	key    int32
	ctrl   bool
	action Action
	help   string
}

var keyBindings = []binding{
	{rl.KeyEscape, false, ActionCancel, "Esc  cancel / clear selection"},
	{rl.KeyDelete, false, ActionDelete, "Del  delete selection"},
	{rl.KeyBackspace, false, ActionDelete, ""},
	{rl.KeySpace, false, ActionToggleSimulation, "Space  start / pause"},
	{rl.KeyR, false, ActionResetPositions, "R  reset positions"},
	{rl.KeyF, false, ActionToggleFixed, "F  fix / unfix"},
	{rl.KeyOne, false, ActionStick, "1-5  stick, rigid stick, motor, rigid motor, glue"},
	{rl.KeyTwo, false, ActionRigidStick, ""},
	{rl.KeyThree, false, ActionMotor, ""},
	{rl.KeyFour, false, ActionRigidMotor, ""},
	{rl.KeyFive, false, ActionGlue, ""},
	{rl.KeyS, true, ActionSave, "Ctrl+S  save"},
	{rl.KeyO, true, ActionLoad, "Ctrl+O  load"},
	{rl.KeyZ, false, ActionFocus, "Z  focus selection"},
	{rl.KeyC, false, ActionCycleColor, "C  next color"},
	{rl.KeyF1, false, ActionToggleHelp, "F1  help"},
}

var modeActions = map[Action]editor.Mode{
	ActionStick:      editor.ModeStick,
	ActionRigidStick: editor.ModeRigidStick,
	ActionMotor:      editor.ModeMotor,
	ActionRigidMotor: editor.ModeRigidMotor,
	ActionGlue:       editor.ModeGlue,
}

func ctrlDown() bool {
	return rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) ||
		rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)
}

// pressedActions returns the actions whose keys went down this frame. While
// the camera is flying the letter keys belong to it.
func pressedActions() []Action {
	ctrl := ctrlDown()
	flying := rl.IsMouseButtonDown(rl.MouseButtonRight)
	var out []Action
	for _, b := range keyBindings {
		if b.ctrl != ctrl || (flying && !b.ctrl) || !rl.IsKeyPressed(b.key) {
			continue
		}
		out = append(out, b.action)
	}
	return out
}

// apply runs one editor command. Commands wait while a scene is loading.
func (g *Game) apply(ctx context.Context, a Action) {
	if g.loading.Load() {
		return
	}
	ed := g.Editor
	if m, ok := modeActions[a]; ok {
		if ed.Mode() == m {
			m = editor.ModeIdle
		}
		if err := ed.SetMode(m); err != nil {
			ed.Notify(err.Error(), true)
		}
		return
	}

	switch a {
	case ActionCancel:
		if ed.Mode() != editor.ModeIdle {
			ed.Cancel()
			return
		}
		ed.ClearSelection()
	case ActionDelete:
		ed.DeleteSelected()
	case ActionToggleSimulation:
		if ed.Simulating() {
			ed.PauseSimulation()
		} else {
			ed.StartSimulation()
		}
	case ActionResetPositions:
		ed.ResetPositions()
	case ActionToggleFixed:
		ed.ToggleFixed()
	case ActionSave:
		g.saveScene()
	case ActionLoad:
		g.loadScene(ctx, g.ScenePath)
	case ActionFocus:
		g.focusSelection()
	case ActionCycleColor:
		for _, e := range ed.Selection().Entities {
			if err := ed.SetColor(e.ID, assets.NextColor(e.Color)); err != nil {
				g.log.Warn("cycle color", log.Int("id", e.ID), log.Error(err))
			}
		}
	case ActionToggleHelp:
		g.showHelp = !g.showHelp
	}
}

// focusSelection eases the camera onto the first selected entity.
func (g *Game) focusSelection() {
	sel := g.Editor.Selection()
	if len(sel.Entities) == 0 {
		return
	}
	e := sel.Entities[0]
	ext := rl.Vector3Multiply(e.Dims.Extents(e.Kind), e.Scale())
	g.Camera.Focus(e.Transform.Position, rl.Vector3Length(ext)/2)
}
