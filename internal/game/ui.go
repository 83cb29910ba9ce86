package game

import (
	"context"
	"fmt"
	"projector/internal/assets"
	"projector/internal/editor"
	"projector/internal/engine"
	"projector/internal/joints"
	"projector/internal/log"
	"slices"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/iancoleman/strcase"
)

const (
	toolbarHeight int32   = 36
	panelWidth    int32   = 280
	rowHeight     float32 = 24
	padding       float32 = 10
)

var editorFont rl.Font
var editorFontsLoaded bool

// Theme colors - indigo dark theme
var (
	colorBgDark    = rl.NewColor(10, 10, 15, 255)
	colorBgPanel   = rl.NewColor(18, 18, 24, 245)
	colorBgElement = rl.NewColor(28, 28, 38, 255)
	colorBgHover   = rl.NewColor(38, 38, 52, 255)

	colorAccent = rl.NewColor(108, 99, 255, 255) // #6c63ff
	colorError  = rl.NewColor(230, 80, 90, 255)

	colorTextPrimary   = rl.NewColor(255, 255, 255, 255)
	colorTextSecondary = rl.NewColor(200, 200, 208, 255)
	colorTextMuted     = rl.NewColor(119, 119, 119, 255)

	colorBorder    = rl.NewColor(255, 255, 255, 13)
	colorSelection = rl.NewColor(108, 99, 255, 60)
)

// initRayguiStyle sets up the dark theme. The UI font is optional.
func initRayguiStyle(logger log.Log) {
	if !editorFontsLoaded {
		editorFontsLoaded = true
		editorFont = rl.LoadFontEx("assets/fonts/Outfit-Regular.ttf", 48, nil)
		if editorFont.Texture.ID > 0 {
			rl.SetTextureFilter(editorFont.Texture, rl.FilterBilinear)
			gui.SetFont(editorFont)
		} else {
			logger.Debug("ui font not found, using the raylib default")
		}
	}

	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))

	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(50, 50, 65, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.LINE_COLOR, gui.NewColorPropertyValue(rl.NewColor(40, 40, 55, 255)))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

func drawText(text string, x, y float32, size float32, color rl.Color) {
	if editorFont.Texture.ID > 0 {
		rl.DrawTextEx(editorFont, text, rl.Vector2{X: x, Y: y}, size, 0, color)
	} else {
		rl.DrawText(text, int32(x), int32(y), int32(size), color)
	}
}

// colorName returns the palette name of c, or its hex code.
func colorName(c rl.Color) string {
	for _, name := range assets.Palette {
		if assets.LookupColor(name) == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", engine.ColorHex(c))
}

// kindLabel is the toolbar text for an entity kind: "dual-motor" -> "DualMotor".
func kindLabel(k engine.Kind) string {
	if k == engine.KindMesh {
		return "Mesh"
	}
	return strcase.ToCamel(string(k))
}

// pointerOverUI reports whether the mouse is on a panel rather than the scene.
func pointerOverUI(mouse rl.Vector2) bool {
	return mouse.Y < float32(toolbarHeight) || mouse.X < float32(panelWidth)
}

// layout hands out stacked rows inside the side panel.
type layout struct {
	x, y, w float32
}

func (l *layout) row(h float32) rl.Rectangle {
	r := rl.Rectangle{X: l.x, Y: l.y, Width: l.w, Height: h}
	l.y += h + 4
	return r
}

// split cuts a row into n equal cells.
func split(r rl.Rectangle, n int) []rl.Rectangle {
	cells := make([]rl.Rectangle, n)
	w := (r.Width - float32(n-1)*4) / float32(n)
	for i := range cells {
		cells[i] = rl.Rectangle{X: r.X + float32(i)*(w+4), Y: r.Y, Width: w, Height: r.Height}
	}
	return cells
}

func (l *layout) label(text string, color rl.Color) {
	r := l.row(18)
	drawText(text, r.X, r.Y, 16, color)
}

func (l *layout) header(text string) {
	l.y += 6
	r := l.row(20)
	drawText(text, r.X, r.Y, 18, colorTextPrimary)
	rl.DrawRectangle(int32(r.X), int32(r.Y+r.Height), int32(r.Width), 1, colorBorder)
}

// slider draws a labelled slider and reports whether the value moved.
func (l *layout) slider(name string, value, lo, hi float32, format string) (float32, bool) {
	l.label(fmt.Sprintf("%s: "+format, name, value), colorTextSecondary)
	r := l.row(rowHeight - 6)
	next := gui.Slider(r, "", "", value, lo, hi)
	return next, next != value
}

func (g *Game) drawUI(ctx context.Context) {
	// Locked controls still draw but report no clicks.
	loading := g.loading.Load()
	if loading {
		gui.Lock()
	}
	g.drawToolbar(ctx)
	g.drawPanel()
	if loading {
		gui.Unlock()
	}
	g.drawToasts()
	if g.showHelp {
		drawHelp()
	}
	if g.loading.Load() {
		g.drawLoading()
	}
}

func (g *Game) drawToolbar(ctx context.Context) {
	ed := g.Editor
	width := float32(rl.GetScreenWidth())
	rl.DrawRectangle(0, 0, int32(width), toolbarHeight, colorBgDark)
	rl.DrawRectangle(0, toolbarHeight-1, int32(width), 1, colorBorder)

	x := padding
	button := func(text string, w float32) bool {
		r := rl.Rectangle{X: x, Y: 6, Width: w, Height: float32(toolbarHeight) - 12}
		x += w + 4
		return gui.Button(r, text)
	}
	toggle := func(text string, w float32, active bool) bool {
		r := rl.Rectangle{X: x, Y: 6, Width: w, Height: float32(toolbarHeight) - 12}
		x += w + 4
		return gui.Toggle(r, text, active)
	}

	for _, k := range engine.Kinds {
		if k == engine.KindMesh {
			continue
		}
		if button("+"+kindLabel(k), 78) {
			g.create(k)
		}
	}
	x += 12

	if toggle(editor.ModeIdle.Label(), 62, ed.Mode() == editor.ModeIdle) && ed.Mode() != editor.ModeIdle {
		ed.Cancel()
	}
	for i, m := range editor.Modes {
		active := ed.Mode() == m
		if toggle(m.Label(), 86, active) != active {
			g.apply(ctx, ActionStick+Action(i))
		}
	}
	x += 12

	play := "Play"
	if ed.Simulating() {
		play = "Pause"
	}
	if button(play, 60) {
		g.apply(ctx, ActionToggleSimulation)
	}
	if button("Reset", 60) {
		g.apply(ctx, ActionResetPositions)
	}
	if button("Save", 56) {
		g.apply(ctx, ActionSave)
	}
	if button("Load", 56) {
		g.apply(ctx, ActionLoad)
	}
}

// create spawns a kind with default parameters and selects it.
func (g *Game) create(k engine.Kind) {
	if g.loading.Load() {
		return
	}
	e, err := g.Editor.CreateEntity(k, editor.CreateParams{})
	if err != nil {
		g.Editor.Notify(fmt.Sprintf("Create %s failed: %v", kindLabel(k), err), true)
		return
	}
	g.Editor.Select(e)
}

func (g *Game) drawPanel() {
	height := rl.GetScreenHeight() - int(toolbarHeight)
	rl.DrawRectangle(0, toolbarHeight, panelWidth, int32(height), colorBgPanel)
	rl.DrawRectangle(panelWidth-2, toolbarHeight, 2, int32(height), colorBorder)

	l := &layout{x: padding, y: float32(toolbarHeight) + padding, w: float32(panelWidth) - 2*padding}
	ed := g.Editor

	switch st := ed.Authoring(); {
	case st.Mode == editor.ModeDualMotorAttach:
		l.label(fmt.Sprintf("Pick an object for %s", st.Cube), colorAccent)
	case st.AwaitingSecondPick():
		l.label(fmt.Sprintf("%s: pick the second object", st.Mode.Label()), colorAccent)
	case st.Mode != editor.ModeIdle:
		l.label(fmt.Sprintf("%s: pick the first object", st.Mode.Label()), colorAccent)
	}

	sel := ed.Selection()
	if len(sel.Entities) > 0 {
		g.drawEntity(l, sel.Entities[0], len(sel.Entities))
	}
	if d := ed.SelectedDualMotor(); d != nil {
		g.drawDualMotor(l, d)
	}
	for _, m := range ed.SelectedMotors() {
		g.drawMotor(l, m)
	}
	for _, c := range sel.Connections {
		if s, ok := c.(*joints.Stick); ok && !s.Rigid {
			l.header(fmt.Sprintf("Stick #%d", s.ID()))
			if v, moved := l.slider("Stiffness", s.Stiffness, 0, 100, "%.0f"); moved {
				g.check(ed.SetConnectionStiffness(joints.KindStick, s.ID(), v))
			}
		}
	}

	g.drawConnections(l)
}

func (g *Game) drawEntity(l *layout, e *engine.Entity, selected int) {
	ed := g.Editor
	title := e.Name
	if selected > 1 {
		title = fmt.Sprintf("%s (+%d more)", e.Name, selected-1)
	}
	l.header(title)
	l.label(fmt.Sprintf("#%d %s, %.0f g", e.ID, kindLabel(e.Kind), e.Mass*1000), colorTextMuted)
	p := e.Transform.Position
	l.label(fmt.Sprintf("at (%.2f, %.2f, %.2f)", p.X, p.Y, p.Z), colorTextMuted)

	if fixed := gui.CheckBox(l.row(18), "Fixed", e.Fixed); fixed != e.Fixed {
		g.check(ed.SetFixed(e.ID, fixed))
	}
	cells := split(l.row(rowHeight), 2)
	if gui.Button(cells[0], colorName(e.Color)) {
		g.check(ed.SetColor(e.ID, assets.NextColor(e.Color)))
	}
	if gui.Button(cells[1], "Delete") {
		ed.DeleteSelected()
	}
}

func (g *Game) drawDualMotor(l *layout, d *joints.DualMotorLink) {
	ed := g.Editor
	id := d.Housing.ID
	l.header(fmt.Sprintf("Dual Motor #%d (%d/2)", id, d.Attached()))

	for _, cube := range []engine.Cube{engine.CubeA, engine.CubeB} {
		cells := split(l.row(rowHeight), 2)
		target := "free"
		if t := d.Target(cube); t != nil {
			target = t.Name
		}
		if gui.Button(cells[0], fmt.Sprintf("%s: %s", cube, target)) {
			g.check(ed.StartCubeAttach(id, cube))
		}
		if gui.Button(cells[1], "Detach") {
			g.check(ed.DetachCube(id, cube))
		}
	}

	if v, moved := l.slider("Speed", d.Speed, -10, 10, "%.2f rad/s"); moved {
		g.check(ed.SetDualMotorSpeed(id, v))
	}
	if v, moved := l.slider("Force", d.Force, 0, 100, "%.0f"); moved {
		g.check(ed.SetDualMotorForce(id, v))
	}
	cells := split(l.row(rowHeight), 3)
	if gui.Button(cells[0], "CW") {
		g.check(ed.SetDualMotorDirection(id, editor.Clockwise))
	}
	if gui.Button(cells[1], "CCW") {
		g.check(ed.SetDualMotorDirection(id, editor.CounterClockwise))
	}
	if gui.Button(cells[2], "Stop") {
		g.check(ed.StopDualMotor(id))
	}
}

func (g *Game) drawMotor(l *layout, m *joints.Motor) {
	ed := g.Editor
	id := m.ID()
	name := "Motor"
	if m.Rigid {
		name = "Rigid Motor"
	}
	l.header(fmt.Sprintf("%s #%d", name, id))

	if v, moved := l.slider("Speed", m.Speed, -10, 10, "%.2f rad/s"); moved {
		g.check(ed.SetMotorSpeed(id, v))
	}
	if v, moved := l.slider("Force", m.Force, 0, 100, "%.0f"); moved {
		g.check(ed.SetMotorForce(id, v))
	}
	if !m.Rigid {
		if v, moved := l.slider("Stiffness", m.Stiffness, 0, 100, "%.0f"); moved {
			g.check(ed.SetConnectionStiffness(joints.KindMotor, id, v))
		}
	}
	cells := split(l.row(rowHeight), 3)
	if gui.Button(cells[0], "CW") {
		g.check(ed.SetMotorDirection(id, editor.Clockwise))
	}
	if gui.Button(cells[1], "CCW") {
		g.check(ed.SetMotorDirection(id, editor.CounterClockwise))
	}
	if gui.Button(cells[2], "Stop") {
		g.check(ed.StopMotor(id))
	}
}

// drawConnections lists every connection; clicking a row selects it.
func (g *Game) drawConnections(l *layout) {
	ed := g.Editor
	summaries := ed.Summaries()
	l.header(fmt.Sprintf("Connections (%d)", len(summaries)))

	sel := ed.Selection()
	mouse := rl.GetMousePosition()
	bottom := float32(rl.GetScreenHeight()) - padding
	for _, s := range summaries {
		if l.y+rowHeight > bottom {
			l.label("...", colorTextMuted)
			break
		}
		r := l.row(rowHeight - 4)
		c := ed.Connections.Find(s.Kind, s.ID)
		hovered := rl.CheckCollisionPointRec(mouse, r)
		switch {
		case c != nil && slices.Contains(sel.Connections, c):
			rl.DrawRectangleRec(r, colorSelection)
		case hovered:
			rl.DrawRectangleRec(r, colorBgHover)
		}
		drawText(truncate(s.Label, 34), r.X+4, r.Y+2, 15, colorTextSecondary)
		if hovered && c != nil && !g.loading.Load() && rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
			ed.SelectConnection(c, rl.IsKeyDown(rl.KeyLeftShift))
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (g *Game) drawToasts() {
	toasts := g.Toasts.Active()
	y := float32(rl.GetScreenHeight()) - padding
	x := float32(rl.GetScreenWidth()) - 420
	for i := len(toasts) - 1; i >= 0; i-- {
		t := toasts[i]
		y -= 30
		r := rl.Rectangle{X: x, Y: y, Width: 410, Height: 26}
		rl.DrawRectangleRounded(r, 0.3, 6, colorBgPanel)
		color := colorTextSecondary
		if t.IsError {
			color = colorError
			rl.DrawRectangle(int32(r.X), int32(r.Y), 3, int32(r.Height), colorError)
		}
		drawText(truncate(t.Message, 56), r.X+10, r.Y+5, 16, color)
	}
}

func drawHelp() {
	var lines []string
	for _, b := range keyBindings {
		if b.help != "" {
			lines = append(lines, b.help)
		}
	}
	lines = append(lines, "Right drag + WASD/QE  fly, middle drag  pan, wheel  zoom",
		"Shift+click  add to selection, drop files to import")

	w := float32(440)
	h := float32(len(lines))*20 + 2*padding
	x := float32(rl.GetScreenWidth()) - w - padding
	y := float32(toolbarHeight) + padding
	rl.DrawRectangleRounded(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, 0.05, 6, colorBgPanel)
	drawText(strings.Join(lines, "\n"), x+padding, y+padding, 16, colorTextSecondary)
}

func (g *Game) drawLoading() {
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	rl.DrawRectangle(0, 0, int32(w), int32(h), rl.NewColor(0, 0, 0, 140))
	msg := "Loading scene..."
	if ref, ok := g.Prompter.Pending(); ok {
		msg = fmt.Sprintf("Drop the mesh for %s here, or press Esc to skip", ref.Name)
	}
	drawText(msg, float32(w)/2-200, float32(h)/2, 20, colorTextPrimary)
}

// check surfaces an editor error as a toast.
func (g *Game) check(err error) {
	if err != nil {
		g.Editor.Notify(err.Error(), true)
	}
}
