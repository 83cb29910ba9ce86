// Package game runs the editor window: input, the raylib frame loop and the
// side panel.
package game

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"projector/internal/camera"
	"projector/internal/config"
	"projector/internal/editor"
	"projector/internal/log"
	"projector/internal/notify"
	"projector/internal/scenefile"
	"projector/internal/world"
	"sync/atomic"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mitchellh/go-homedir"
)

type Game struct {
	Editor   *editor.Editor
	World    *world.World
	Camera   *camera.OrbitCamera
	Toasts   *notify.Queue
	Importer *scenefile.Importer
	Loader   *scenefile.FileLoader
	Prompter *DropPrompter

	// ScenePath is where Save writes and Load reads.
	ScenePath string
	PrefsPath string

	cfg      config.Config
	log      log.Log
	view     rl.Camera3D
	showHelp bool
	loading  atomic.Bool
	prepared chan preparedScene

	// Debug timing (ms)
	updateMs float64
	drawMs   float64
}

func New(cfg config.Config, logger log.Log, ed *editor.Editor, w *world.World, toasts *notify.Queue,
	importer *scenefile.Importer, loader *scenefile.FileLoader, prompter *DropPrompter) *Game {
	g := &Game{
		Editor:    ed,
		World:     w,
		Camera:    camera.New(rl.Vector3{Y: cfg.Editor.SpawnHeight / 4}),
		Toasts:    toasts,
		Importer:  importer,
		Loader:    loader,
		Prompter:  prompter,
		ScenePath: cfg.Scene.Path,
		PrefsPath: DefaultPrefsPath,
		cfg:       cfg,
		log:       logger.With(log.String("component", "game")),
		showHelp:  true,
		prepared:  make(chan preparedScene, 1),
	}
	g.view = g.Camera.GetRaylibCamera()
	if w != nil {
		w.Renderer.Camera = &g.view
	}
	return g
}

// Run opens the window and blocks until it is closed or ctx ends.
func (g *Game) Run(ctx context.Context) error {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(g.cfg.Window.Width, g.cfg.Window.Height, g.cfg.Window.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(g.cfg.Window.TargetFPS)
	rl.SetExitKey(0) // Esc cancels gestures

	// Initialize world after OpenGL context is created
	g.World.Initialize()
	defer g.World.Unload()
	initRayguiStyle(g.log)

	g.restorePrefs()
	if g.sceneExists() {
		g.loadScene(ctx, g.ScenePath)
	}

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		g.Update(ctx)
		g.Draw(ctx)
	}

	g.Prompter.Answer("")
	if err := SavePrefs(g.PrefsPath, prefsFrom(g.Camera, g.showHelp, g.ScenePath)); err != nil {
		g.log.Warn("save prefs", log.Error(err))
	}
	return nil
}

func (g *Game) restorePrefs() {
	p, ok, err := LoadPrefs(g.PrefsPath)
	if err != nil {
		g.log.Warn("load prefs", log.Error(err))
		return
	}
	if !ok {
		return
	}
	p.applyTo(g.Camera)
	g.showHelp = p.ShowHelp
	if g.ScenePath == g.cfg.Scene.Path && p.LastScene != "" {
		g.ScenePath = p.LastScene
	}
}

func (g *Game) sceneExists() bool {
	path, err := homedir.Expand(g.ScenePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func (g *Game) Update(ctx context.Context) {
	updateStart := time.Now()
	deltaTime := rl.GetFrameTime()

	g.handleFileDrop(ctx)
	g.finishLoad()
	if g.loading.Load() {
		if rl.IsKeyPressed(rl.KeyEscape) {
			g.Prompter.Answer("")
		}
		return
	}

	g.Camera.Update(deltaTime)
	g.view = g.Camera.GetRaylibCamera()

	mouse := rl.GetMousePosition()
	if !pointerOverUI(mouse) {
		g.Editor.PointerMove(mouse)
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
			g.click(mouse, rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift))
		}
	}
	for _, a := range pressedActions() {
		g.apply(ctx, a)
	}

	g.Editor.Tick(deltaTime)
	g.updateMs = float64(time.Since(updateStart).Microseconds()) / 1000.0
}

// click feeds the authoring state machine. Shift-clicks in idle mode add to
// or remove from the selection instead.
func (g *Game) click(mouse rl.Vector2, additive bool) {
	ed := g.Editor
	if !additive || ed.Mode() != editor.ModeIdle {
		ed.Click(mouse)
		return
	}
	for _, hit := range g.World.Renderer.PickAt(mouse) {
		if e := ed.Entities.FindByNode(hit.Node); e != nil {
			ed.ToggleSelect(e)
			return
		}
	}
}

func (g *Game) Draw(ctx context.Context) {
	drawStart := time.Now()
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 20, 30, 255))

	if !g.loading.Load() {
		rl.BeginMode3D(g.view)
		g.World.Draw(g.view)
		g.drawSelection()
		rl.EndMode3D()
	}

	g.drawUI(ctx)
	g.drawMs = float64(time.Since(drawStart).Microseconds()) / 1000.0
	if g.showHelp {
		rl.DrawText(fmt.Sprintf("update %.2f ms  draw %.2f ms", g.updateMs, g.drawMs),
			panelWidth+10, int32(rl.GetScreenHeight())-24, 16, colorTextMuted)
	}
	rl.EndDrawing()
}

// drawSelection outlines every selected entity.
func (g *Game) drawSelection() {
	for _, e := range g.Editor.Selection().Entities {
		half := rl.Vector3Scale(rl.Vector3Multiply(e.Dims.Extents(e.Kind), e.Scale()), 0.52)
		world.DrawOutline(e.Transform, half, 0, colorAccent)
	}
}

func (g *Game) saveScene() {
	if err := scenefile.SaveFile(g.ScenePath, g.Editor); err != nil {
		g.log.Error("save scene", log.String("path", g.ScenePath), log.Error(err))
		g.Editor.Notify(fmt.Sprintf("Save failed: %v", err), true)
	}
}

type preparedScene struct {
	path  string
	scene *scenefile.Prepared
}

// loadScene reads path and resolves its meshes on a background goroutine.
// The editor is only touched by finishLoad, on the frame thread, once that
// work is done.
func (g *Game) loadScene(ctx context.Context, path string) {
	if !g.loading.CompareAndSwap(false, true) {
		return
	}
	if g.Editor.Simulating() {
		g.Editor.PauseSimulation()
	}
	go func() {
		p, err := g.Importer.PrepareFile(ctx, path)
		if err != nil {
			g.log.Error("load scene", log.String("path", path), log.Error(err))
			g.loading.Store(false)
			return
		}
		g.prepared <- preparedScene{path: path, scene: p}
	}()
}

// finishLoad applies a prepared scene, if one is waiting.
func (g *Game) finishLoad() {
	select {
	case p := <-g.prepared:
		rep := g.Importer.Apply(p.scene)
		g.loading.Store(false)
		g.log.Info("scene loaded",
			log.String("path", p.path),
			log.Int("entities", rep.Entities),
			log.Int("connections", rep.Connections),
			log.Int("dropped", len(rep.Dropped)))
	default:
	}
}

// Loading reports whether a scene is being read.
func (g *Game) Loading() bool {
	return g.loading.Load()
}
