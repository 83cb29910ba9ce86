package game

import (
	"context"
	"os"
	"path/filepath"
	"projector/internal/config"
	"projector/internal/editor"
	"projector/internal/engine"
	"projector/internal/engine/enginetest"
	"projector/internal/log"
	"projector/internal/notify"
	"projector/internal/scenefile"
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T) *Game {
	t.Helper()
	cfg := config.Default()
	toasts := notify.NewQueue()
	ed := editor.New(cfg, enginetest.NewPhysics(), enginetest.NewRenderer(), toasts, log.Nop())
	loader := scenefile.NewFileLoader(t.TempDir())
	prompter := NewDropPrompter(toasts)
	importer := scenefile.NewImporter(ed, loader, prompter, log.Nop())
	g := New(cfg, log.Nop(), ed, nil, toasts, importer, loader, prompter)
	g.ScenePath = filepath.Join(t.TempDir(), "scene.json")
	g.PrefsPath = filepath.Join(t.TempDir(), "editor.yaml")
	return g
}

// waitLoaded runs frames until a background scene load has been applied.
func waitLoaded(t *testing.T, g *Game) {
	t.Helper()
	require.Eventually(t, func() bool {
		g.finishLoad()
		return !g.Loading()
	}, 2*time.Second, 10*time.Millisecond)
}

func lastToast(t *testing.T, q *notify.Queue) notify.Toast {
	t.Helper()
	active := q.Active()
	require.NotEmpty(t, active)
	return active[len(active)-1]
}

func TestModeActionsToggle(t *testing.T) {
	g := newGame(t)
	ctx := context.Background()

	g.apply(ctx, ActionMotor)
	assert.Equal(t, editor.ModeMotor, g.Editor.Mode())

	g.apply(ctx, ActionGlue)
	assert.Equal(t, editor.ModeGlue, g.Editor.Mode())

	g.apply(ctx, ActionGlue)
	assert.Equal(t, editor.ModeIdle, g.Editor.Mode())
}

func TestCancelLeavesModeThenClearsSelection(t *testing.T) {
	g := newGame(t)
	ctx := context.Background()
	e, err := g.Editor.CreateEntity(engine.KindBox, editor.CreateParams{})
	require.NoError(t, err)

	g.apply(ctx, ActionStick)
	g.apply(ctx, ActionCancel)
	assert.Equal(t, editor.ModeIdle, g.Editor.Mode())

	g.Editor.Select(e)
	g.apply(ctx, ActionCancel)
	assert.True(t, g.Editor.Selection().Empty())
}

func TestSimulationAndFixedActions(t *testing.T) {
	g := newGame(t)
	ctx := context.Background()
	e, err := g.Editor.CreateEntity(engine.KindBox, editor.CreateParams{})
	require.NoError(t, err)

	g.apply(ctx, ActionToggleSimulation)
	assert.True(t, g.Editor.Simulating())
	g.apply(ctx, ActionToggleSimulation)
	assert.False(t, g.Editor.Simulating())

	g.Editor.Select(e)
	g.apply(ctx, ActionToggleFixed)
	assert.True(t, e.Fixed)

	before := e.Color
	g.apply(ctx, ActionCycleColor)
	assert.NotEqual(t, before, e.Color)

	help := g.showHelp
	g.apply(ctx, ActionToggleHelp)
	assert.Equal(t, !help, g.showHelp)
}

func TestDeleteAction(t *testing.T) {
	g := newGame(t)
	e, err := g.Editor.CreateEntity(engine.KindSphere, editor.CreateParams{})
	require.NoError(t, err)
	g.Editor.Select(e)

	g.apply(context.Background(), ActionDelete)
	assert.Nil(t, g.Editor.Entities.FindByID(e.ID))
}

func TestSaveAndLoadActions(t *testing.T) {
	g := newGame(t)
	ctx := context.Background()
	_, err := g.Editor.CreateEntity(engine.KindBox, editor.CreateParams{})
	require.NoError(t, err)
	_, err = g.Editor.CreateEntity(engine.KindCone, editor.CreateParams{})
	require.NoError(t, err)

	g.apply(ctx, ActionSave)
	require.FileExists(t, g.ScenePath)

	g.Editor.Clear()
	require.True(t, g.Editor.Entities.Empty())

	g.apply(ctx, ActionLoad)
	waitLoaded(t, g)
	assert.Equal(t, 2, g.Editor.Entities.Len())
}

const promptScene = `{"objects":[{"id":1,"type":"box","position":{"x":0,"y":1,"z":0}}],
"fbxModels":[{"id":2,"type":"fbx","filePath":"gone.fbx","position":{"x":2,"y":1,"z":0},"width":1,"height":1,"length":1}],
"version":"1.1"}`

func TestEditorUntouchedWhileLoading(t *testing.T) {
	g := newGame(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(g.ScenePath, []byte(promptScene), 0o644))

	g.loadScene(ctx, g.ScenePath)
	require.True(t, g.Loading())
	require.Eventually(t, func() bool {
		_, ok := g.Prompter.Pending()
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	g.apply(ctx, ActionToggleSimulation)
	g.apply(ctx, ActionStick)
	g.create(engine.KindSphere)
	g.finishLoad()
	assert.False(t, g.Editor.Simulating())
	assert.Equal(t, editor.ModeIdle, g.Editor.Mode())
	assert.True(t, g.Editor.Entities.Empty())

	require.True(t, g.Prompter.Answer(""))
	require.Eventually(t, func() bool { return len(g.prepared) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, g.Loading())
	assert.True(t, g.Editor.Entities.Empty(), "the prepared scene waits for the frame thread")

	g.finishLoad()
	assert.False(t, g.Loading())
	require.Equal(t, 1, g.Editor.Entities.Len())
	assert.Equal(t, engine.KindBox, g.Editor.Entities.All()[0].Kind)
}

func TestLoadMissingSceneClearsLoading(t *testing.T) {
	g := newGame(t)
	g.loadScene(context.Background(), filepath.Join(t.TempDir(), "none.json"))
	waitLoaded(t, g)
	assert.True(t, g.Editor.Entities.Empty())
}

func TestDropPrompterAnswer(t *testing.T) {
	q := notify.NewQueue()
	p := NewDropPrompter(q)
	assert.False(t, p.Answer("early.obj"), "nothing pending")

	done := make(chan string)
	go func() {
		path, err := p.PromptAsset(context.Background(), scenefile.AssetRef{Name: "robot", Path: "/gone/robot.fbx"})
		assert.NoError(t, err)
		done <- path
	}()

	require.Eventually(t, func() bool {
		_, ok := p.Pending()
		return ok && len(q.Active()) > 0
	}, time.Second, 5*time.Millisecond)
	ref, _ := p.Pending()
	assert.Equal(t, "robot", ref.Name)
	assert.Contains(t, lastToast(t, q).Message, "robot.fbx")

	assert.True(t, p.Answer("/found/robot.fbx"))
	assert.Equal(t, "/found/robot.fbx", <-done)

	_, ok := p.Pending()
	assert.False(t, ok)
}

func TestDropPrompterContextCancel(t *testing.T) {
	p := NewDropPrompter(notify.Discard{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path, err := p.PromptAsset(ctx, scenefile.AssetRef{Name: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, path)
}

func TestClassifyDrop(t *testing.T) {
	tests := []struct {
		path string
		want dropKind
	}{
		{"/tmp/scene.json", dropScene},
		{"/tmp/SCENE.JSON", dropScene},
		{"/tmp/robot.fbx", dropMesh},
		{"/tmp/crate.obj", dropMesh},
		{"/tmp/tree.glb", dropMesh},
		{"/tmp/notes.txt", dropUnsupported},
		{"/tmp/noext", dropUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyDrop(tt.path))
		})
	}
}

func TestDropMeshCreatesEntity(t *testing.T) {
	g := newGame(t)
	src := filepath.Join(t.TempDir(), "crate.obj")
	require.NoError(t, os.WriteFile(src, []byte("v 0 0 0\n"), 0o644))

	g.dropFiles(context.Background(), []string{src})

	e := g.Editor.Entities.FindByName("crate")
	require.NotNil(t, e)
	assert.Equal(t, engine.KindMesh, e.Kind)
	require.NotNil(t, e.Asset)
	assert.Equal(t, filepath.Join(g.Loader.Dir, "crate.obj"), e.Asset.Path)
	assert.FileExists(t, e.Asset.Path)

	sel := g.Editor.Selection()
	require.Len(t, sel.Entities, 1)
	assert.Same(t, e, sel.Entities[0])
}

func TestDropUnsupportedFile(t *testing.T) {
	g := newGame(t)
	g.dropFiles(context.Background(), []string{"/tmp/readme.md"})

	toast := lastToast(t, g.Toasts)
	assert.True(t, toast.IsError)
	assert.Contains(t, toast.Message, ".md")
	assert.True(t, g.Editor.Entities.Empty())
}

func TestDropSceneLoadsIt(t *testing.T) {
	src := newGame(t)
	_, err := src.Editor.CreateEntity(engine.KindTorus, editor.CreateParams{})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "dropped.json")
	require.NoError(t, scenefile.SaveFile(path, src.Editor))

	g := newGame(t)
	g.dropFiles(context.Background(), []string{path})
	waitLoaded(t, g)

	assert.Equal(t, path, g.ScenePath)
	assert.Equal(t, 1, g.Editor.Entities.Len())
}

func TestPrefsRoundTrip(t *testing.T) {
	g := newGame(t)
	g.Camera.Target = rl.Vector3{X: 1, Y: 2, Z: 3}
	g.Camera.Orbit(30, -10)
	g.Camera.Zoom(2)

	want := prefsFrom(g.Camera, false, "/scenes/bridge.json")
	require.NoError(t, SavePrefs(g.PrefsPath, want))

	got, ok, err := LoadPrefs(g.PrefsPath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	fresh := newGame(t)
	got.applyTo(fresh.Camera)
	assert.Equal(t, g.Camera.Target, fresh.Camera.Target)
	assert.InDelta(t, g.Camera.Yaw, fresh.Camera.Yaw, 1e-4)
	assert.InDelta(t, g.Camera.Pitch, fresh.Camera.Pitch, 1e-4)
	assert.InDelta(t, g.Camera.Distance, fresh.Camera.Distance, 1e-4)
}

func TestLoadPrefsMissingFile(t *testing.T) {
	_, ok, err := LoadPrefs(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestorePrefsPicksLastScene(t *testing.T) {
	g := newGame(t)
	g.ScenePath = g.cfg.Scene.Path
	require.NoError(t, SavePrefs(g.PrefsPath, Prefs{ShowHelp: false, LastScene: "/scenes/last.json", CameraPitch: 20}))

	g.restorePrefs()
	assert.Equal(t, "/scenes/last.json", g.ScenePath)
	assert.False(t, g.showHelp)
	assert.InDelta(t, 20, g.Camera.Pitch, 1e-4)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "DualMotor", kindLabel(engine.KindDualMotor))
	assert.Equal(t, "Box", kindLabel(engine.KindBox))
	assert.Equal(t, "Mesh", kindLabel(engine.KindMesh))

	assert.Equal(t, "Red", colorName(rl.Red))
	assert.Equal(t, "#123456", colorName(rl.Color{R: 0x12, G: 0x34, B: 0x56, A: 255}))

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestSplit(t *testing.T) {
	cells := split(rl.Rectangle{X: 10, Y: 5, Width: 108, Height: 20}, 3)
	require.Len(t, cells, 3)
	assert.InDelta(t, 10, cells[0].X, 1e-4)
	assert.InDelta(t, 33.333, cells[0].Width, 1e-2)
	assert.InDelta(t, 118, cells[2].X+cells[2].Width, 1e-3)
	for _, c := range cells {
		assert.Equal(t, float32(5), c.Y)
	}
}

func TestPointerOverUI(t *testing.T) {
	assert.True(t, pointerOverUI(rl.Vector2{X: 500, Y: 10}), "toolbar")
	assert.True(t, pointerOverUI(rl.Vector2{X: 20, Y: 300}), "panel")
	assert.False(t, pointerOverUI(rl.Vector2{X: 500, Y: 300}))
}
