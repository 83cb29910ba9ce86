package game

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"projector/internal/editor"
	"projector/internal/engine"
	"projector/internal/log"
	"projector/internal/notify"
	"projector/internal/scenefile"
	"slices"
	"strings"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var _ scenefile.AssetPrompter = (*DropPrompter)(nil)

// DropPrompter asks for a missing mesh by waiting for the operator to drop
// the file on the window. Esc answers with an empty path.
type DropPrompter struct {
	notifier notify.Notifier

	mu      sync.Mutex
	pending *scenefile.AssetRef
	answers chan string
}

func NewDropPrompter(notifier notify.Notifier) *DropPrompter {
	return &DropPrompter{notifier: notifier, answers: make(chan string, 1)}
}

func (p *DropPrompter) PromptAsset(ctx context.Context, ref scenefile.AssetRef) (string, error) {
	p.mu.Lock()
	select {
	case <-p.answers: // stale
	default:
	}
	p.pending = &ref
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.pending = nil
		p.mu.Unlock()
	}()

	name := ref.Name
	if ref.Path != "" {
		name = filepath.Base(ref.Path)
	}
	p.notifier.Notify(fmt.Sprintf("Cannot find %s: drop the file on the window, or press Esc to skip", name), true)

	select {
	case path := <-p.answers:
		return path, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Pending returns the mesh being asked for, if any.
func (p *DropPrompter) Pending() (scenefile.AssetRef, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return scenefile.AssetRef{}, false
	}
	return *p.pending, true
}

// Answer hands path to the waiting prompt. It reports false when nothing
// is being asked.
func (p *DropPrompter) Answer(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return false
	}
	select {
	case p.answers <- path:
	default:
	}
	return true
}

type dropKind int

const (
	dropUnsupported dropKind = iota
	dropScene
	dropMesh
)

func classifyDrop(path string) dropKind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".json":
		return dropScene
	case slices.Contains(scenefile.MeshExtensions, ext):
		return dropMesh
	}
	return dropUnsupported
}

// handleFileDrop routes files dropped on the window: an open prompt takes
// the first one, scenes are loaded and meshes become new entities.
func (g *Game) handleFileDrop(ctx context.Context) {
	if !rl.IsFileDropped() {
		return
	}
	files := rl.LoadDroppedFiles()
	defer rl.UnloadDroppedFiles()
	g.dropFiles(ctx, files)
}

func (g *Game) dropFiles(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}
	if g.Prompter.Answer(files[0]) {
		return
	}
	if g.loading.Load() {
		return
	}

	for _, file := range files {
		switch classifyDrop(file) {
		case dropScene:
			g.ScenePath = file
			g.loadScene(ctx, file)
			return
		case dropMesh:
			g.importMesh(ctx, file)
		default:
			g.Toasts.Notify(fmt.Sprintf("Unsupported file type: %s", filepath.Ext(file)), true)
		}
	}
}

// importMesh copies a mesh file into the asset directory and spawns an
// entity showing it.
func (g *Game) importMesh(ctx context.Context, src string) {
	dst := filepath.Join(g.Loader.Dir, filepath.Base(src))
	if filepath.Clean(src) != filepath.Clean(dst) {
		if err := os.MkdirAll(g.Loader.Dir, 0o755); err != nil {
			g.Toasts.Notify(fmt.Sprintf("Failed to create models dir: %v", err), true)
			return
		}
		if err := copyFile(src, dst); err != nil {
			g.Toasts.Notify(fmt.Sprintf("Failed to copy: %v", err), true)
			return
		}
	}

	name := strings.TrimSuffix(filepath.Base(dst), filepath.Ext(dst))
	asset, err := g.Loader.LoadAsset(ctx, scenefile.AssetRef{Name: name, Path: dst, Scale: 1})
	if err != nil {
		g.log.Warn("mesh import failed", log.String("path", dst), log.Error(err))
		g.Toasts.Notify(fmt.Sprintf("Import failed: %v", err), true)
		return
	}

	e, err := g.Editor.CreateEntity(engine.KindMesh, editor.CreateParams{Name: name, Asset: asset})
	if err != nil {
		g.Toasts.Notify(fmt.Sprintf("Import failed: %v", err), true)
		return
	}
	g.Editor.Select(e)
	g.Toasts.Notify(fmt.Sprintf("Imported: %s", filepath.Base(dst)), false)
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
