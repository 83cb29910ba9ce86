package scenefile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"projector/internal/editor"
	"projector/internal/log"

	"github.com/mitchellh/go-homedir"
)

// SaveFile exports the editor's scene to path. The file is written next to
// its destination first so a failed write never truncates an older save.
func SaveFile(path string, ed *editor.Editor) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("save scene: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, Export(ed)); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	tmp := expanded + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	if err := os.Rename(tmp, expanded); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write scene: %w", err)
	}

	ed.Log().Info("scene saved", log.String("path", expanded), log.Int("entities", ed.Entities.Len()))
	ed.Notify(fmt.Sprintf("Saved %s", filepath.Base(expanded)), false)
	return nil
}

// PrepareFile reads and prepares the scene at path without touching the
// editor. See Prepare.
func (im *Importer) PrepareFile(ctx context.Context, path string) (*Prepared, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		im.ed.Notify(fmt.Sprintf("Cannot open %s", filepath.Base(expanded)), true)
		return nil, fmt.Errorf("load scene: %w", err)
	}
	defer f.Close()

	p, err := im.Prepare(ctx, f)
	if err != nil {
		im.ed.Notify(fmt.Sprintf("Import failed: %v", err), true)
		return nil, fmt.Errorf("%s: %w", expanded, err)
	}
	return p, nil
}

// LoadFile imports the scene at path into the importer's editor.
func (im *Importer) LoadFile(ctx context.Context, path string) (*Report, error) {
	p, err := im.PrepareFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return im.Apply(p), nil
}
