package scenefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"projector/internal/engine"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mitchellh/go-homedir"
)

// AssetRef names the mesh an imported entity needs.
type AssetRef struct {
	EntityID        int
	Name            string
	Path            string
	Scale           float32
	CenterOfGravity rl.Vector3
}

// AssetLoader resolves a mesh reference. Import calls it from several
// goroutines at once.
type AssetLoader interface {
	LoadAsset(ctx context.Context, ref AssetRef) (*engine.MeshAsset, error)
}

// AssetPrompter asks the operator to supply a mesh file that could not be
// found. An empty path means the operator declined.
type AssetPrompter interface {
	PromptAsset(ctx context.Context, ref AssetRef) (string, error)
}

// Decline is an AssetPrompter that never supplies a file.
type Decline struct{}

func (Decline) PromptAsset(context.Context, AssetRef) (string, error) {
	return "", nil
}

// MeshExtensions are the mesh formats the loader accepts.
var MeshExtensions = []string{".fbx", ".obj", ".gltf", ".glb", ".iqm", ".vox", ".m3d"}

type fileStamp struct {
	size    int64
	modTime time.Time
	hash    uint64
}

// FileLoader finds mesh files on disk and fingerprints their content. A
// recorded path that no longer exists is looked up by base name in Dir.
type FileLoader struct {
	Dir string

	mu    sync.Mutex
	cache map[string]fileStamp
}

func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{Dir: dir, cache: make(map[string]fileStamp)}
}

func (l *FileLoader) LoadAsset(ctx context.Context, ref AssetRef) (*engine.MeshAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref.Path == "" {
		return nil, fmt.Errorf("%w: %s has no file path", engine.ErrMissingAsset, ref.Name)
	}
	if !supported(ref.Path) {
		return nil, fmt.Errorf("%w: unsupported mesh format %q", engine.ErrMissingAsset, filepath.Ext(ref.Path))
	}
	path, info, err := l.resolve(ref.Path)
	if err != nil {
		return nil, err
	}
	hash, err := l.fingerprint(path, info)
	if err != nil {
		return nil, err
	}
	scale := ref.Scale
	if scale <= 0 {
		scale = 1
	}
	return &engine.MeshAsset{
		Path:            path,
		Scale:           scale,
		CenterOfGravity: ref.CenterOfGravity,
		Hash:            hash,
	}, nil
}

func supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range MeshExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (l *FileLoader) resolve(recorded string) (string, fs.FileInfo, error) {
	expanded, err := homedir.Expand(recorded)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", engine.ErrMissingAsset, err)
	}
	candidates := []string{expanded}
	if l.Dir != "" {
		candidates = append(candidates, filepath.Join(l.Dir, filepath.Base(expanded)))
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && !info.IsDir() {
			return c, info, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("%w: %v", engine.ErrMissingAsset, err)
		}
	}
	return "", nil, fmt.Errorf("%w: %s not found", engine.ErrMissingAsset, recorded)
}

// fingerprint hashes the file, reusing the cached hash while size and
// modification time are unchanged.
func (l *FileLoader) fingerprint(path string, info fs.FileInfo) (uint64, error) {
	l.mu.Lock()
	stamp, ok := l.cache[path]
	l.mu.Unlock()
	if ok && stamp.size == info.Size() && stamp.modTime.Equal(info.ModTime()) {
		return stamp.hash, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", engine.ErrMissingAsset, err)
	}
	hash := xxhash.Sum64(data)

	l.mu.Lock()
	l.cache[path] = fileStamp{size: info.Size(), modTime: info.ModTime(), hash: hash}
	l.mu.Unlock()
	return hash, nil
}
