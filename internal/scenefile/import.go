package scenefile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"projector/internal/editor"
	"projector/internal/engine"
	"projector/internal/joints"
	"projector/internal/log"
	"sync"

	"github.com/Masterminds/semver/v3"
	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentLoads bounds how many mesh files are read at once.
const maxConcurrentLoads = 4

var supportedVersions = mustConstraint("1.x")

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// Importer rebuilds a scene into an editor.
type Importer struct {
	ed       *editor.Editor
	loader   AssetLoader
	prompter AssetPrompter
	log      log.Log

	promptMu sync.Mutex
}

func NewImporter(ed *editor.Editor, loader AssetLoader, prompter AssetPrompter, logger log.Log) *Importer {
	if prompter == nil {
		prompter = Decline{}
	}
	return &Importer{
		ed:       ed,
		loader:   loader,
		prompter: prompter,
		log:      logger.With(log.String("component", "scenefile")),
	}
}

// Report summarizes an import.
type Report struct {
	Entities    int
	Connections int
	// Dropped holds one error per record that could not be restored.
	Dropped []error
}

func (r *Report) drop(err error) {
	r.Dropped = append(r.Dropped, err)
}

// Decode parses a document. Any parse failure is ErrMalformedScene.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrMalformedScene, err)
	}
	return &doc, nil
}

func checkVersion(v string) error {
	if v == "" {
		return nil // written before versioning
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", engine.ErrSceneVersion, v, err)
	}
	if !supportedVersions.Check(sv) {
		return fmt.Errorf("%w: %s", engine.ErrSceneVersion, v)
	}
	return nil
}

// validate checks the fields every record needs before anything is built.
func validate(doc *Document) error {
	for i, o := range doc.Objects {
		if o.ID == nil {
			return fmt.Errorf("%w: objects[%d] has no id", engine.ErrMalformedScene, i)
		}
		if o.Type == "" {
			return fmt.Errorf("%w: objects[%d] has no type", engine.ErrMalformedScene, i)
		}
	}
	for i, o := range doc.FbxModels {
		if o.ID == nil {
			return fmt.Errorf("%w: fbxModels[%d] has no id", engine.ErrMalformedScene, i)
		}
	}
	return nil
}

// Prepared is a parsed scene whose meshes have been resolved. Apply adds it
// to the editor.
type Prepared struct {
	doc    *Document
	meshes []Object
	assets []assetResult
}

// Prepare parses a document from r and loads every mesh it needs, waiting
// for all loads whether they succeed or not. It never touches the editor,
// so it may run off the frame thread.
func (im *Importer) Prepare(ctx context.Context, r io.Reader) (*Prepared, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	p := &Prepared{doc: doc}
	for _, o := range doc.Objects {
		if o.Type == string(engine.KindMesh) {
			p.meshes = append(p.meshes, o)
		}
	}
	p.meshes = append(p.meshes, doc.FbxModels...)
	p.assets = im.loadAssets(ctx, p.meshes)
	return p, nil
}

// Apply adds a prepared scene to the editor: entities first, then
// connections. Records that cannot be restored are skipped and listed in
// the report. It must run on the goroutine that owns the editor.
func (im *Importer) Apply(p *Prepared) *Report {
	doc := p.doc
	im.ed.PauseSimulation()
	im.ed.Cancel()

	// Fresh ids minted for colliding records must clear every id in the file.
	maxID := 0
	for _, o := range append(doc.Objects[:len(doc.Objects):len(doc.Objects)], doc.FbxModels...) {
		maxID = max(maxID, *o.ID)
	}
	im.ed.Entities.Advance(maxID + 1)

	rep := &Report{}
	byID := make(map[int]*engine.Entity, len(doc.Objects)+len(doc.FbxModels))

	for _, o := range doc.Objects {
		if o.Type != string(engine.KindMesh) {
			im.restoreEntity(rep, byID, o, nil)
		}
	}
	for i, res := range p.assets {
		o := p.meshes[i]
		if res.err != nil {
			im.log.Warn("mesh not loaded", log.Int("id", *o.ID), log.String("path", o.FilePath), log.Error(res.err))
			im.ed.Notify(fmt.Sprintf("Skipped %s: %v", displayName(o), res.err), true)
			rep.drop(fmt.Errorf("object %d: %w", *o.ID, res.err))
			continue
		}
		im.restoreEntity(rep, byID, o, res.asset)
	}

	im.restoreSticks(rep, byID, doc.Sticks)
	im.restoreMotors(rep, byID, doc.Motors)
	im.restoreGlues(rep, byID, doc.Glues)
	for _, o := range doc.Objects {
		if o.Type == string(engine.KindDualMotor) || o.IsDualMotor {
			im.restoreDualMotor(rep, byID, o)
		}
	}

	im.ed.Sync()
	im.ed.Hooks.ConnectionsChanged.Invoke()

	msg := fmt.Sprintf("Imported %d objects and %d connections", rep.Entities, rep.Connections)
	if n := len(rep.Dropped); n > 0 {
		msg += fmt.Sprintf(", skipped %d", n)
	}
	im.ed.Notify(msg, false)
	im.log.Info("scene imported",
		log.Int("entities", rep.Entities), log.Int("connections", rep.Connections), log.Int("dropped", len(rep.Dropped)))
	return rep
}

// Import prepares and applies a document in one call. A document that does
// not parse changes nothing, the id counter included.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Report, error) {
	p, err := im.Prepare(ctx, r)
	if err != nil {
		im.ed.Notify(fmt.Sprintf("Import failed: %v", err), true)
		return nil, err
	}
	return im.Apply(p), nil
}

func displayName(o Object) string {
	if o.Name != "" {
		return o.Name
	}
	return fmt.Sprintf("%s %d", o.Type, *o.ID)
}

func (im *Importer) restoreEntity(rep *Report, byID map[int]*engine.Entity, o Object, asset *engine.MeshAsset) {
	kind := engine.Kind(o.Type)
	if asset != nil {
		kind = engine.KindMesh
	}
	spec := editor.EntitySpec{
		ID:   *o.ID,
		Kind: kind,
		Name: o.Name,
		Transform: engine.Transform{
			Position: o.Position.Vector3(),
			Rotation: rl.QuaternionIdentity(),
		},
		Dims:  dimsOf(o),
		Mass:  o.Mass,
		Fixed: o.IsFixed,
		Asset: asset,
		Meta:  scrub(o.Meta),
	}
	if o.Rotation != nil {
		spec.Transform.Rotation = rl.QuaternionNormalize(o.Rotation.Quaternion())
	}
	if o.Color != nil {
		spec.Color = engine.ColorFromHex(*o.Color)
	}

	if prev := byID[*o.ID]; prev != nil {
		err := fmt.Errorf("%w: object id %d repeats %s", engine.ErrMalformedScene, *o.ID, prev.Name)
		im.log.Warn("duplicate object skipped", log.Int("id", *o.ID), log.String("type", o.Type))
		rep.drop(err)
		return
	}

	e, err := im.ed.AddEntity(spec)
	if err != nil {
		im.log.Warn("object skipped", log.Int("id", *o.ID), log.String("type", o.Type), log.Error(err))
		rep.drop(fmt.Errorf("object %d: %w", *o.ID, err))
		return
	}
	if e.ID != *o.ID {
		im.log.Debug("object id remapped", log.Int("from", *o.ID), log.Int("to", e.ID))
	}
	byID[*o.ID] = e
	rep.Entities++
}

type assetResult struct {
	asset *engine.MeshAsset
	err   error
}

// loadAssets resolves every mesh concurrently and waits for all of them,
// whether they succeed or not.
func (im *Importer) loadAssets(ctx context.Context, objs []Object) []assetResult {
	results := make([]assetResult, len(objs))
	if len(objs) == 0 {
		return results
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, o := range objs {
		g.Go(func() error {
			asset, err := im.loadAsset(ctx, o)
			results[i] = assetResult{asset: asset, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (im *Importer) loadAsset(ctx context.Context, o Object) (*engine.MeshAsset, error) {
	ref := AssetRef{EntityID: *o.ID, Name: displayName(o), Path: o.FilePath, Scale: 1}
	if o.Scale != nil {
		ref.Scale = o.Scale.X
	}
	if o.CenterOfGravity != nil {
		ref.CenterOfGravity = o.CenterOfGravity.Vector3()
	}
	if im.loader == nil {
		return nil, fmt.Errorf("%w: no asset loader", engine.ErrMissingAsset)
	}

	asset, err := im.loader.LoadAsset(ctx, ref)
	if err == nil || !errors.Is(err, engine.ErrMissingAsset) {
		return asset, err
	}

	// one prompt at a time
	im.promptMu.Lock()
	path, perr := im.prompter.PromptAsset(ctx, ref)
	im.promptMu.Unlock()
	if perr != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrMissingAsset, perr)
	}
	if path == "" {
		return nil, err
	}
	ref.Path = path
	return im.loader.LoadAsset(ctx, ref)
}

func endpoints(byID map[int]*engine.Entity, kind joints.Kind, id FlexID, aID, bID int) (a, b *engine.Entity, err error) {
	a, b = byID[aID], byID[bID]
	if a == nil || b == nil {
		return nil, nil, fmt.Errorf("%s %d: %w: objects %d and %d", kind, id, engine.ErrDanglingReference, aID, bID)
	}
	return a, b, nil
}

func localOr(p *Vec3) rl.Vector3 {
	if p == nil {
		return rl.Vector3{}
	}
	return p.Vector3()
}

func (im *Importer) skip(rep *Report, err error) {
	im.log.Warn("connection skipped", log.Error(err))
	rep.drop(err)
}

func (im *Importer) restoreSticks(rep *Report, byID map[int]*engine.Entity, recs []Stick) {
	store := im.ed.Connections
	for _, rec := range recs {
		a, b, err := endpoints(byID, joints.KindStick, rec.ID, rec.Object1ID, rec.Object2ID)
		if err != nil {
			im.skip(rep, err)
			continue
		}
		st, err := store.CreateStick(a, b, a.Transform.Apply(localOr(rec.Point1)), b.Transform.Apply(localOr(rec.Point2)), rec.IsRigid)
		if err != nil {
			im.skip(rep, fmt.Errorf("stick %d: %w", rec.ID, err))
			continue
		}
		store.Renumber(st, int(rec.ID))
		if rec.Stiffness != nil {
			if err := store.SetStiffness(st, *rec.Stiffness); err != nil {
				im.log.Warn("stick stiffness", log.Int("id", st.ID()), log.Error(err))
			}
		}
		rep.Connections++
	}
}

func (im *Importer) restoreMotors(rep *Report, byID map[int]*engine.Entity, recs []Motor) {
	store := im.ed.Connections
	for _, rec := range recs {
		a, b, err := endpoints(byID, joints.KindMotor, rec.ID, rec.Object1ID, rec.Object2ID)
		if err != nil {
			im.skip(rep, err)
			continue
		}
		pa, pb := a.Transform.Apply(localOr(rec.Point1)), b.Transform.Apply(localOr(rec.Point2))
		m, err := store.CreateMotor(a, b, &pa, &pb, rec.IsRigid)
		if err != nil {
			im.skip(rep, fmt.Errorf("motor %d: %w", rec.ID, err))
			continue
		}
		store.Renumber(m, int(rec.ID))
		m.Speed = rec.Speed
		if rec.Force != nil && *rec.Force > 0 {
			m.Force = *rec.Force
		}
		if rec.Stiffness != nil {
			if err := store.SetStiffness(m, *rec.Stiffness); err != nil {
				im.log.Warn("motor stiffness", log.Int("id", m.ID()), log.Error(err))
			}
		}
		rep.Connections++
	}
}

func (im *Importer) restoreGlues(rep *Report, byID map[int]*engine.Entity, recs []Glue) {
	store := im.ed.Connections
	for _, rec := range recs {
		a, b, err := endpoints(byID, joints.KindGlue, rec.ID, rec.Object1ID, rec.Object2ID)
		if err != nil {
			im.skip(rep, err)
			continue
		}
		g, err := store.CreateGlue(a, b, nil, nil)
		if err != nil {
			im.skip(rep, fmt.Errorf("glue %d: %w", rec.ID, err))
			continue
		}
		store.Renumber(g, int(rec.ID))
		if rec.RelativePosition != nil && rec.RelativeQuaternion != nil {
			g.Relative = &engine.Transform{
				Position: rec.RelativePosition.Vector3(),
				Rotation: rl.QuaternionNormalize(rec.RelativeQuaternion.Quaternion()),
			}
		} else {
			g.Relative = nil
			im.log.Warn("glue has no relative pose, follower will not track its leader while editing", log.Int("id", g.ID()))
		}
		rep.Connections++
	}
}

func (im *Importer) restoreDualMotor(rep *Report, byID map[int]*engine.Entity, o Object) {
	housing := byID[*o.ID]
	if housing == nil || housing.Kind != engine.KindDualMotor {
		return
	}
	store := im.ed.Connections
	d := store.DualMotor(housing.ID)
	if d == nil {
		d = store.AddDualMotor(housing, 0, 0)
	}
	if o.Speed != nil {
		d.Speed = *o.Speed
	}
	if o.Force != nil && *o.Force > 0 {
		d.Force = *o.Force
	}
	for _, c := range o.Connections {
		target := byID[c.ObjectID]
		if target == nil {
			im.skip(rep, fmt.Errorf("dual motor %d cube %d: %w: object %d", *o.ID, c.CubeNumber, engine.ErrDanglingReference, c.ObjectID))
			continue
		}
		if err := store.Attach(d, engine.Cube(c.CubeNumber), target); err != nil {
			im.skip(rep, fmt.Errorf("dual motor %d: %w", *o.ID, err))
		}
	}
	if d.Attached() > 0 {
		rep.Connections++
	}
}
