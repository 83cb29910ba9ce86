package world

import (
	"cmp"
	"projector/internal/assets"
	"projector/internal/engine"
	"projector/internal/log"
	"projector/internal/physics"
	"slices"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

var _ engine.Renderer = (*Renderer)(nil)

const (
	pickDistance   float32 = 500
	meshSegments           = 24
	indicatorColor         = 0xffd700
	indicatorGrow  float32 = 1.08
	arrowHead      float32 = 0.2
)

var lineStyles = map[engine.LineStyle]struct {
	color  rl.Color
	radius float32
}{
	engine.LineStick:      {rl.Color{R: 200, G: 200, B: 200, A: 255}, 0.025},
	engine.LineRigidStick: {rl.Color{R: 90, G: 90, B: 90, A: 255}, 0.04},
	engine.LineMotor:      {rl.Orange, 0.035},
	engine.LineRigidMotor: {rl.Red, 0.045},
	engine.LineGlue:       {rl.Purple, 0.02},
	engine.LinePreview:    {rl.Yellow, 0.015},
	engine.LineArrow:      {rl.SkyBlue, 0.02},
}

// Node is one drawable entity or indicator.
type Node struct {
	Geometry  engine.Geometry
	Transform engine.Transform
	Scale     rl.Vector3
	InScene   bool

	parts []part
	dirty bool
}

// part is one model of a node's visual subtree, placed in the node frame.
type part struct {
	model  rl.Model
	local  rl.Matrix
	shared bool // owned by the asset cache
}

type line struct {
	a, b  rl.Vector3
	style engine.LineStyle
}

// Renderer draws entity nodes and connection lines with raylib. Models are
// built lazily on the draw thread, so nodes may be created before a window
// exists.
type Renderer struct {
	// Camera is the view PickAt casts through.
	Camera *rl.Camera3D

	nodes map[engine.NodeID]*Node
	lines map[engine.LineID]*line
	next  uint32

	cache *assets.Cache
	log   log.Log

	screenToWorld func(screen rl.Vector2) rl.Ray
}

func NewRenderer(cache *assets.Cache, logger log.Log) *Renderer {
	r := &Renderer{
		nodes: make(map[engine.NodeID]*Node),
		lines: make(map[engine.LineID]*line),
		cache: cache,
		log:   logger.With(log.String("component", "renderer")),
	}
	r.screenToWorld = func(screen rl.Vector2) rl.Ray {
		return rl.GetScreenToWorldRay(screen, *r.Camera)
	}
	return r
}

func (r *Renderer) Node(n engine.NodeID) (*Node, bool) {
	node, ok := r.nodes[n]
	return node, ok
}

func (r *Renderer) NodeCount() int { return len(r.nodes) }
func (r *Renderer) LineCount() int { return len(r.lines) }

func (r *Renderer) CreateNode(g engine.Geometry) engine.NodeID {
	r.next++
	id := engine.NodeID(r.next)
	r.nodes[id] = &Node{
		Geometry:  g,
		Transform: engine.NewTransform(rl.Vector3{}),
		Scale:     rl.Vector3{X: 1, Y: 1, Z: 1},
		dirty:     true,
	}
	return id
}

func (r *Renderer) SetGeometry(n engine.NodeID, g engine.Geometry) {
	node, ok := r.nodes[n]
	if !ok {
		return
	}
	node.Geometry = g
	node.dirty = true
}

func (r *Renderer) SetTransform(n engine.NodeID, t engine.Transform, scale rl.Vector3) {
	if node, ok := r.nodes[n]; ok {
		node.Transform = t
		node.Scale = scale
	}
}

func (r *Renderer) SetColor(n engine.NodeID, c rl.Color) {
	if node, ok := r.nodes[n]; ok {
		node.Geometry.Color = c
	}
}

func (r *Renderer) AddToScene(n engine.NodeID) {
	if node, ok := r.nodes[n]; ok {
		node.InScene = true
	}
}

// RemoveFromScene releases the node. Its id is never handed out again.
func (r *Renderer) RemoveFromScene(n engine.NodeID) {
	node, ok := r.nodes[n]
	if !ok {
		return
	}
	unloadParts(node.parts)
	delete(r.nodes, n)
}

// PickAt casts a ray from the camera through a screen point and returns
// every node it crosses, nearest first. Indicators are never hit.
func (r *Renderer) PickAt(screen rl.Vector2) []engine.PickHit {
	if r.Camera == nil {
		return nil
	}
	return r.pick(r.screenToWorld(screen))
}

func (r *Renderer) pick(ray rl.Ray) []engine.PickHit {
	dir := rl.Vector3Normalize(ray.Direction)

	var hits []engine.PickHit
	for id, node := range r.nodes {
		if !node.InScene || node.Geometry.Indicator {
			continue
		}
		var hit physics.RaycastHit
		var ok bool
		if node.Geometry.Kind == engine.KindSphere {
			radius := node.Geometry.Dims.Radius * node.Scale.X
			hit, ok = physics.RaySphere(ray.Position, dir, node.Transform.Position, radius, pickDistance)
		} else {
			half := rl.Vector3Multiply(rl.Vector3Scale(node.Geometry.Dims.Extents(node.Geometry.Kind), 0.5), node.Scale)
			hit, ok = physics.RayBox(ray.Position, dir, node.Transform, half, pickDistance)
		}
		if ok {
			hits = append(hits, engine.PickHit{Node: id, Point: hit.Point, Distance: hit.Distance})
		}
	}

	slices.SortFunc(hits, func(a, b engine.PickHit) int {
		return cmp.Or(cmp.Compare(a.Distance, b.Distance), cmp.Compare(a.Node, b.Node))
	})
	return hits
}

func (r *Renderer) CreateLine(a, b rl.Vector3, style engine.LineStyle) engine.LineID {
	r.next++
	id := engine.LineID(r.next)
	r.lines[id] = &line{a: a, b: b, style: style}
	return id
}

func (r *Renderer) SetLine(l engine.LineID, a, b rl.Vector3) {
	if ln, ok := r.lines[l]; ok {
		ln.a, ln.b = a, b
	}
}

func (r *Renderer) CreateArrow(origin, dir rl.Vector3) engine.LineID {
	return r.CreateLine(origin, rl.Vector3Add(origin, dir), engine.LineArrow)
}

func (r *Renderer) RemoveLine(l engine.LineID) {
	delete(r.lines, l)
}

// Draw renders every node in the scene and every line. It must be called
// between BeginMode3D and EndMode3D.
func (r *Renderer) Draw(camera rl.Camera3D) {
	aspect := float32(rl.GetScreenWidth()) / float32(max(rl.GetScreenHeight(), 1))
	frustum := ExtractFrustum(camera, aspect)

	for _, node := range r.nodes {
		if !node.InScene {
			continue
		}
		ext := rl.Vector3Multiply(node.Geometry.Dims.Extents(node.Geometry.Kind), node.Scale)
		if !frustum.ContainsSphere(node.Transform.Position, rl.Vector3Length(ext)/2) {
			continue
		}
		if node.Geometry.Indicator {
			drawIndicator(node, ext)
			continue
		}
		if node.dirty {
			unloadParts(node.parts)
			node.parts = r.buildParts(node.Geometry)
			node.dirty = false
		}
		world := nodeMatrix(node)
		for _, p := range node.parts {
			p.model.Transform = rl.MatrixMultiply(p.local, world)
			rl.DrawModel(p.model, rl.Vector3Zero(), 1, node.Geometry.Color)
		}
	}

	for _, ln := range r.lines {
		style := lineStyles[ln.style]
		if ln.style != engine.LineArrow {
			rl.DrawCylinderEx(ln.a, ln.b, style.radius, style.radius, 6, style.color)
			continue
		}
		drawArrow(ln.a, ln.b, style.radius, style.color)
	}
}

// Unload frees every model, including cached mesh files. Nodes survive and
// are rebuilt on the next Draw.
func (r *Renderer) Unload() {
	for _, node := range r.nodes {
		unloadParts(node.parts)
		node.parts = nil
		node.dirty = true
	}
	r.cache.Unload()
}

func nodeMatrix(node *Node) rl.Matrix {
	scale := rl.MatrixScale(node.Scale.X, node.Scale.Y, node.Scale.Z)
	rot := rl.QuaternionToMatrix(node.Transform.Rotation)
	pos := node.Transform.Position
	trans := rl.MatrixTranslate(pos.X, pos.Y, pos.Z)
	return rl.MatrixMultiply(rl.MatrixMultiply(scale, rot), trans)
}

func unloadParts(parts []part) {
	for _, p := range parts {
		if !p.shared {
			rl.UnloadModel(p.model)
		}
	}
}

func owned(mesh rl.Mesh, local rl.Matrix) part {
	return part{model: rl.LoadModelFromMesh(mesh), local: local}
}

// buildParts creates the models for a geometry, each centered on the node
// origin. raylib generates cylinders and cones standing on y=0, so they are
// shifted down by half their height.
func (r *Renderer) buildParts(g engine.Geometry) []part {
	d := g.Dims
	switch g.Kind {
	case engine.KindSphere:
		return []part{owned(rl.GenMeshSphere(d.Radius, 16, 16), rl.MatrixIdentity())}

	case engine.KindCylinder:
		return []part{owned(rl.GenMeshCylinder(d.Radius, d.Height, meshSegments), rl.MatrixTranslate(0, -d.Height/2, 0))}

	case engine.KindCone:
		return []part{owned(rl.GenMeshCone(d.Radius, d.Height, meshSegments), rl.MatrixTranslate(0, -d.Height/2, 0))}

	case engine.KindTorus:
		// raylib's torus lies in the XY plane with the tube radius given as a
		// fraction of the ring.
		mesh := rl.GenMeshTorus(d.TubeRadius/d.Radius, d.Radius, meshSegments, 12)
		return []part{owned(mesh, rl.MatrixRotateX(math32.Pi/2))}

	case engine.KindWheel:
		return []part{wheelPart(d.Radius, d.Width, rl.Vector3{})}

	case engine.KindCar:
		return carParts(d)

	case engine.KindDualMotor:
		size := d.CubeSize()
		parts := []part{owned(rl.GenMeshCube(d.Width, d.Height, d.Length), rl.MatrixIdentity())}
		for _, c := range []engine.Cube{engine.CubeA, engine.CubeB} {
			off := d.CubeOffset(c)
			parts = append(parts, owned(rl.GenMeshCube(size, size, size), rl.MatrixTranslate(off.X, off.Y, off.Z)))
		}
		return parts

	case engine.KindMesh:
		if g.AssetPath != "" {
			if model, ok := r.cache.Model(g.AssetPath); ok {
				return []part{{model: model, local: rl.MatrixIdentity(), shared: true}}
			}
			r.log.Warn("mesh not drawable, showing its bounds", log.String("path", g.AssetPath))
		}
	}

	ext := d.Extents(g.Kind)
	return []part{owned(rl.GenMeshCube(ext.X, ext.Y, ext.Z), rl.MatrixIdentity())}
}

// wheelPart is a cylinder rolling about X, centered on at.
func wheelPart(radius, width float32, at rl.Vector3) part {
	local := rl.MatrixMultiply(
		rl.MatrixMultiply(rl.MatrixTranslate(0, -width/2, 0), rl.MatrixRotateZ(-math32.Pi/2)),
		rl.MatrixTranslate(at.X, at.Y, at.Z))
	return owned(rl.GenMeshCylinder(radius, width, meshSegments), local)
}

// carParts is a chassis with a wheel at each corner, axles along Z.
func carParts(d engine.Dimensions) []part {
	parts := []part{owned(rl.GenMeshCube(d.Width, d.Height, d.Length), rl.MatrixIdentity())}
	radius := d.Height * 0.6
	width := d.Length * 0.2
	for _, sx := range []float32{-1, 1} {
		for _, sz := range []float32{-1, 1} {
			at := rl.Vector3{X: sx * d.Width * 0.35, Y: -d.Height / 2, Z: sz * (d.Length/2 + width/2)}
			local := rl.MatrixMultiply(
				rl.MatrixMultiply(rl.MatrixTranslate(0, -width/2, 0), rl.MatrixRotateX(math32.Pi/2)),
				rl.MatrixTranslate(at.X, at.Y, at.Z))
			parts = append(parts, owned(rl.GenMeshCylinder(radius, width, meshSegments), local))
		}
	}
	return parts
}

// drawIndicator outlines the node's bounds with thick edges.
func drawIndicator(node *Node, ext rl.Vector3) {
	DrawOutline(node.Transform, rl.Vector3Scale(ext, indicatorGrow/2), 0.015, engine.ColorFromHex(indicatorColor))
}

// DrawOutline draws the twelve edges of an oriented box. A zero thickness
// draws plain lines.
func DrawOutline(t engine.Transform, half rl.Vector3, thickness float32, color rl.Color) {
	var c [8]rl.Vector3
	for i := range c {
		local := half
		if i&1 != 0 {
			local.X = -local.X
		}
		if i&2 != 0 {
			local.Y = -local.Y
		}
		if i&4 != 0 {
			local.Z = -local.Z
		}
		c[i] = t.Apply(local)
	}
	for i := range c {
		for _, bit := range []int{1, 2, 4} {
			j := i | bit
			if j == i {
				continue
			}
			if thickness > 0 {
				rl.DrawCylinderEx(c[i], c[j], thickness, thickness, 4, color)
			} else {
				rl.DrawLine3D(c[i], c[j], color)
			}
		}
	}
}

func drawArrow(origin, tip rl.Vector3, radius float32, color rl.Color) {
	length := rl.Vector3Distance(origin, tip)
	if length == 0 {
		return
	}
	head := min(arrowHead, length/2)
	dir := rl.Vector3Scale(rl.Vector3Subtract(tip, origin), 1/length)
	neck := rl.Vector3Subtract(tip, rl.Vector3Scale(dir, head))
	rl.DrawCylinderEx(origin, neck, radius, radius, 6, color)
	rl.DrawCylinderEx(neck, tip, radius*3, 0, 8, color)
}
