package editor

import (
	"projector/internal/engine"
	"projector/internal/joints"
	"projector/internal/log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Sync brings visuals and bodies into agreement. While simulating, bodies
// drive entity poses; otherwise entity poses drive bodies. Lines, motor
// arrows, glue followers and fixed indicators follow, in that order. Links
// touching a follower that moved are redrawn after it.
func (ed *Editor) Sync() {
	ed.syncEntities()
	for _, st := range ed.Connections.Sticks {
		ed.syncLine(&st.Link)
	}
	for _, m := range ed.Connections.Motors {
		ed.syncLine(&m.Link)
	}
	for _, g := range ed.Connections.Glues {
		ed.syncLine(&g.Link)
	}
	for _, m := range ed.Connections.Motors {
		ed.syncArrow(m)
	}
	if !ed.simulating {
		var moved []*engine.Entity
		for _, g := range ed.Connections.Glues {
			if ed.syncFollower(g) {
				moved = append(moved, g.Follower())
			}
		}
		for _, f := range moved {
			for _, c := range ed.Connections.ForEntity(f) {
				ed.syncConnection(c)
			}
		}
	}
	ed.syncIndicators()
	ed.Hooks.Synced.Invoke()
}

func (ed *Editor) syncEntities() {
	for _, e := range ed.Entities.All() {
		if ed.simulating {
			e.Transform = ed.physics.BodyTransform(e.Body)
		} else {
			ed.physics.SetBodyTransform(e.Body, e.Transform)
		}
		ed.renderer.SetTransform(e.Visual, e.Transform, e.Scale())
	}
}

func (ed *Editor) syncLine(l *joints.Link) {
	if l.Line == 0 {
		return
	}
	a, b := l.WorldPoints()
	ed.renderer.SetLine(l.Line, a, b)
}

func (ed *Editor) syncArrow(m *joints.Motor) {
	if m.Arrow == 0 {
		return
	}
	a, b := m.WorldPoints()
	mid := engine.Midpoint(a, b)
	ed.renderer.SetLine(m.Arrow, mid, rl.Vector3Add(mid, rl.Vector3Scale(m.Axis(), joints.ArrowLength)))
}

// syncFollower drags a glue follower along with its leader while editing.
func (ed *Editor) syncFollower(g *joints.Glue) bool {
	if g.Relative == nil {
		ed.log.Debug("glue without relative pose skipped", log.Int("glue", g.ID()))
		return false
	}
	f := g.Follower()
	f.Transform = g.Leader().Transform.Compose(*g.Relative)
	ed.physics.SetBodyTransform(f.Body, f.Transform)
	ed.renderer.SetTransform(f.Visual, f.Transform, f.Scale())
	return true
}

func (ed *Editor) syncIndicators() {
	for _, e := range ed.Entities.All() {
		if e.FixedIndicator != 0 {
			ed.renderer.SetTransform(e.FixedIndicator, e.Transform, e.Scale())
		}
	}
}

// syncConnection refreshes one new connection's visuals without a full pass.
func (ed *Editor) syncConnection(c joints.Connection) {
	switch c := c.(type) {
	case *joints.Stick:
		ed.syncLine(&c.Link)
	case *joints.Motor:
		ed.syncLine(&c.Link)
		ed.syncArrow(c)
	case *joints.Glue:
		ed.syncLine(&c.Link)
	}
}
