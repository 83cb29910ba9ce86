package joints

import (
	"fmt"
	"projector/internal/engine"
)

// Summary is one row of the connection list.
type Summary struct {
	Kind      Kind
	ID        int
	EntityA   int // zero when unattached
	EntityB   int
	Label     string
	Rigid     bool
	Stiffness float32
	Speed     float32
	Force     float32
}

// Summaries describes every connection for list rendering.
func (s *Store) Summaries() []Summary {
	out := make([]Summary, 0, s.Len())
	for _, c := range s.All() {
		out = append(out, Summarize(c))
	}
	return out
}

func Summarize(c Connection) Summary {
	a, b := c.Endpoints()
	sum := Summary{Kind: c.Kind(), ID: c.ID(), EntityA: entityID(a), EntityB: entityID(b)}
	switch c := c.(type) {
	case *Stick:
		sum.Rigid = c.Rigid
		sum.Stiffness = c.Stiffness
		sum.Label = fmt.Sprintf("%s: %s ↔ %s", rigidName("Stick", c.Rigid), name(a), name(b))
	case *Motor:
		sum.Rigid = c.Rigid
		sum.Stiffness = c.Stiffness
		sum.Speed = c.Speed
		sum.Force = c.Force
		sum.Label = fmt.Sprintf("%s: %s ↔ %s (%.2f rad/s)", rigidName("Motor", c.Rigid), name(a), name(b), c.Speed)
	case *Glue:
		sum.Rigid = true
		sum.Label = fmt.Sprintf("Glue: %s → %s", name(a), name(b))
	case *DualMotorLink:
		sum.Speed = c.Speed
		sum.Force = c.Force
		sum.Label = fmt.Sprintf("Dual Motor #%d: %s | %s (%d/2 attached)", c.Housing.ID, name(a), name(b), c.Attached())
	}
	return sum
}

func rigidName(base string, rigid bool) string {
	if rigid {
		return "Rigid " + base
	}
	return base
}

func name(e *engine.Entity) string {
	if e == nil {
		return "-"
	}
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("#%d", e.ID)
}

func entityID(e *engine.Entity) int {
	if e == nil {
		return 0
	}
	return e.ID
}
