package editor

import (
	"fmt"
	"projector/internal/engine"
	"projector/internal/joints"
	"projector/internal/log"
	"slices"
)

// Selection holds the selected entities and connections in selection order.
type Selection struct {
	Entities    []*engine.Entity
	Connections []joints.Connection
}

func (s Selection) Empty() bool {
	return len(s.Entities) == 0 && len(s.Connections) == 0
}

// Selection returns a copy of the current selection.
func (ed *Editor) Selection() Selection {
	return Selection{
		Entities:    slices.Clone(ed.selection.Entities),
		Connections: slices.Clone(ed.selection.Connections),
	}
}

// Select replaces the selection with e.
func (ed *Editor) Select(e *engine.Entity) {
	ed.selection = Selection{Entities: []*engine.Entity{e}}
	ed.Hooks.SelectionChanged.Invoke()
}

// ToggleSelect adds e to the selection, or removes it if already selected.
func (ed *Editor) ToggleSelect(e *engine.Entity) {
	if i := slices.Index(ed.selection.Entities, e); i >= 0 {
		ed.selection.Entities = slices.Delete(ed.selection.Entities, i, i+1)
	} else {
		ed.selection.Entities = append(ed.selection.Entities, e)
	}
	ed.Hooks.SelectionChanged.Invoke()
}

// SelectConnection selects c, keeping the rest of the selection when additive.
func (ed *Editor) SelectConnection(c joints.Connection, additive bool) {
	if !additive {
		ed.selection = Selection{}
	}
	if !slices.Contains(ed.selection.Connections, c) {
		ed.selection.Connections = append(ed.selection.Connections, c)
	}
	ed.Hooks.SelectionChanged.Invoke()
}

func (ed *Editor) ClearSelection() {
	if ed.selection.Empty() {
		return
	}
	ed.selection = Selection{}
	ed.Hooks.SelectionChanged.Invoke()
}

func (ed *Editor) deselect(e *engine.Entity) {
	i := slices.Index(ed.selection.Entities, e)
	if i < 0 {
		return
	}
	ed.selection.Entities = slices.Delete(ed.selection.Entities, i, i+1)
	ed.Hooks.SelectionChanged.Invoke()
}

// DeleteSelected removes the selected connections, then the selected entities.
func (ed *Editor) DeleteSelected() {
	sel := ed.Selection()
	if sel.Empty() {
		ed.notifier.Notify("Nothing selected", true)
		return
	}
	ed.ClearSelection()

	for _, c := range sel.Connections {
		ed.Connections.Remove(c)
	}
	if len(sel.Connections) > 0 {
		ed.Hooks.ConnectionsChanged.Invoke()
	}
	for _, e := range sel.Entities {
		if err := ed.DeleteEntity(e.ID); err != nil {
			ed.log.Warn("delete selected", log.Int("id", e.ID), log.Error(err))
		}
	}
	ed.notifier.Notify(fmt.Sprintf("Deleted %d object(s) and %d connection(s)",
		len(sel.Entities), len(sel.Connections)), false)
}

// DeleteConnection removes one connection by kind and id.
func (ed *Editor) DeleteConnection(k joints.Kind, id int) error {
	c := ed.Connections.Find(k, id)
	if c == nil {
		return fmt.Errorf("%s %d: %w", k, id, engine.ErrNotFound)
	}
	if i := slices.Index(ed.selection.Connections, c); i >= 0 {
		ed.selection.Connections = slices.Delete(ed.selection.Connections, i, i+1)
		ed.Hooks.SelectionChanged.Invoke()
	}
	ed.Connections.Remove(c)
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}

// SelectedMotors lists the motors touching any selected entity, plus any
// selected motor connection.
func (ed *Editor) SelectedMotors() []*joints.Motor {
	var out []*joints.Motor
	for _, m := range ed.Connections.Motors {
		picked := slices.Contains(ed.selection.Connections, joints.Connection(m))
		for _, e := range ed.selection.Entities {
			picked = picked || m.Involves(e)
		}
		if picked {
			out = append(out, m)
		}
	}
	return out
}

// SelectedDualMotor returns the link of the first selected housing.
func (ed *Editor) SelectedDualMotor() *joints.DualMotorLink {
	for _, e := range ed.selection.Entities {
		if e.Kind == engine.KindDualMotor {
			return ed.Connections.DualMotor(e.ID)
		}
	}
	return nil
}
