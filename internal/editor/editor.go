// Package editor is the sandbox's scene controller. It owns the entity
// registry and the connection store, runs the authoring state machine and
// the synchronization pass, and exposes every operation the UI drives.
package editor

import (
	"errors"
	"projector/internal/config"
	"projector/internal/engine"
	"projector/internal/joints"
	"projector/internal/log"
	"projector/internal/notify"
)

// ErrSimulating is returned by edit operations that need the simulation paused.
var ErrSimulating = errors.New("simulation running")

// Hooks are the observer lists other components register into at startup.
type Hooks struct {
	EntityCreated      engine.EventWithArg[*engine.Entity]
	EntityDeleted      engine.EventWithArg[*engine.Entity]
	ConnectionsChanged engine.Event
	SelectionChanged   engine.Event
	ModeChanged        engine.EventWithArg[Mode]
	SimulationChanged  engine.EventWithArg[bool]
	// EmptyChanged fires with true when the last entity goes away and with
	// false when the first one arrives.
	EmptyChanged engine.EventWithArg[bool]
	// Synced fires at the end of every synchronization pass.
	Synced engine.Event
}

type Editor struct {
	cfg      config.Editor
	physics  engine.Physics
	renderer engine.Renderer
	notifier notify.Notifier
	log      log.Log

	Entities    *engine.Registry
	Connections *joints.Store
	Hooks       Hooks

	auth      authoring
	selection Selection

	simulating    bool
	fixedTimestep float32
	startPoses    map[int]engine.Transform
}

func New(cfg config.Config, physics engine.Physics, renderer engine.Renderer, notifier notify.Notifier, logger log.Log) *Editor {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	store := joints.NewStore(physics, renderer, logger.With(log.String("component", "joints")))
	store.Stiffness = cfg.Editor.DefaultStiffness
	store.MotorForce = cfg.Editor.MotorForce

	return &Editor{
		cfg:           cfg.Editor,
		physics:       physics,
		renderer:      renderer,
		notifier:      notifier,
		log:           logger.With(log.String("component", "editor")),
		Entities:      engine.NewRegistry(),
		Connections:   store,
		fixedTimestep: cfg.Physics.FixedTimestep,
		startPoses:    make(map[int]engine.Transform),
	}
}

func (ed *Editor) Config() config.Editor {
	return ed.cfg
}

func (ed *Editor) Log() log.Log {
	return ed.log
}

func (ed *Editor) Notify(message string, isError bool) {
	ed.notifier.Notify(message, isError)
}

func (ed *Editor) Simulating() bool {
	return ed.simulating
}

// StartSimulation records every pose for ResetPositions, wakes the bodies
// and hands authority over transforms to the physics world.
func (ed *Editor) StartSimulation() {
	if ed.simulating {
		return
	}
	ed.Cancel()
	ed.Sync()

	clear(ed.startPoses)
	for _, e := range ed.Entities.All() {
		ed.startPoses[e.ID] = e.Transform
		ed.physics.SetBodyTransform(e.Body, e.Transform)
		ed.physics.ResetVelocity(e.Body)
		if !e.Fixed {
			ed.physics.WakeUp(e.Body)
		}
	}

	ed.simulating = true
	for _, m := range ed.Connections.Motors {
		if m.Speed != 0 {
			ed.driveMotor(m.Constraint, m.Speed, m.Force)
		}
	}
	for _, d := range ed.Connections.DualMotors {
		if d.Speed != 0 {
			ed.driveMotor(d.Hinge, d.Speed, d.Force)
		}
	}

	ed.log.Info("simulation started", log.Int("entities", ed.Entities.Len()), log.Int("connections", ed.Connections.Len()))
	ed.Hooks.SimulationChanged.Invoke(true)
}

// PauseSimulation stops stepping. Bodies keep their current poses.
func (ed *Editor) PauseSimulation() {
	if !ed.simulating {
		return
	}
	ed.simulating = false
	for _, e := range ed.Entities.All() {
		ed.physics.ResetVelocity(e.Body)
	}
	ed.log.Info("simulation paused")
	ed.Hooks.SimulationChanged.Invoke(false)
}

// ResetPositions puts every entity back where StartSimulation found it and
// returns to edit mode.
func (ed *Editor) ResetPositions() {
	ed.PauseSimulation()
	for _, e := range ed.Entities.All() {
		pose, ok := ed.startPoses[e.ID]
		if !ok {
			continue
		}
		e.Transform = pose
		ed.physics.SetBodyTransform(e.Body, pose)
		ed.physics.ResetVelocity(e.Body)
	}
	ed.Sync()
	ed.log.Info("positions reset", log.Int("entities", len(ed.startPoses)))
}

// Tick advances the simulation by dt seconds when running, then syncs.
func (ed *Editor) Tick(dt float32) {
	if ed.simulating {
		ed.physics.Step(ed.fixedTimestep, dt)
	}
	ed.Sync()
}

// Clear removes every entity and connection, leaving an empty scene. The id
// counter keeps running.
func (ed *Editor) Clear() {
	ed.PauseSimulation()
	ed.Cancel()
	for _, e := range ed.Entities.All() {
		if err := ed.DeleteEntity(e.ID); err != nil {
			ed.log.Warn("clear: delete entity", log.Int("id", e.ID), log.Error(err))
		}
	}
	clear(ed.startPoses)
}
