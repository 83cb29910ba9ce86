package editor

import (
	"fmt"
	"projector/internal/engine"
	"projector/internal/joints"

	"github.com/chewxy/math32"
)

type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

func (d Direction) String() string {
	if d == CounterClockwise {
		return "counter-clockwise"
	}
	return "clockwise"
}

// directed keeps speed's magnitude, or uses fallback when it is zero, and
// signs it for d.
func directed(speed, fallback float32, d Direction) float32 {
	mag := math32.Abs(speed)
	if mag == 0 {
		mag = fallback
	}
	if d == CounterClockwise {
		return -mag
	}
	return mag
}

// driveMotor pushes speed and force to a live hinge. Outside a simulation
// the values are only stored and applied by StartSimulation.
func (ed *Editor) driveMotor(c engine.ConstraintID, speed, force float32) {
	if !ed.simulating || c == 0 {
		return
	}
	if speed == 0 {
		ed.physics.DisableMotor(c)
		return
	}
	ed.physics.EnableMotor(c)
	ed.physics.SetMotorSpeed(c, speed)
	ed.physics.SetMotorMaxForce(c, force)
}

func (ed *Editor) motor(id int) (*joints.Motor, error) {
	m := ed.Connections.Motor(id)
	if m == nil {
		return nil, fmt.Errorf("motor %d: %w", id, engine.ErrNotFound)
	}
	return m, nil
}

func (ed *Editor) SetMotorSpeed(id int, speed float32) error {
	m, err := ed.motor(id)
	if err != nil {
		return err
	}
	m.Speed = speed
	ed.driveMotor(m.Constraint, m.Speed, m.Force)
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}

// SetMotorForce changes the maximum torque. A running motor picks it up at once.
func (ed *Editor) SetMotorForce(id int, force float32) error {
	m, err := ed.motor(id)
	if err != nil {
		return err
	}
	m.Force = force
	if ed.simulating && m.Constraint != 0 && m.Speed != 0 {
		ed.physics.SetMotorMaxForce(m.Constraint, force)
	}
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}

func (ed *Editor) SetMotorDirection(id int, d Direction) error {
	m, err := ed.motor(id)
	if err != nil {
		return err
	}
	m.Speed = directed(m.Speed, ed.cfg.MotorDirectionSpeed, d)
	ed.driveMotor(m.Constraint, m.Speed, m.Force)
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}

// StopMotor zeroes the speed. A running motor is disabled; otherwise no
// physics call is made.
func (ed *Editor) StopMotor(id int) error {
	m, err := ed.motor(id)
	if err != nil {
		return err
	}
	m.Speed = 0
	if ed.simulating && m.Constraint != 0 {
		ed.physics.DisableMotor(m.Constraint)
	}
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}

func (ed *Editor) SetDualMotorSpeed(housingID int, speed float32) error {
	d, err := ed.dualMotor(housingID)
	if err != nil {
		return err
	}
	d.Speed = speed
	ed.driveMotor(d.Hinge, d.Speed, d.Force)
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}

func (ed *Editor) SetDualMotorForce(housingID int, force float32) error {
	d, err := ed.dualMotor(housingID)
	if err != nil {
		return err
	}
	d.Force = force
	if ed.simulating && d.Hinge != 0 && d.Speed != 0 {
		ed.physics.SetMotorMaxForce(d.Hinge, force)
	}
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}

func (ed *Editor) SetDualMotorDirection(housingID int, dir Direction) error {
	d, err := ed.dualMotor(housingID)
	if err != nil {
		return err
	}
	d.Speed = directed(d.Speed, ed.cfg.DualMotorDirectionSpeed, dir)
	ed.driveMotor(d.Hinge, d.Speed, d.Force)
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}

func (ed *Editor) StopDualMotor(housingID int) error {
	d, err := ed.dualMotor(housingID)
	if err != nil {
		return err
	}
	d.Speed = 0
	if ed.simulating && d.Hinge != 0 {
		ed.physics.DisableMotor(d.Hinge)
	}
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}

// SetConnectionStiffness updates a stick or motor's 0-100 stiffness.
func (ed *Editor) SetConnectionStiffness(k joints.Kind, id int, ui float32) error {
	c := ed.Connections.Find(k, id)
	if c == nil {
		return fmt.Errorf("%s %d: %w", k, id, engine.ErrNotFound)
	}
	if err := ed.Connections.SetStiffness(c, ui); err != nil {
		return err
	}
	ed.Hooks.ConnectionsChanged.Invoke()
	return nil
}

// Summaries describes every connection for the connection list.
func (ed *Editor) Summaries() []joints.Summary {
	return ed.Connections.Summaries()
}
