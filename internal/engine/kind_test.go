package engine

import (
	"errors"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("dual-motor")
	assert.NoError(t, err)
	assert.Equal(t, KindDualMotor, k)

	_, err = ParseKind("teapot")
	assert.True(t, errors.Is(err, ErrUnsupportedKind))
}

func TestDefaultDimensionsAreValid(t *testing.T) {
	for _, k := range Kinds {
		if !DefaultDimensions(k).Valid(k) {
			t.Errorf("default dimensions for %s are not valid", k)
		}
	}
}

func TestDualMotorCubes(t *testing.T) {
	d := DualMotorDimensions
	assert.InDelta(t, 0.08, d.CubeSize(), 1e-6)
	assert.Equal(t, rl.Vector3{X: -0.16}, d.CubeOffset(CubeA))
	assert.InDelta(t, 0.16, d.CubeOffset(CubeB).X, 1e-6)
	assert.False(t, Cube(3).Valid())
}

func TestColorHexRoundTrip(t *testing.T) {
	c := rl.Color{R: 0x12, G: 0x34, B: 0x56, A: 255}
	assert.Equal(t, uint32(0x123456), ColorHex(c))
	assert.Equal(t, c, ColorFromHex(0x123456))
}

func TestEntityShape(t *testing.T) {
	e := &Entity{Kind: KindSphere, Dims: Dimensions{Radius: 2}}
	assert.Equal(t, ShapeSphere, e.Shape().Type)

	box := &Entity{Kind: KindBox, Dims: Dimensions{Width: 2, Height: 4, Length: 6}}
	assert.Equal(t, rl.Vector3{X: 1, Y: 2, Z: 3}, box.Shape().HalfExtents)

	box.Mass = 3
	box.Fixed = true
	assert.Zero(t, box.BodyMass())
}
