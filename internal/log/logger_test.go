package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLoggerLevelRoundTrip(t *testing.T) {
	l := Nop()
	l.SetLevel(LevelWarn)
	assert.Equal(t, LevelWarn, l.GetLevel())

	child := l.With(String("component", "test"))
	assert.Equal(t, LevelWarn, child.GetLevel())
}

func TestToZapFieldsCoversTypes(t *testing.T) {
	fields := toZapFields(
		Bool("b", true),
		Duration("d", time.Second),
		Float64("f64", 1.5),
		Float32("f32", 2.5),
		Int("i", 3),
		String("s", "x"),
		Error(errors.New("boom")),
		Any("a", []int{1}),
	)
	assert.Len(t, fields, 8)
	assert.Equal(t, "error", fields[6].Key)
}
