package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventInvokeOrder(t *testing.T) {
	var e Event
	var got []int
	e.AddListener(func() { got = append(got, 1) })
	e.AddListener(func() { got = append(got, 2) })
	e.AddListener(nil)

	e.Invoke()
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 2, e.GetListenerCount())
}

func TestEventRemoveListener(t *testing.T) {
	var e EventWithArg[int]
	sum := 0
	id := e.AddListener(func(v int) { sum += v })
	e.AddListener(func(v int) { sum += 10 * v })

	e.Invoke(1)
	e.RemoveListener(id)
	e.Invoke(1)

	assert.Equal(t, 21, sum)
	assert.Equal(t, 1, e.GetListenerCount())
}

func TestEventListenerRemovesItselfWhileFiring(t *testing.T) {
	var e Event
	calls := 0
	var id Subscription
	id = e.AddListener(func() {
		calls++
		e.RemoveListener(id)
	})
	e.AddListener(func() { calls++ })

	e.Invoke()
	e.Invoke()
	assert.Equal(t, 3, calls)
}
