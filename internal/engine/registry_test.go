package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryIDsAreMonotonic(t *testing.T) {
	r := NewRegistry()
	var ids []int
	for i := 0; i < 5; i++ {
		e := &Entity{ID: r.NextID(), Kind: KindBox}
		r.Add(e)
		ids = append(ids, e.ID)
	}

	r.Remove(r.FindByID(ids[4]))
	r.Remove(r.FindByID(ids[1]))

	next := r.NextID()
	for _, id := range ids {
		if next <= id {
			t.Errorf("id %d reused or lower than prior id %d", next, id)
		}
	}
}

func TestRegistryAddAdvancesPastImportedID(t *testing.T) {
	r := NewRegistry()
	for _, id := range []int{3, 7, 12} {
		r.Add(&Entity{ID: id})
	}
	assert.GreaterOrEqual(t, r.NextID(), 13)
}

func TestRegistryRestore(t *testing.T) {
	r := NewRegistry()
	r.NextID()
	mark := r.Watermark()
	r.Advance(100)
	assert.Equal(t, 100, r.Watermark())

	r.Restore(mark)
	assert.Equal(t, mark, r.NextID())
}

func TestRegistryAdvanceNeverRewinds(t *testing.T) {
	r := NewRegistry()
	r.Advance(50)
	r.Advance(10)
	assert.Equal(t, 50, r.Watermark())
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	a := &Entity{ID: r.NextID(), Name: "Box 1", Visual: 9}
	b := &Entity{ID: r.NextID(), Name: "Sphere 2", Visual: 10}
	r.Add(a)
	r.Add(b)

	assert.Same(t, b, r.FindByID(b.ID))
	assert.Same(t, a, r.FindByNode(9))
	assert.Nil(t, r.FindByNode(0))
	assert.Same(t, b, r.FindByName("Sphere 2"))
	assert.Nil(t, r.FindByID(99))

	r.Remove(a)
	assert.Nil(t, r.FindByID(a.ID))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []*Entity{b}, r.All())
}

func TestRegistryAllIsSnapshot(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		r.Add(&Entity{ID: r.NextID()})
	}
	for _, e := range r.All() {
		r.Remove(e)
	}
	assert.True(t, r.Empty())
}
