package ess

import (
	"testing"

	"github.com/grailbio/pathfind/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDFSPreorderSingleComponent(t *testing.T) {
	m := grid.NewBitGrid(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			m.Set(x, y, true)
		}
	}
	domain := GridDomain{Map: m}
	mapper := DFSPreorder[grid.Point](domain)

	require.Equal(t, 16, mapper.States())
	assert.Equal(t, 1, mapper.Components())

	// Ids are a bijection onto [0, states).
	seen := map[int]bool{}
	for _, s := range domain.ListValidStates() {
		id := mapper.ToID(domain, s)
		require.GreaterOrEqual(t, id, 0)
		require.Less(t, id, mapper.States())
		require.False(t, seen[id])
		seen[id] = true
		assert.Equal(t, s, mapper.ToState(id))
	}
}

func TestDFSPreorderComponents(t *testing.T) {
	// Two rooms separated by a full wall.
	m := grid.NewBitGrid(5, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			m.Set(x, y, x != 2)
		}
	}
	domain := GridDomain{Map: m}
	mapper := DFSPreorder[grid.Point](domain)

	require.Equal(t, 12, mapper.States())
	require.Equal(t, 2, mapper.Components())

	left := mapper.ToID(domain, grid.Point{0, 0})
	leftToo := mapper.ToID(domain, grid.Point{1, 2})
	right := mapper.ToID(domain, grid.Point{3, 1})
	assert.True(t, mapper.SameComponent(left, leftToo))
	assert.False(t, mapper.SameComponent(left, right))

	// Component ranges partition [0, states).
	s0, e0 := mapper.ComponentIDRange(0)
	s1, e1 := mapper.ComponentIDRange(1)
	assert.Equal(t, 0, s0)
	assert.Equal(t, e0, s1)
	assert.Equal(t, mapper.States(), e1)
	assert.Equal(t, 0, mapper.ComponentID(s0))
	assert.Equal(t, 1, mapper.ComponentID(s1))
}
