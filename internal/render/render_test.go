package render

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"

	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/style"
)

func wayNodes(ids ...osm.NodeID) osm.WayNodes {
	nodes := make(osm.WayNodes, len(ids))
	for i, id := range ids {
		nodes[i] = osm.WayNode{ID: id}
	}
	return nodes
}

func TestSharedNodesFlagsJunctions(t *testing.T) {
	s := NewSharedNodes()

	assert.Equal(t, []bool{false, false, false}, s.Add(1, wayNodes(10, 11, 12)))
	assert.Equal(t, []bool{false, true, false}, s.Add(2, wayNodes(20, 12, 21)))
	assert.Equal(t, 2, s.Owners(12))
	assert.Equal(t, 5, s.Len())

	// a way closing on itself does not share with itself
	assert.Equal(t, []bool{false, false, false}, s.Add(3, wayNodes(30, 31, 30)))
}

func TestSharedNodesRemove(t *testing.T) {
	s := NewSharedNodes()
	s.Add(1, wayNodes(10, 11))
	s.Add(2, wayNodes(11, 12))

	s.Remove(1, wayNodes(10, 11))
	assert.Equal(t, 0, s.Owners(10))
	assert.Equal(t, 1, s.Owners(11))
	assert.Equal(t, 2, s.Len())

	assert.Equal(t, []bool{true}, s.Add(3, wayNodes(11)))

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestLabelEligible(t *testing.T) {
	assert.False(t, Label{}.Eligible())
	assert.False(t, Label{Text: "Main Street"}.Eligible())
	assert.False(t, Label{Style: style.NewLabelStyle()}.Eligible())
	assert.True(t, Label{Style: style.NewLabelStyle(), Text: "Main Street"}.Eligible())
}

func TestRecordingBackend(t *testing.T) {
	b := NewRecordingBackend()

	node := &NodeRecord{Node: &data.Node{ID: 7}}
	way := &WayRecord{Way: &data.Way{ID: 7}}
	area := &AreaRecord{Area: &data.Area{ID: 8}}
	rel := &RelationAreaRecord{Relation: &data.RelationArea{ID: 9}}

	b.AddNode(node)
	b.AddWay(way)
	b.AddArea(area)
	b.AddRelationArea(rel)
	assert.Equal(t, 4, b.Len())
	assert.Same(t, way, b.Ways[7])

	b.RemoveNode(node)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, Stats{Added: 4, Removed: 1}, b.Stats())

	b.RemoveAll()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 1, b.Stats().Cleared)

	b.ResetStats()
	assert.Equal(t, Stats{}, b.Stats())
}
