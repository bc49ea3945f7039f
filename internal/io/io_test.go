package io

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang/geo/r3"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/dataset"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
	"github.com/ecopia-map/globe_renderer/internal/render"
	"github.com/ecopia-map/globe_renderer/internal/style"
)

// answers every query with one node whose id is the query min longitude
type boundEchoDatabase struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (db *boundEchoDatabase) Query(ctx context.Context, bound orb.Bound, types data.TypeSet) (*dataset.QueryResult, error) {
	db.mu.Lock()
	db.calls++
	db.mu.Unlock()
	if db.fail {
		return nil, errors.New("database offline")
	}
	return &dataset.QueryResult{Nodes: []*data.Node{{ID: 0, Lon: bound.Min.Lon()}}}, nil
}

func units(n int) []*WorkUnit {
	out := make([]*WorkUnit, n)
	for i := range out {
		out[i] = &WorkUnit{Tier: i, Bound: orb.Bound{Min: orb.Point{float64(i), 0}, Max: orb.Point{float64(i) + 1, 1}}}
	}
	return out
}

func TestExecutorsKeepUnitOrder(t *testing.T) {
	for name, executor := range map[string]QueryExecutor{
		"sequential": SequentialExecutor{},
		"parallel":   ParallelExecutor{Workers: 3},
		"default":    ParallelExecutor{},
	} {
		db := &boundEchoDatabase{}
		results, err := executor.Execute(context.Background(), db, units(8))
		require.NoError(t, err, name)
		require.Len(t, results, 8, name)
		for i, res := range results {
			assert.Equal(t, float64(i), res.Nodes[0].Lon, name)
		}
		assert.Equal(t, 8, db.calls, name)
	}
}

func TestExecutorsPropagateErrors(t *testing.T) {
	for name, executor := range map[string]QueryExecutor{
		"sequential": SequentialExecutor{},
		"parallel":   ParallelExecutor{Workers: 2},
	} {
		_, err := executor.Execute(context.Background(), &boundEchoDatabase{fail: true}, units(4))
		assert.Error(t, err, name)
	}
}

func TestParallelExecutorNoUnits(t *testing.T) {
	results, err := ParallelExecutor{Workers: 4}.Execute(context.Background(), &boundEchoDatabase{}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSnapshotBackend(t *testing.T) {
	b := NewSnapshotBackend()

	nodePos := converters.ToCartesian(geometry.GeoPoint{Lat: 51.5, Lon: -0.12, Alt: 2})
	b.AddNode(&render.NodeRecord{
		Node:     &data.Node{ID: 3},
		Position: nodePos,
		Label:    render.Label{Style: style.NewLabelStyle(), Text: "Cafe"},
	})

	outer := []r3.Vector{
		converters.ToCartesian(geometry.GeoPoint{Lat: 0, Lon: 0}),
		converters.ToCartesian(geometry.GeoPoint{Lat: 0, Lon: 1}),
		converters.ToCartesian(geometry.GeoPoint{Lat: 1, Lon: 1}),
	}
	b.AddArea(&render.AreaRecord{
		Area:     &data.Area{ID: 4},
		Layer:    2,
		Geometry: render.AreaGeometry{Outer: outer},
		Fill:     style.NewFillStyle(),
		Building: &render.Extrusion{Height: 12},
	})

	fc := b.FeatureCollection()
	require.Len(t, fc.Features, 2)

	node := fc.Features[0]
	assert.Equal(t, geojson.GeometryPoint, node.Geometry.Type)
	assert.InDelta(t, -0.12, node.Geometry.Point[0], 1e-7)
	assert.InDelta(t, 51.5, node.Geometry.Point[1], 1e-7)
	assert.InDelta(t, 2, node.Geometry.Point[2], 1e-3)
	assert.Equal(t, "Cafe", node.Properties["label"])
	assert.Equal(t, "node", node.Properties["kind"])

	area := fc.Features[1]
	assert.Equal(t, geojson.GeometryPolygon, area.Geometry.Type)
	require.Len(t, area.Geometry.Polygon, 1)
	assert.Len(t, area.Geometry.Polygon[0], 4, "rings are closed")
	assert.Equal(t, 12.0, area.Properties["building_height"])
	assert.Equal(t, "#ffffffff", area.Properties["fill"])
	_, labelled := area.Properties["label"]
	assert.False(t, labelled)

	b.RemoveAll()
	assert.Empty(t, b.FeatureCollection().Features)
}
