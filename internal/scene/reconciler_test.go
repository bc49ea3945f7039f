package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/globe_renderer/internal/builder"
	"github.com/ecopia-map/globe_renderer/internal/camera"
	"github.com/ecopia-map/globe_renderer/internal/converters/elevation/layer_elevation_corrector"
	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/dataset"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
	"github.com/ecopia-map/globe_renderer/internal/io"
	"github.com/ecopia-map/globe_renderer/internal/render"
	"github.com/ecopia-map/globe_renderer/internal/style"
	"github.com/ecopia-map/globe_renderer/tools"
)

const (
	roadType data.TypeId = iota + 1
	parkType
	shopType
)

var london = geometry.GeoPoint{Lat: 51.5039, Lon: -0.1214, Alt: 750}

func ringNodes(first osm.NodeID, pts ...orb.Point) osm.WayNodes {
	nodes := make(osm.WayNodes, len(pts))
	for i, p := range pts {
		nodes[i] = osm.WayNode{ID: first + osm.NodeID(i), Lon: p.Lon(), Lat: p.Lat()}
	}
	return nodes
}

func square(first osm.NodeID, x, y, size float64) osm.WayNodes {
	return ringNodes(first, orb.Point{x, y}, orb.Point{x + size, y}, orb.Point{x + size, y + size}, orb.Point{x, y + size})
}

// roads and shops in both tiers, parks only in the far one
func newConfig(t *testing.T) *style.Config {
	near := style.NewTier()
	require.NoError(t, near.SetDistanceRange(0, 2000))
	near.SetWayStyle(roadType, &style.WayStyle{Layer: 1, Line: style.NewLineStyle(6)})
	near.SetNodeStyle(shopType, &style.NodeStyle{Fill: style.NewFillStyle()})

	far := style.NewTier()
	require.NoError(t, far.SetDistanceRange(0, 20000))
	far.SetWayStyle(roadType, &style.WayStyle{Layer: 1, Line: style.NewLineStyle(2)})
	far.SetNodeStyle(shopType, &style.NodeStyle{Fill: style.NewFillStyle()})
	far.SetAreaStyle(parkType, &style.AreaStyle{Layer: 0, Fill: style.NewFillStyle()})

	cfg, err := style.NewConfig(near, far)
	require.NoError(t, err)
	return cfg
}

func newDatabase() *dataset.GridDatabase {
	db := dataset.NewGridDatabase(dataset.DefaultCellSize)
	db.AddNode(&data.Node{ID: 1, Type: shopType, Lat: 51.5039, Lon: -0.1214})
	db.AddWay(&data.Way{ID: 10, Type: roadType, Nodes: ringNodes(100,
		orb.Point{-0.1230, 51.5035}, orb.Point{-0.1214, 51.5039}, orb.Point{-0.1200, 51.5043})})
	db.AddWay(&data.Way{ID: 11, Type: roadType, Nodes: osm.WayNodes{
		{ID: 102, Lon: -0.1200, Lat: 51.5043}, {ID: 103, Lon: -0.1190, Lat: 51.5045}}})
	db.AddArea(&data.Area{ID: 20, Type: parkType, Nodes: square(200, -0.1225, 51.5030, 0.001)})
	db.AddArea(&data.Area{ID: 21, Type: parkType, Nodes: ringNodes(210,
		orb.Point{-0.1210, 51.5030}, orb.Point{-0.1200, 51.5040}, orb.Point{-0.1200, 51.5030}, orb.Point{-0.1210, 51.5040})})
	db.AddRelationArea(&data.RelationArea{ID: 30, Type: parkType, Roles: []data.Role{
		{Ring: 0, Nodes: square(300, -0.1240, 51.5040, 0.001)},
		{Ring: 1, Nodes: square(310, -0.1237, 51.5043, 0.0003)},
	}})
	db.AddRelationWay(&data.RelationWay{ID: 40, Type: roadType, Roles: []data.Role{
		{Ring: 0, Nodes: ringNodes(400, orb.Point{-0.1220, 51.5036}, orb.Point{-0.1215, 51.5037})},
	}})
	return db
}

type fixture struct {
	db         *dataset.GridDatabase
	backend    *render.RecordingBackend
	shared     *render.SharedNodes
	log        *tools.DebugLog
	reconciler *Reconciler
	cam        *camera.Camera
}

func newFixture(t *testing.T, executor io.QueryExecutor) *fixture {
	f := &fixture{
		db:      newDatabase(),
		backend: render.NewRecordingBackend(),
		shared:  render.NewSharedNodes(),
		log:     tools.NewDebugLog(),
		cam:     camera.NewCamera(camera.DefaultSettings()),
	}
	b := builder.NewBuilder(layer_elevation_corrector.NewLayerElevationCorrector(0, 1), f.shared, builder.DefaultOptions())
	f.reconciler = NewReconciler(f.db, executor, b, f.backend, newConfig(t), DefaultSettings(), f.log)
	require.NoError(t, f.cam.SetCamera(london, camera.ViewTopDown))
	return f
}

func (f *fixture) refresh(t *testing.T) RefreshStats {
	stats, err := f.reconciler.Refresh(context.Background(), f.cam)
	require.NoError(t, err)
	return stats
}

func TestRefreshAssignsFeaturesToNearestTier(t *testing.T) {
	f := newFixture(t, io.SequentialExecutor{})
	stats := f.refresh(t)

	assert.True(t, stats.Refreshed)
	assert.Equal(t, 2, stats.Tiers)

	tier, ok := f.reconciler.TierOf(data.KindWay, 10)
	require.True(t, ok)
	assert.Equal(t, 0, tier)
	tier, ok = f.reconciler.TierOf(data.KindNode, 1)
	require.True(t, ok)
	assert.Equal(t, 0, tier)
	tier, ok = f.reconciler.TierOf(data.KindArea, 20)
	require.True(t, ok)
	assert.Equal(t, 1, tier)
	tier, ok = f.reconciler.TierOf(data.KindRelationArea, 30)
	require.True(t, ok)
	assert.Equal(t, 1, tier)

	// roads and shops returned by the far tier were already claimed by the near one
	assert.Equal(t, 3, stats.Duplicates)
	assert.Equal(t, 0, f.reconciler.Len(1, data.KindWay))
	assert.Equal(t, 0, f.reconciler.Len(1, data.KindNode))
	assert.Positive(t, stats.RelationWays)

	// the bowtie park cannot be built
	assert.Equal(t, 1, stats.Failed)
	_, ok = f.reconciler.TierOf(data.KindArea, 21)
	assert.False(t, ok)
	assert.Equal(t, 1, f.log.Count(tools.SeverityWarning))

	assert.Equal(t, 5, stats.Added)
	assert.Equal(t, 5, f.backend.Len())
	assert.Equal(t, 5, f.reconciler.Total())
}

func TestRefreshEachFeatureInOneTier(t *testing.T) {
	f := newFixture(t, io.ParallelExecutor{Workers: 2})
	f.refresh(t)

	for _, kind := range data.FeatureKinds {
		seen := make(map[data.FeatureId]int)
		for tier := 0; tier < f.reconciler.Config().Len(); tier++ {
			set := f.reconciler.sets[tier]
			for _, id := range collectIds(set, kind) {
				seen[id]++
			}
		}
		for id, n := range seen {
			assert.Equal(t, 1, n, "%s %d rendered by %d tiers", kind, id, n)
		}
	}
	assert.Equal(t, 5, f.backend.Len())
}

func collectIds(set *tierSet, kind data.FeatureKind) []data.FeatureId {
	switch kind {
	case data.KindNode:
		return sortedIds(set.nodes)
	case data.KindWay:
		return sortedIds(set.ways)
	case data.KindArea:
		return sortedIds(set.areas)
	case data.KindRelationArea:
		return sortedIds(set.relationAreas)
	}
	return nil
}

func TestRefreshFlagsSharedNodes(t *testing.T) {
	f := newFixture(t, io.SequentialExecutor{})
	f.refresh(t)

	first := f.backend.Ways[10]
	second := f.backend.Ways[11]
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.Equal(t, []bool{false, false, false}, first.Shared)
	assert.Equal(t, []bool{true, false}, second.Shared)
	assert.Equal(t, 2, f.shared.Owners(102))
}

func TestRefreshIsIdempotent(t *testing.T) {
	f := newFixture(t, io.SequentialExecutor{})
	f.refresh(t)
	f.backend.ResetStats()

	stats := f.refresh(t)
	assert.False(t, stats.Refreshed)
	assert.Equal(t, render.Stats{}, f.backend.Stats())

	// a forced refresh with an unchanged camera finds nothing to add or remove
	f.reconciler.Invalidate()
	stats = f.refresh(t)
	assert.True(t, stats.Refreshed)
	assert.Zero(t, stats.Added)
	assert.Zero(t, stats.Removed)
	assert.Equal(t, 0, f.backend.Stats().Added)
	assert.Equal(t, 0, f.backend.Stats().Removed)
}

func TestNeedsRefreshOnShrinkingView(t *testing.T) {
	f := newFixture(t, io.SequentialExecutor{})
	assert.True(t, f.reconciler.NeedsRefresh(f.cam.ViewBound()))
	f.refresh(t)

	extent, ok := f.reconciler.Extent()
	require.True(t, ok)
	assert.False(t, f.reconciler.NeedsRefresh(extent))

	// inside the extent with 40% of its area: ratio 1.0 on the new side, 0.4 on the old one
	w := extent.Max[0] - extent.Min[0]
	h := extent.Max[1] - extent.Min[1]
	inner := orb.Bound{Min: extent.Min, Max: orb.Point{extent.Min[0] + 0.4*w, extent.Min[1] + h}}
	ratioPrev, ratioNext := geometry.OverlapRatios(extent, inner)
	assert.InDelta(t, 0.4, ratioPrev, 1e-9)
	assert.InDelta(t, 1.0, ratioNext, 1e-9)
	assert.True(t, f.reconciler.NeedsRefresh(inner))
}

func TestZoomInTriggersRefresh(t *testing.T) {
	f := newFixture(t, io.SequentialExecutor{})
	f.refresh(t)

	require.NoError(t, f.cam.Zoom(0.5))
	stats := f.refresh(t)
	assert.True(t, stats.Refreshed)
}

func TestPanAwayRemovesFeatures(t *testing.T) {
	f := newFixture(t, io.SequentialExecutor{})
	f.refresh(t)
	require.Equal(t, 5, f.backend.Len())

	require.NoError(t, f.cam.Pan(90, 20000))
	stats := f.refresh(t)

	assert.True(t, stats.Refreshed)
	assert.Equal(t, 5, stats.Removed)
	assert.Zero(t, stats.Added)
	assert.Zero(t, f.backend.Len())
	assert.Zero(t, f.reconciler.Total())
	assert.Zero(t, f.shared.Len())
}

func TestStyleReloadRebuildsScene(t *testing.T) {
	f := newFixture(t, io.SequentialExecutor{})
	f.refresh(t)
	f.backend.ResetStats()

	f.reconciler.SetStyleConfig(newConfig(t))
	assert.Equal(t, 1, f.backend.Stats().Cleared)
	assert.Zero(t, f.backend.Len())
	assert.Zero(t, f.reconciler.Total())
	assert.Zero(t, f.shared.Len())

	stats := f.refresh(t)
	assert.True(t, stats.Refreshed)
	assert.Equal(t, 5, stats.Added)
	assert.Equal(t, 5, f.backend.Len())
}

func TestTierClaimsOnlyStyledKinds(t *testing.T) {
	f := newFixture(t, io.SequentialExecutor{})
	f.db.AddArea(&data.Area{ID: 50, Type: roadType, Nodes: square(500, -0.1220, 51.5036, 0.0005)})

	// roads are lines up close and get a paved area further away
	near := style.NewTier()
	require.NoError(t, near.SetDistanceRange(0, 2000))
	near.SetWayStyle(roadType, &style.WayStyle{Layer: 1, Line: style.NewLineStyle(6)})
	far := style.NewTier()
	require.NoError(t, far.SetDistanceRange(0, 20000))
	far.SetWayStyle(roadType, &style.WayStyle{Layer: 1, Line: style.NewLineStyle(2)})
	far.SetAreaStyle(roadType, &style.AreaStyle{Layer: 0, Fill: style.NewFillStyle()})
	cfg, err := style.NewConfig(near, far)
	require.NoError(t, err)
	f.reconciler.SetStyleConfig(cfg)

	stats := f.refresh(t)
	assert.Zero(t, stats.Failed)

	tier, ok := f.reconciler.TierOf(data.KindArea, 50)
	require.True(t, ok, "area left unclaimed by the tier that styles it")
	assert.Equal(t, 1, tier)
	tier, ok = f.reconciler.TierOf(data.KindWay, 10)
	require.True(t, ok)
	assert.Equal(t, 0, tier)
	assert.Equal(t, 1, f.reconciler.Len(1, data.KindArea))
}

type failingDatabase struct {
	dataset.Database
	err error
}

func (d *failingDatabase) Query(ctx context.Context, bound orb.Bound, types data.TypeSet) (*dataset.QueryResult, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.Database.Query(ctx, bound, types)
}

func TestDatabaseFailureKeepsScene(t *testing.T) {
	f := newFixture(t, io.SequentialExecutor{})
	db := &failingDatabase{Database: f.db}
	f.reconciler.db = db
	f.refresh(t)
	extent, _ := f.reconciler.Extent()
	f.backend.ResetStats()

	db.err = errors.New("disk unplugged")
	require.NoError(t, f.cam.Pan(90, 20000))
	_, err := f.reconciler.Refresh(context.Background(), f.cam)
	assert.ErrorIs(t, err, db.err)

	assert.Equal(t, 5, f.reconciler.Total())
	assert.Equal(t, render.Stats{}, f.backend.Stats())
	current, _ := f.reconciler.Extent()
	assert.Equal(t, extent, current)
}

func TestNoActiveTierIsNoop(t *testing.T) {
	f := newFixture(t, io.SequentialExecutor{})

	require.NoError(t, f.cam.SetCamera(geometry.GeoPoint{Lat: london.Lat, Lon: london.Lon, Alt: 100000}, camera.ViewTopDown))
	stats := f.refresh(t)

	assert.False(t, stats.Refreshed)
	assert.Zero(t, f.backend.Len())
	assert.Equal(t, 1, f.log.Count(tools.SeverityWarning))
	_, ok := f.reconciler.Extent()
	assert.False(t, ok)
}

func TestInvalidCameraClearsSceneAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t, io.SequentialExecutor{})
	f.refresh(t)
	require.Equal(t, 5, f.backend.Len())

	eye := f.cam.Eye()
	up := r3.Vector{Z: 1}
	assert.Error(t, f.cam.LookAt(eye, eye, up))

	_, err := f.reconciler.Refresh(context.Background(), f.cam)
	assert.ErrorIs(t, err, camera.ErrInvalidCameraGeometry)
	assert.Equal(t, 5, f.backend.Len())

	_, err = f.reconciler.Refresh(context.Background(), f.cam)
	assert.ErrorIs(t, err, camera.ErrInvalidCameraGeometry)
	assert.Zero(t, f.backend.Len())
	assert.Zero(t, f.reconciler.Total())

	// a valid pose brings everything back
	require.NoError(t, f.cam.SetCamera(london, camera.ViewTopDown))
	stats := f.refresh(t)
	assert.Equal(t, 5, stats.Added)
}
