package lod

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
	"github.com/ecopia-map/globe_renderer/internal/style"
)

// meters per degree along a great circle of radius a
var metersPerDegree = converters.SemiMajorAxis * math.Pi / 180

func newConfig(t *testing.T, ranges ...[2]float64) *style.Config {
	var tiers []*style.Tier
	for _, r := range ranges {
		tier := style.NewTier()
		require.NoError(t, tier.SetDistanceRange(r[0], r[1]))
		tiers = append(tiers, tier)
	}
	cfg, err := style.NewConfig(tiers...)
	require.NoError(t, err)
	return cfg
}

func TestViewDistanceRange(t *testing.T) {
	eye := converters.ToCartesian(geometry.GeoPoint{Alt: 1000})
	view := orb.Bound{Min: orb.Point{-0.02, -0.01}, Max: orb.Point{0, 0.01}}

	minDist, maxDist := ViewDistanceRange(eye, view)

	// the east edge passes right below the eye
	assert.InDelta(t, 1000, minDist, 0.5)

	// farthest corners are the western ones
	corner := converters.ToCartesian(geometry.GeoPoint{Lat: 0.01, Lon: -0.02})
	assert.InDelta(t, eye.Distance(corner), maxDist, 1e-6)
	assert.Greater(t, maxDist, math.Hypot(1000, 0.02*metersPerDegree))
}

func TestReachBound(t *testing.T) {
	b := ReachBound(geometry.GeoPoint{Alt: 5000}, metersPerDegree)
	assert.InDelta(t, -1, b.Min.Lon(), 1e-9)
	assert.InDelta(t, 1, b.Max.Lon(), 1e-9)
	assert.InDelta(t, -1, b.Min.Lat(), 1e-9)
	assert.InDelta(t, 1, b.Max.Lat(), 1e-9)
}

func TestSelectClipsReachToView(t *testing.T) {
	eye := converters.ToCartesian(geometry.GeoPoint{Alt: 1000})
	view := orb.Bound{Min: orb.Point{-0.02, -0.01}, Max: orb.Point{0, 0.01}}
	cfg := newConfig(t, [2]float64{0, 1500}, [2]float64{1500, 2000}, [2]float64{3000, 5000})

	sel, err := Select(eye, view, cfg)
	require.NoError(t, err)
	require.Len(t, sel.Tiers, 2)

	near := sel.Tiers[0]
	assert.Equal(t, 0, near.Index)
	assert.False(t, near.Skip)
	reach := 1500 / metersPerDegree
	assert.InDelta(t, -reach, near.Bound.Min.Lon(), 1e-9)
	assert.InDelta(t, 0, near.Bound.Max.Lon(), 1e-12)
	assert.InDelta(t, -0.01, near.Bound.Min.Lat(), 1e-12)
	assert.InDelta(t, 0.01, near.Bound.Max.Lat(), 1e-12)

	assert.Equal(t, 1, sel.Tiers[1].Index)
	assert.Len(t, sel.Queries(), 2)
}

func TestSelectNoActiveTier(t *testing.T) {
	eye := converters.ToCartesian(geometry.GeoPoint{Alt: 1000})
	view := orb.Bound{Min: orb.Point{-0.01, -0.01}, Max: orb.Point{0.01, 0.01}}
	cfg := newConfig(t, [2]float64{100000, 200000})

	sel, err := Select(eye, view, cfg)
	assert.ErrorIs(t, err, ErrNoActiveTier)
	assert.Empty(t, sel.Tiers)
}

func TestSelectionQueriesDropsSkipped(t *testing.T) {
	sel := Selection{Tiers: []TierQuery{{Index: 0}, {Index: 1, Skip: true}, {Index: 2}}}
	queries := sel.Queries()
	require.Len(t, queries, 2)
	assert.Equal(t, 0, queries[0].Index)
	assert.Equal(t, 2, queries[1].Index)
}

func TestRangesOverlap(t *testing.T) {
	assert.True(t, rangesOverlap(0, 10, 5, 20))
	assert.True(t, rangesOverlap(0, 10, 10, 20))
	assert.False(t, rangesOverlap(0, 10, 11, 20))
	assert.True(t, rangesOverlap(0, 100, 20, 30))
}
