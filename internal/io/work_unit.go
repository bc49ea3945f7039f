package io

import (
	"github.com/paulmach/orb"

	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/dataset"
)

// Contains the data needed to run the database query of a single lod tier
type WorkUnit struct {
	// position of the unit in the nearest to farthest order
	Order int
	Tier  int
	Bound orb.Bound
	Types data.TypeSet
}

// Outcome of a WorkUnit
type WorkResult struct {
	Unit   *WorkUnit
	Result *dataset.QueryResult
}
