package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"github.com/ecopia-map/globe_renderer/internal/data"
)

// Counters of a load run
type LoadStats struct {
	Nodes         int
	Ways          int
	Areas         int
	RelationWays  int
	RelationAreas int
	// features without a registered type or with a geometry their type does not allow
	Ignored int
	// features referencing missing nodes or with unusable geometry
	Broken int
}

func (s LoadStats) Loaded() int {
	return s.Nodes + s.Ways + s.Areas + s.RelationWays + s.RelationAreas
}

func (s LoadStats) String() string {
	return fmt.Sprintf("nodes: %d, ways: %d, areas: %d, relation ways: %d, relation areas: %d, ignored: %d, broken: %d",
		s.Nodes, s.Ways, s.Areas, s.RelationWays, s.RelationAreas, s.Ignored, s.Broken)
}

// Reads features from a stream into a database
type Loader interface {
	Load(ctx context.Context, r io.Reader, db *GridDatabase) (LoadStats, error)
}

// Reads features from a file that comes with sidecar files next to it
type PathLoader interface {
	LoadPath(ctx context.Context, path string, db *GridDatabase) (LoadStats, error)
}

// Loaders per dataset format, nil entries leave the format unsupported
type Loaders struct {
	GeoJSON   Loader
	PBF       Loader
	Shapefile PathLoader
}

// Loads a dataset file, picking the loader from the file extension
func LoadFile(ctx context.Context, path string, loaders Loaders, db *GridDatabase) (LoadStats, error) {
	var loader Loader
	ext := filepath.Ext(path)
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".osm.pbf"):
		loader = loaders.PBF
	case strings.EqualFold(ext, ".geojson"), strings.EqualFold(ext, ".json"):
		loader = loaders.GeoJSON
	case strings.EqualFold(ext, ".shp") && loaders.Shapefile != nil:
		stats, err := loaders.Shapefile.LoadPath(ctx, path, db)
		return finishLoad(path, stats, err)
	}
	if loader == nil {
		return LoadStats{}, fmt.Errorf("unsupported dataset file %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return LoadStats{}, err
	}
	defer func() { _ = f.Close() }()

	stats, err := loader.Load(ctx, f, db)
	return finishLoad(path, stats, err)
}

func finishLoad(path string, stats LoadStats, err error) (LoadStats, error) {
	if err != nil {
		return stats, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
	}
	glog.Infof("loaded %s: %v", filepath.Base(path), stats)
	return stats, nil
}

func isClosed(nodes osm.WayNodes) bool {
	return len(nodes) >= 4 && nodes[0].Lat == nodes[len(nodes)-1].Lat && nodes[0].Lon == nodes[len(nodes)-1].Lon
}

func boundContains(outer, inner orb.Bound) bool {
	return outer.Contains(inner.Min) && outer.Contains(inner.Max)
}

// Builds relation roles from separate outer and inner rings, assigning every inner ring to the
// first outer ring whose bounding rectangle contains it. Outer ring k gets ring index 2k and its
// holes 2k+1. Returns the roles and the number of inner rings no outer ring could take.
func assembleRoles(outers, inners []osm.WayNodes) ([]data.Role, int) {
	owned := make([][]osm.WayNodes, len(outers))
	orphans := 0
	for _, inner := range inners {
		ib := data.NodesBound(inner)
		placed := false
		for k, outer := range outers {
			if boundContains(data.NodesBound(outer), ib) {
				owned[k] = append(owned[k], inner)
				placed = true
				break
			}
		}
		if !placed {
			orphans++
		}
	}

	var roles []data.Role
	for k, outer := range outers {
		roles = append(roles, data.Role{Ring: 2 * k, Nodes: outer})
		for _, inner := range owned[k] {
			roles = append(roles, data.Role{Ring: 2*k + 1, Nodes: inner})
		}
	}
	return roles, orphans
}
