package dataset

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/golang/glog"
	"github.com/paulmach/orb"

	"github.com/ecopia-map/globe_renderer/internal/data"
)

const DefaultCellSize = 0.01

type gridIndex struct {
	x int
	y int
}

// Ids of the features whose bounding rectangle overlaps the cell, per kind
type gridCell map[data.FeatureKind]map[data.FeatureId]struct{}

// In-memory feature store indexed by a regular lat/lon grid. A feature is registered in every
// cell its bounding rectangle overlaps. Safe for concurrent queries.
type GridDatabase struct {
	cellSize float64
	cells    map[gridIndex]gridCell
	bound    orb.Bound
	empty    bool

	nodes         map[data.FeatureId]*data.Node
	ways          map[data.FeatureId]*data.Way
	areas         map[data.FeatureId]*data.Area
	relationWays  map[data.FeatureId]*data.RelationWay
	relationAreas map[data.FeatureId]*data.RelationArea

	sync.RWMutex
}

// Builds an empty database with cells of cellSize degrees. Non positive sizes fall back to DefaultCellSize.
func NewGridDatabase(cellSize float64) *GridDatabase {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &GridDatabase{
		cellSize:      cellSize,
		cells:         make(map[gridIndex]gridCell),
		empty:         true,
		nodes:         make(map[data.FeatureId]*data.Node),
		ways:          make(map[data.FeatureId]*data.Way),
		areas:         make(map[data.FeatureId]*data.Area),
		relationWays:  make(map[data.FeatureId]*data.RelationWay),
		relationAreas: make(map[data.FeatureId]*data.RelationArea),
	}
}

// Bounding rectangle of all the features ever added
func (db *GridDatabase) Bound() orb.Bound {
	db.RLock()
	defer db.RUnlock()
	return db.bound
}

// Number of stored features of the given kind
func (db *GridDatabase) Count(kind data.FeatureKind) int {
	db.RLock()
	defer db.RUnlock()
	switch kind {
	case data.KindNode:
		return len(db.nodes)
	case data.KindWay:
		return len(db.ways)
	case data.KindArea:
		return len(db.areas)
	case data.KindRelationArea:
		return len(db.relationAreas)
	case data.KindRelationWay:
		return len(db.relationWays)
	}
	return 0
}

func (db *GridDatabase) AddNode(n *data.Node) {
	db.Lock()
	defer db.Unlock()
	p := orb.Point{n.Lon, n.Lat}
	db.nodes[n.FeatureId()] = n
	db.index(data.KindNode, n.FeatureId(), orb.Bound{Min: p, Max: p})
}

func (db *GridDatabase) AddWay(w *data.Way) {
	db.Lock()
	defer db.Unlock()
	db.ways[w.FeatureId()] = w
	db.index(data.KindWay, w.FeatureId(), data.NodesBound(w.Nodes))
}

func (db *GridDatabase) AddArea(a *data.Area) {
	db.Lock()
	defer db.Unlock()
	db.areas[a.FeatureId()] = a
	db.index(data.KindArea, a.FeatureId(), data.NodesBound(a.Nodes))
}

func (db *GridDatabase) AddRelationWay(r *data.RelationWay) {
	db.Lock()
	defer db.Unlock()
	db.relationWays[r.FeatureId()] = r
	db.index(data.KindRelationWay, r.FeatureId(), rolesBound(r.Roles))
}

func (db *GridDatabase) AddRelationArea(r *data.RelationArea) {
	db.Lock()
	defer db.Unlock()
	db.relationAreas[r.FeatureId()] = r
	db.index(data.KindRelationArea, r.FeatureId(), rolesBound(r.Roles))
}

func (db *GridDatabase) RemoveNode(id data.FeatureId) {
	db.Lock()
	defer db.Unlock()
	if n, ok := db.nodes[id]; ok {
		p := orb.Point{n.Lon, n.Lat}
		db.unindex(data.KindNode, id, orb.Bound{Min: p, Max: p})
		delete(db.nodes, id)
	}
}

func (db *GridDatabase) RemoveWay(id data.FeatureId) {
	db.Lock()
	defer db.Unlock()
	if w, ok := db.ways[id]; ok {
		db.unindex(data.KindWay, id, data.NodesBound(w.Nodes))
		delete(db.ways, id)
	}
}

func (db *GridDatabase) RemoveArea(id data.FeatureId) {
	db.Lock()
	defer db.Unlock()
	if a, ok := db.areas[id]; ok {
		db.unindex(data.KindArea, id, data.NodesBound(a.Nodes))
		delete(db.areas, id)
	}
}

func (db *GridDatabase) RemoveRelationArea(id data.FeatureId) {
	db.Lock()
	defer db.Unlock()
	if r, ok := db.relationAreas[id]; ok {
		db.unindex(data.KindRelationArea, id, rolesBound(r.Roles))
		delete(db.relationAreas, id)
	}
}

// Returns the features of the given types whose bounding rectangle overlaps bound, ordered by id
func (db *GridDatabase) Query(ctx context.Context, bound orb.Bound, types data.TypeSet) (*QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db.RLock()
	defer db.RUnlock()

	found := make(map[data.FeatureKind]map[data.FeatureId]struct{})
	db.forEachCell(bound, false, func(cell gridCell) {
		for kind, ids := range cell {
			set, ok := found[kind]
			if !ok {
				set = make(map[data.FeatureId]struct{})
				found[kind] = set
			}
			for id := range ids {
				set[id] = struct{}{}
			}
		}
	})

	result := &QueryResult{}
	for _, id := range sortedIds(found[data.KindNode]) {
		if n := db.nodes[id]; types.Has(n.Type) && bound.Contains(orb.Point{n.Lon, n.Lat}) {
			result.Nodes = append(result.Nodes, n)
		}
	}
	for _, id := range sortedIds(found[data.KindWay]) {
		if w := db.ways[id]; types.Has(w.Type) && data.NodesBound(w.Nodes).Intersects(bound) {
			result.Ways = append(result.Ways, w)
		}
	}
	for _, id := range sortedIds(found[data.KindArea]) {
		if a := db.areas[id]; types.Has(a.Type) && data.NodesBound(a.Nodes).Intersects(bound) {
			result.Areas = append(result.Areas, a)
		}
	}
	for _, id := range sortedIds(found[data.KindRelationWay]) {
		if r := db.relationWays[id]; types.Has(r.Type) && rolesBound(r.Roles).Intersects(bound) {
			result.RelationWays = append(result.RelationWays, r)
		}
	}
	for _, id := range sortedIds(found[data.KindRelationArea]) {
		if r := db.relationAreas[id]; types.Has(r.Type) && rolesBound(r.Roles).Intersects(bound) {
			result.RelationAreas = append(result.RelationAreas, r)
		}
	}

	glog.V(2).Infof("query %v returned %d features", bound, result.Len())
	return result, nil
}

func (db *GridDatabase) cellIndex(lon, lat float64) gridIndex {
	return gridIndex{
		x: int(math.Floor(lon / db.cellSize)),
		y: int(math.Floor(lat / db.cellSize)),
	}
}

// Calls fn for every existing cell overlapping b, creating missing cells when create is set
func (db *GridDatabase) forEachCell(b orb.Bound, create bool, fn func(cell gridCell)) {
	lo := db.cellIndex(b.Min.Lon(), b.Min.Lat())
	hi := db.cellIndex(b.Max.Lon(), b.Max.Lat())

	// wide lookups walk the existing cells instead of the whole range
	if !create && (hi.x-lo.x+1)*(hi.y-lo.y+1) > len(db.cells) {
		for idx, cell := range db.cells {
			if idx.x >= lo.x && idx.x <= hi.x && idx.y >= lo.y && idx.y <= hi.y {
				fn(cell)
			}
		}
		return
	}

	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			idx := gridIndex{x: x, y: y}
			cell, ok := db.cells[idx]
			if !ok {
				if !create {
					continue
				}
				cell = make(gridCell)
				db.cells[idx] = cell
			}
			fn(cell)
		}
	}
}

func (db *GridDatabase) index(kind data.FeatureKind, id data.FeatureId, b orb.Bound) {
	db.forEachCell(b, true, func(cell gridCell) {
		ids, ok := cell[kind]
		if !ok {
			ids = make(map[data.FeatureId]struct{})
			cell[kind] = ids
		}
		ids[id] = struct{}{}
	})

	if db.empty {
		db.bound = b
		db.empty = false
	} else {
		db.bound = db.bound.Union(b)
	}
}

func (db *GridDatabase) unindex(kind data.FeatureKind, id data.FeatureId, b orb.Bound) {
	db.forEachCell(b, false, func(cell gridCell) {
		delete(cell[kind], id)
	})
}

func rolesBound(roles []data.Role) orb.Bound {
	var b orb.Bound
	for i, r := range roles {
		if i == 0 {
			b = data.NodesBound(r.Nodes)
			continue
		}
		b = b.Union(data.NodesBound(r.Nodes))
	}
	return b
}

func sortedIds(set map[data.FeatureId]struct{}) []data.FeatureId {
	ids := make([]data.FeatureId, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
