package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/paulmach/orb"

	"github.com/ecopia-map/globe_renderer/internal/builder"
	"github.com/ecopia-map/globe_renderer/internal/camera"
	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/dataset"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
	"github.com/ecopia-map/globe_renderer/internal/io"
	"github.com/ecopia-map/globe_renderer/internal/lod"
	"github.com/ecopia-map/globe_renderer/internal/render"
	"github.com/ecopia-map/globe_renderer/internal/style"
	"github.com/ecopia-map/globe_renderer/tools"
)

type Settings struct {
	// a refresh runs when either overlap ratio between the data extent and the view drops below it
	OverlapThreshold float64
	// consecutive invalid camera poses after which every render set is dropped, 0 to never clear
	InvalidCameraClearAfter int
}

func DefaultSettings() Settings {
	return Settings{
		OverlapThreshold:        0.75,
		InvalidCameraClearAfter: 2,
	}
}

// Outcome of a single Refresh call
type RefreshStats struct {
	// false when the refresh was skipped
	Refreshed bool
	// tiers actually queried
	Tiers   int
	Added   int
	Removed int
	// features whose geometry could not be built
	Failed int
	// features returned by a tier but already claimed by a nearer one
	Duplicates   int
	RelationWays int
}

func (s RefreshStats) String() string {
	return fmt.Sprintf("refreshed=%v tiers=%d added=%d removed=%d failed=%d duplicates=%d relation-ways=%d",
		s.Refreshed, s.Tiers, s.Added, s.Removed, s.Failed, s.Duplicates, s.RelationWays)
}

// Keeps the backend in sync with the features visible from the camera, one render set per lod tier
type Reconciler struct {
	db       dataset.Database
	executor io.QueryExecutor
	builder  *builder.Builder
	backend  render.Backend
	log      *tools.DebugLog
	settings Settings

	cfg  *style.Config
	sets []*tierSet

	extent        orb.Bound
	hasExtent     bool
	force         bool
	invalidCamera int
}

func NewReconciler(db dataset.Database, executor io.QueryExecutor, b *builder.Builder, backend render.Backend,
	cfg *style.Config, settings Settings, log *tools.DebugLog) *Reconciler {
	if log == nil {
		log = tools.NewDebugLog()
	}
	r := &Reconciler{
		db:       db,
		executor: executor,
		builder:  b,
		backend:  backend,
		log:      log,
		settings: settings,
	}
	r.installConfig(cfg)
	return r
}

func (r *Reconciler) installConfig(cfg *style.Config) {
	r.cfg = cfg
	r.sets = make([]*tierSet, cfg.Len())
	for i := range r.sets {
		r.sets[i] = newTierSet()
	}
	r.builder.SharedNodes().Clear()
	r.hasExtent = false
	r.force = true
}

func (r *Reconciler) Config() *style.Config {
	return r.cfg
}

// Extent of the data currently loaded, false before the first refresh
func (r *Reconciler) Extent() (orb.Bound, bool) {
	return r.extent, r.hasExtent
}

// Number of records of the given kind rendered at tier
func (r *Reconciler) Len(tier int, kind data.FeatureKind) int {
	if tier < 0 || tier >= len(r.sets) {
		return 0
	}
	return r.sets[tier].len(kind)
}

// Total number of rendered records
func (r *Reconciler) Total() int {
	n := 0
	for tier := range r.sets {
		for _, kind := range data.FeatureKinds {
			n += r.Len(tier, kind)
		}
	}
	return n
}

// Tier rendering the given feature, false when it is not rendered
func (r *Reconciler) TierOf(kind data.FeatureKind, id data.FeatureId) (int, bool) {
	for tier, set := range r.sets {
		if set.contains(kind, id) {
			return tier, true
		}
	}
	return 0, false
}

// Whether a refresh for the given view rectangle would query the database
func (r *Reconciler) NeedsRefresh(view orb.Bound) bool {
	if r.force || !r.hasExtent {
		return true
	}
	ratioPrev, ratioNext := geometry.OverlapRatios(r.extent, view)
	return ratioPrev < r.settings.OverlapThreshold || ratioNext < r.settings.OverlapThreshold
}

// Forces the next refresh regardless of the overlap between the data extent and the view
func (r *Reconciler) Invalidate() {
	r.force = true
}

// Removes every primitive from the backend and drops every render set
func (r *Reconciler) Clear() {
	r.backend.RemoveAll()
	for i := range r.sets {
		r.sets[i] = newTierSet()
	}
	r.builder.SharedNodes().Clear()
	r.hasExtent = false
}

// Replaces the style configuration. Every render set is rebuilt on the next refresh.
func (r *Reconciler) SetStyleConfig(cfg *style.Config) {
	r.backend.RemoveAll()
	r.installConfig(cfg)
	r.log.Infof("style configuration replaced, %d tiers", cfg.Len())
}

// Brings the render sets in line with the camera. Skips the work when the view still overlaps the
// loaded extent enough. A database failure aborts the refresh and leaves the render sets untouched.
func (r *Reconciler) Refresh(ctx context.Context, cam *camera.Camera) (RefreshStats, error) {
	var stats RefreshStats

	if !cam.Valid() {
		r.invalidCamera++
		r.log.Warningf("camera pose invalid for globe rendering (%d in a row)", r.invalidCamera)
		if r.settings.InvalidCameraClearAfter > 0 && r.invalidCamera >= r.settings.InvalidCameraClearAfter && r.Total() > 0 {
			r.log.Warningf("clearing the scene after %d invalid camera poses", r.invalidCamera)
			r.Clear()
		}
		return stats, camera.ErrInvalidCameraGeometry
	}
	r.invalidCamera = 0

	view := cam.ViewBound()
	if !r.NeedsRefresh(view) {
		glog.V(2).Infof("view %v still covered by data extent %v", view, r.extent)
		return stats, nil
	}

	sel, err := lod.Select(cam.Eye(), view, r.cfg)
	if errors.Is(err, lod.ErrNoActiveTier) {
		r.log.Warningf("no lod tier for view distance [%.1f, %.1f]", sel.MinDistance, sel.MaxDistance)
		return stats, nil
	}
	if err != nil {
		return stats, err
	}

	queries := sel.Queries()
	units := make([]*io.WorkUnit, len(queries))
	for i, q := range queries {
		units[i] = &io.WorkUnit{Order: i, Tier: q.Index, Bound: q.Bound, Types: q.Tier.ActiveTypes()}
	}

	results, err := r.executor.Execute(ctx, r.db, units)
	if err != nil {
		r.log.Warningf("database query failed, keeping the current scene: %v", err)
		return stats, fmt.Errorf("refresh: %w", err)
	}

	wanted := r.deduplicate(units, results, &stats)
	stats.Removed = r.removeStale(wanted)
	r.addNew(wanted, &stats)

	stats.Refreshed = true
	stats.Tiers = len(units)
	r.extent = view
	r.hasExtent = true
	r.force = false

	r.log.Infof("scene refresh: %s", stats)
	return stats, nil
}

// Splits the query results into the features each tier should render. Units are processed in
// nearest to farthest order so that nearer tiers keep the features they share with farther ones.
func (r *Reconciler) deduplicate(units []*io.WorkUnit, results []*dataset.QueryResult, stats *RefreshStats) []*tierWanted {
	wanted := make([]*tierWanted, len(r.sets))
	for i := range wanted {
		wanted[i] = newTierWanted()
	}

	claimed := newClaims()
	for i, unit := range units {
		res := results[i]
		if res == nil {
			continue
		}
		w := wanted[unit.Tier]
		// a tier only claims the kinds it styles the type for
		t := r.cfg.Tier(unit.Tier)
		nodeTypes, wayTypes, areaTypes := t.NodeTypes(), t.WayTypes(), t.AreaTypes()

		for _, n := range dataset.FilterNodes(res.Nodes, unit.Bound) {
			if !nodeTypes.Has(n.Type) {
				continue
			}
			if claimed.claim(data.KindNode, n.FeatureId(), unit.Tier) {
				w.nodes[n.FeatureId()] = n
			} else {
				stats.Duplicates++
			}
		}
		for _, way := range res.Ways {
			if !wayTypes.Has(way.Type) {
				continue
			}
			if claimed.claim(data.KindWay, way.FeatureId(), unit.Tier) {
				w.ways[way.FeatureId()] = way
			} else {
				stats.Duplicates++
			}
		}
		for _, a := range res.Areas {
			if !areaTypes.Has(a.Type) {
				continue
			}
			if claimed.claim(data.KindArea, a.FeatureId(), unit.Tier) {
				w.areas[a.FeatureId()] = a
			} else {
				stats.Duplicates++
			}
		}
		for _, rel := range res.RelationAreas {
			if !areaTypes.Has(rel.Type) {
				continue
			}
			if claimed.claim(data.KindRelationArea, rel.FeatureId(), unit.Tier) {
				w.relationAreas[rel.FeatureId()] = rel
			} else {
				stats.Duplicates++
			}
		}

		stats.RelationWays += len(res.RelationWays)
		if len(res.RelationWays) > 0 {
			glog.V(2).Infof("tier %d: %d relation ways are not rendered", unit.Tier, len(res.RelationWays))
		}
	}
	return wanted
}

// Removes the records no longer wanted by their tier
func (r *Reconciler) removeStale(wanted []*tierWanted) int {
	removed := 0
	for tier, set := range r.sets {
		w := wanted[tier]

		for _, id := range sortedIds(set.nodes) {
			if _, ok := w.nodes[id]; !ok {
				r.backend.RemoveNode(set.nodes[id])
				delete(set.nodes, id)
				removed++
			}
		}
		for _, id := range sortedIds(set.ways) {
			if _, ok := w.ways[id]; !ok {
				rec := set.ways[id]
				r.builder.ReleaseWay(rec)
				r.backend.RemoveWay(rec)
				delete(set.ways, id)
				removed++
			}
		}
		for _, id := range sortedIds(set.areas) {
			if _, ok := w.areas[id]; !ok {
				r.backend.RemoveArea(set.areas[id])
				delete(set.areas, id)
				removed++
			}
		}
		for _, id := range sortedIds(set.relationAreas) {
			if _, ok := w.relationAreas[id]; !ok {
				r.backend.RemoveRelationArea(set.relationAreas[id])
				delete(set.relationAreas, id)
				removed++
			}
		}
	}
	return removed
}

// Builds and adds the records newly wanted by their tier. Features failing to build are skipped.
func (r *Reconciler) addNew(wanted []*tierWanted, stats *RefreshStats) {
	for tier, set := range r.sets {
		w := wanted[tier]
		t := r.cfg.Tier(tier)

		for _, id := range sortedIds(w.nodes) {
			if _, ok := set.nodes[id]; ok {
				continue
			}
			rec, err := r.builder.BuildNode(w.nodes[id], t)
			if r.skip(data.KindNode, id, err, stats) {
				continue
			}
			set.nodes[id] = rec
			r.backend.AddNode(rec)
			stats.Added++
		}
		for _, id := range sortedIds(w.ways) {
			if _, ok := set.ways[id]; ok {
				continue
			}
			rec, err := r.builder.BuildWay(w.ways[id], t)
			if r.skip(data.KindWay, id, err, stats) {
				continue
			}
			set.ways[id] = rec
			r.backend.AddWay(rec)
			stats.Added++
		}
		for _, id := range sortedIds(w.areas) {
			if _, ok := set.areas[id]; ok {
				continue
			}
			rec, err := r.builder.BuildAreaFeature(w.areas[id], t)
			if r.skip(data.KindArea, id, err, stats) {
				continue
			}
			set.areas[id] = rec
			r.backend.AddArea(rec)
			stats.Added++
		}
		for _, id := range sortedIds(w.relationAreas) {
			if _, ok := set.relationAreas[id]; ok {
				continue
			}
			rec, err := r.builder.BuildRelationArea(w.relationAreas[id], t)
			if r.skip(data.KindRelationArea, id, err, stats) {
				continue
			}
			set.relationAreas[id] = rec
			r.backend.AddRelationArea(rec)
			stats.Added++
		}
	}
}

// Reports whether a build result must be skipped. A missing style is silent, malformed geometry is logged.
func (r *Reconciler) skip(kind data.FeatureKind, id data.FeatureId, err error, stats *RefreshStats) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, builder.ErrNotStyled) {
		glog.V(2).Infof("%s %d has no style at its tier", kind, id)
		return true
	}
	stats.Failed++
	r.log.Warningf("skipping %s %d: %v", kind, id, err)
	return true
}
