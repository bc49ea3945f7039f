package builder

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
	"github.com/ecopia-map/globe_renderer/internal/render"
	"github.com/ecopia-map/globe_renderer/internal/style"
)

const nameTag = "name"

type Options struct {
	// height of buildings without a usable height tag, in meters
	BuildingDefaultHeight float64
	// building tag values that mark an area as a building
	BuildingTruthyValues []string
	// placement of way ribbons relative to their centerline
	RibbonMode geometry.OutlineType
}

func DefaultOptions() Options {
	return Options{
		BuildingDefaultHeight: 10,
		BuildingTruthyValues:  []string{"yes", "true", "1"},
		RibbonMode:            geometry.OutlineCenter,
	}
}

// Turns features into render records for a given tier
type Builder struct {
	elevation converters.ElevationCorrector
	shared    *render.SharedNodes
	opts      Options
}

func NewBuilder(elevation converters.ElevationCorrector, shared *render.SharedNodes, opts Options) *Builder {
	return &Builder{
		elevation: elevation,
		shared:    shared,
		opts:      opts,
	}
}

func (b *Builder) SharedNodes() *render.SharedNodes {
	return b.shared
}

func (b *Builder) toCartesian(layer int, lon, lat float64) r3.Vector {
	alt := b.elevation.CorrectLayerElevation(layer, lon, lat, 0)
	return converters.ToCartesian(geometry.GeoPoint{Lat: lat, Lon: lon, Alt: alt})
}

func label(tier *style.Tier, kind data.FeatureKind, typeId data.TypeId, tags osm.Tags) render.Label {
	s, _ := tier.LabelStyleFor(kind, typeId)
	return render.Label{Style: s, Text: tags.Find(nameTag)}
}

func (b *Builder) BuildNode(n *data.Node, tier *style.Tier) (*render.NodeRecord, error) {
	fill, ok := tier.FillStyleFor(data.KindNode, n.Type)
	if !ok {
		return nil, ErrNotStyled
	}
	symbol, _ := tier.SymbolStyleFor(n.Type)

	alt := b.elevation.CorrectElevation(n.Lon, n.Lat, 0)
	return &render.NodeRecord{
		Node:     n,
		Position: converters.ToCartesian(geometry.GeoPoint{Lat: n.Lat, Lon: n.Lon, Alt: alt}),
		Fill:     fill,
		Symbol:   symbol,
		Label:    label(tier, data.KindNode, n.Type, n.Tags),
	}, nil
}

// Converts the nodes of a way in order and registers them as owned by the way.
// The returned flags tell which nodes were already referenced by another way.
func (b *Builder) BuildLine(way osm.WayID, nodes osm.WayNodes, layer int) ([]r3.Vector, []bool) {
	points := make([]r3.Vector, len(nodes))
	for i, n := range nodes {
		points[i] = b.toCartesian(layer, n.Lon, n.Lat)
	}
	return points, b.shared.Add(way, nodes)
}

func (b *Builder) BuildWay(w *data.Way, tier *style.Tier) (*render.WayRecord, error) {
	line, ok := tier.LineStyleFor(w.Type)
	if !ok {
		return nil, ErrNotStyled
	}
	if len(w.Nodes) < 2 {
		return nil, fmt.Errorf("way %d: %w", w.ID, ErrTooFewPoints)
	}
	for i := 1; i < len(w.Nodes); i++ {
		if w.Nodes[i].Lat == w.Nodes[i-1].Lat && w.Nodes[i].Lon == w.Nodes[i-1].Lon {
			return nil, fmt.Errorf("way %d, node %d: %w", w.ID, i, ErrDegenerateSegment)
		}
	}

	layer := tier.WayLayer(w.Type)
	points, shared := b.BuildLine(w.ID, w.Nodes, layer)

	ribbon, ok := geometry.BuildRibbon(points, line.LineWidth, b.opts.RibbonMode, r3.Vector{})
	if !ok {
		b.shared.Remove(w.ID, w.Nodes)
		return nil, fmt.Errorf("way %d: %w", w.ID, ErrDegenerateSegment)
	}

	return &render.WayRecord{
		Way:    w,
		Layer:  layer,
		Points: points,
		Shared: shared,
		Ribbon: ribbon,
		Line:   line,
		Label:  label(tier, data.KindWay, w.Type, w.Tags),
	}, nil
}

// Releases the shared node references held by a way record
func (b *Builder) ReleaseWay(r *render.WayRecord) {
	b.shared.Remove(r.Way.ID, r.Way.Nodes)
}

// Validates, normalizes and converts a polygon made of an outer ring and its holes
func (b *Builder) BuildArea(outer osm.WayNodes, inners []osm.WayNodes, layer int) (render.AreaGeometry, error) {
	var geom render.AreaGeometry

	outerRing, err := areaRing(outer)
	if err != nil {
		return geom, fmt.Errorf("outer ring: %w", err)
	}
	innerRings := make([]orb.Ring, len(inners))
	for i, inner := range inners {
		if innerRings[i], err = areaRing(inner); err != nil {
			return geom, fmt.Errorf("inner ring %d: %w", i, err)
		}
	}

	if !geometry.IsSimplePolygon(outerRing, innerRings) {
		return geom, ErrComplexPolygon
	}

	geom.SourceCCW = geometry.RingOrientation(outerRing) == orb.CCW
	geom.Polygon = geometry.NormalizePolygon(outerRing, innerRings)
	geom.Outer = b.ringToCartesian(geom.Polygon[0], layer)
	for _, inner := range geom.Polygon[1:] {
		geom.Inners = append(geom.Inners, b.ringToCartesian(inner, layer))
	}

	center, _ := planar.CentroidArea(closedPolygon(geom.Polygon))
	geom.Center = b.toCartesian(layer, center.Lon(), center.Lat())
	return geom, nil
}

// Open ring without repeated vertices, rejecting rings that enclose no area
func areaRing(nodes osm.WayNodes) (orb.Ring, error) {
	r := geometry.OpenRing(data.NodesToRing(data.CompactNodes(nodes)))
	if len(r) < 3 {
		return nil, ErrTooFewPoints
	}
	if geometry.RingOrientation(r) == 0 {
		return nil, ErrDegenerateRing
	}
	return r, nil
}

func (b *Builder) ringToCartesian(r orb.Ring, layer int) []r3.Vector {
	out := make([]r3.Vector, len(r))
	for i, p := range r {
		out[i] = b.toCartesian(layer, p.Lon(), p.Lat())
	}
	return out
}

func closedPolygon(p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, r := range p {
		out[i] = append(r.Clone(), r[0])
	}
	return out
}

func (b *Builder) building(tags osm.Tags) *render.Extrusion {
	if !IsBuilding(tags, b.opts.BuildingTruthyValues) {
		return nil
	}
	return &render.Extrusion{Height: BuildingHeight(tags, b.opts.BuildingDefaultHeight)}
}

func (b *Builder) BuildAreaFeature(a *data.Area, tier *style.Tier) (*render.AreaRecord, error) {
	fill, ok := tier.FillStyleFor(data.KindArea, a.Type)
	if !ok {
		return nil, ErrNotStyled
	}

	layer := tier.AreaLayer(a.Type)
	geom, err := b.BuildArea(a.Nodes, nil, layer)
	if err != nil {
		return nil, fmt.Errorf("area %d: %w", a.ID, err)
	}

	return &render.AreaRecord{
		Area:     a,
		Layer:    layer,
		Geometry: geom,
		Fill:     fill,
		Building: b.building(a.Tags),
		Label:    label(tier, data.KindArea, a.Type, a.Tags),
	}, nil
}

// Builds every polygon of a relation. The relation is rejected when any of its polygons is invalid.
func (b *Builder) BuildRelationArea(r *data.RelationArea, tier *style.Tier) (*render.RelationAreaRecord, error) {
	fill, ok := tier.FillStyleFor(data.KindRelationArea, r.Type)
	if !ok {
		return nil, ErrNotStyled
	}

	groups, err := DecomposeRelation(r.Roles)
	if err != nil {
		return nil, fmt.Errorf("relation %d: %w", r.ID, err)
	}

	layer := tier.AreaLayer(r.Type)
	rec := &render.RelationAreaRecord{
		Relation: r,
		Layer:    layer,
		Fill:     fill,
		Building: b.building(r.Tags),
		Label:    label(tier, data.KindRelationArea, r.Type, r.Tags),
	}
	for i, g := range groups {
		geom, err := b.BuildArea(g.Outer, g.Inners, layer)
		if err != nil {
			return nil, fmt.Errorf("relation %d, polygon %d: %w", r.ID, i, err)
		}
		rec.Parts = append(rec.Parts, geom)
	}
	return rec, nil
}
