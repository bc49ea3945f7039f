package io

import (
	"os"
	"sort"

	"github.com/golang/geo/r3"
	geojson "github.com/paulmach/go.geojson"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/render"
	"github.com/ecopia-map/globe_renderer/internal/style"
)

// Backend keeping the live records so that the rendered scene can be exported as GeoJSON
type SnapshotBackend struct {
	*render.RecordingBackend
}

func NewSnapshotBackend() *SnapshotBackend {
	return &SnapshotBackend{RecordingBackend: render.NewRecordingBackend()}
}

// Converts the live records back to geodetic coordinates. Features are ordered by kind and id.
func (b *SnapshotBackend) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, id := range sortedKeys(b.Nodes) {
		r := b.Nodes[id]
		f := geojson.NewPointFeature(position(r.Position))
		setCommon(f, data.KindNode, id, r.Label)
		fc.AddFeature(f)
	}
	for _, id := range sortedKeys(b.Ways) {
		r := b.Ways[id]
		f := geojson.NewLineStringFeature(positions(r.Points))
		setCommon(f, data.KindWay, id, r.Label)
		f.SetProperty("layer", r.Layer)
		shared := 0
		for _, s := range r.Shared {
			if s {
				shared++
			}
		}
		f.SetProperty("shared_nodes", shared)
		if r.Line != nil {
			f.SetProperty("color", r.Line.LineColor.String())
			f.SetProperty("width", r.Line.LineWidth)
		}
		fc.AddFeature(f)
	}
	for _, id := range sortedKeys(b.Areas) {
		r := b.Areas[id]
		f := geojson.NewPolygonFeature(polygon(r.Geometry))
		setCommon(f, data.KindArea, id, r.Label)
		setArea(f, r.Layer, r.Fill, r.Building)
		fc.AddFeature(f)
	}
	for _, id := range sortedKeys(b.RelationAreas) {
		r := b.RelationAreas[id]
		polygons := make([][][][]float64, len(r.Parts))
		for i, part := range r.Parts {
			polygons[i] = polygon(part)
		}
		f := geojson.NewMultiPolygonFeature(polygons...)
		setCommon(f, data.KindRelationArea, id, r.Label)
		setArea(f, r.Layer, r.Fill, r.Building)
		fc.AddFeature(f)
	}
	return fc
}

// Writes the snapshot to a file
func (b *SnapshotBackend) WriteFile(path string) error {
	raw, err := b.FeatureCollection().MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0666)
}

func setCommon(f *geojson.Feature, kind data.FeatureKind, id data.FeatureId, label render.Label) {
	f.ID = int64(id)
	f.SetProperty("kind", kind.String())
	if label.Eligible() {
		f.SetProperty("label", label.Text)
	}
}

func setArea(f *geojson.Feature, layer int, fill *style.FillStyle, building *render.Extrusion) {
	f.SetProperty("layer", layer)
	if fill != nil {
		f.SetProperty("fill", fill.FillColor.String())
	}
	if building != nil {
		f.SetProperty("building_height", building.Height)
	}
}

func position(p r3.Vector) []float64 {
	g := converters.ToGeodetic(p)
	return []float64{g.Lon, g.Lat, g.Alt}
}

func positions(points []r3.Vector) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = position(p)
	}
	return out
}

// GeoJSON rings are closed
func ring(points []r3.Vector) [][]float64 {
	out := positions(points)
	if len(out) > 0 {
		out = append(out, out[0])
	}
	return out
}

func polygon(g render.AreaGeometry) [][][]float64 {
	rings := [][][]float64{ring(g.Outer)}
	for _, inner := range g.Inners {
		rings = append(rings, ring(inner))
	}
	return rings
}

func sortedKeys[T any](m map[data.FeatureId]T) []data.FeatureId {
	ids := make([]data.FeatureId, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
