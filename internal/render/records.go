package render

import (
	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"

	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/style"
)

// Text drawn next to a feature. A label is drawn only when both the style and the text are present.
type Label struct {
	Style *style.LabelStyle
	Text  string
}

func (l Label) Eligible() bool {
	return l.Style != nil && l.Text != ""
}

// Extruded building body of an area
type Extrusion struct {
	Height float64
}

type NodeRecord struct {
	Node     *data.Node
	Position r3.Vector
	Fill     *style.FillStyle
	Symbol   *style.SymbolStyle
	Label    Label
}

func (r *NodeRecord) Id() data.FeatureId {
	return r.Node.FeatureId()
}

type WayRecord struct {
	Way    *data.Way
	Layer  int
	Points []r3.Vector
	// Shared[i] is set when the i-th node was already referenced by another rendered way
	Shared []bool
	// triangle strip of the ribbon around the centerline, alternating left and right vertices
	Ribbon []r3.Vector
	Line   *style.LineStyle
	Label  Label
}

func (r *WayRecord) Id() data.FeatureId {
	return r.Way.FeatureId()
}

// Geometry of one polygon with its holes
type AreaGeometry struct {
	// normalized planar polygon, outer ring counter-clockwise and holes clockwise, rings open
	Polygon orb.Polygon
	Center  r3.Vector
	Outer   []r3.Vector
	Inners  [][]r3.Vector
	// orientation of the source outer ring before normalization
	SourceCCW bool
}

type AreaRecord struct {
	Area     *data.Area
	Layer    int
	Geometry AreaGeometry
	Fill     *style.FillStyle
	Building *Extrusion
	Label    Label
}

func (r *AreaRecord) Id() data.FeatureId {
	return r.Area.FeatureId()
}

type RelationAreaRecord struct {
	Relation *data.RelationArea
	Layer    int
	// one entry per outer polygon
	Parts    []AreaGeometry
	Fill     *style.FillStyle
	Building *Extrusion
	Label    Label
}

func (r *RelationAreaRecord) Id() data.FeatureId {
	return r.Relation.FeatureId()
}
