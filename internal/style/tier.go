package style

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ecopia-map/globe_renderer/internal/data"
)

var ErrInvalidDistanceRange = errors.New("max distance must be greater than min distance")

// Styles in effect while the camera is between MinDistance and MaxDistance meters from the visible ground.
// Absence of a style for a type means that the type is not rendered by this tier.
type Tier struct {
	minDistance float64
	maxDistance float64

	nodes map[data.TypeId]*NodeStyle
	ways  map[data.TypeId]*WayStyle
	areas map[data.TypeId]*AreaStyle

	nodeTypes data.TypeSet
	wayTypes  data.TypeSet
	areaTypes data.TypeSet
	fonts     []string
}

// Builds an empty tier covering [0, 250) meters
func NewTier() *Tier {
	return &Tier{
		maxDistance: 250,
		nodes:       make(map[data.TypeId]*NodeStyle),
		ways:        make(map[data.TypeId]*WayStyle),
		areas:       make(map[data.TypeId]*AreaStyle),
		nodeTypes:   data.NewTypeSet(),
		wayTypes:    data.NewTypeSet(),
		areaTypes:   data.NewTypeSet(),
	}
}

func (t *Tier) SetDistanceRange(minDistance, maxDistance float64) error {
	if maxDistance <= minDistance {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidDistanceRange, minDistance, maxDistance)
	}
	t.minDistance = minDistance
	t.maxDistance = maxDistance
	return nil
}

func (t *Tier) MinDistance() float64 {
	return t.minDistance
}

func (t *Tier) MaxDistance() float64 {
	return t.maxDistance
}

func (t *Tier) SetNodeStyle(typeId data.TypeId, s *NodeStyle) {
	t.nodes[typeId] = s
}

func (t *Tier) SetWayStyle(typeId data.TypeId, s *WayStyle) {
	t.ways[typeId] = s
}

func (t *Tier) SetAreaStyle(typeId data.TypeId, s *AreaStyle) {
	t.areas[typeId] = s
}

// Rebuilds the per kind type sets and the font list from the configured styles.
// Must be called after the last Set*Style call.
func (t *Tier) PostProcess() {
	t.nodeTypes = data.NewTypeSet()
	t.wayTypes = data.NewTypeSet()
	t.areaTypes = data.NewTypeSet()

	fonts := make(map[string]bool)
	for id, s := range t.nodes {
		if s != nil && s.Fill != nil {
			t.nodeTypes.Add(id)
			if s.Label != nil {
				fonts[s.Label.FontFamily] = true
			}
		}
	}
	for id, s := range t.ways {
		if s != nil && s.Line != nil {
			t.wayTypes.Add(id)
			if s.Label != nil {
				fonts[s.Label.FontFamily] = true
			}
		}
	}
	for id, s := range t.areas {
		if s != nil && s.Fill != nil {
			t.areaTypes.Add(id)
			if s.Label != nil {
				fonts[s.Label.FontFamily] = true
			}
		}
	}

	t.fonts = t.fonts[:0]
	for f := range fonts {
		t.fonts = append(t.fonts, f)
	}
	sort.Strings(t.fonts)
}

// Types with at least one renderable style in this tier, over all kinds
func (t *Tier) ActiveTypes() data.TypeSet {
	return t.nodeTypes.Union(t.wayTypes).Union(t.areaTypes)
}

func (t *Tier) NodeTypes() data.TypeSet {
	return t.nodeTypes
}

func (t *Tier) WayTypes() data.TypeSet {
	return t.wayTypes
}

func (t *Tier) AreaTypes() data.TypeSet {
	return t.areaTypes
}

// Sorted unique font families used by the labels of this tier
func (t *Tier) Fonts() []string {
	return t.fonts
}

func (t *Tier) LineStyleFor(typeId data.TypeId) (*LineStyle, bool) {
	if s, ok := t.ways[typeId]; ok && s != nil && s.Line != nil {
		return s.Line, true
	}
	return nil, false
}

func (t *Tier) SymbolStyleFor(typeId data.TypeId) (*SymbolStyle, bool) {
	if s, ok := t.nodes[typeId]; ok && s != nil && s.Symbol != nil {
		return s.Symbol, true
	}
	return nil, false
}

// Fill style of a node or area type. Relation areas share the area styles.
func (t *Tier) FillStyleFor(kind data.FeatureKind, typeId data.TypeId) (*FillStyle, bool) {
	switch kind {
	case data.KindNode:
		if s, ok := t.nodes[typeId]; ok && s != nil && s.Fill != nil {
			return s.Fill, true
		}
	case data.KindArea, data.KindRelationArea:
		if s, ok := t.areas[typeId]; ok && s != nil && s.Fill != nil {
			return s.Fill, true
		}
	}
	return nil, false
}

func (t *Tier) LabelStyleFor(kind data.FeatureKind, typeId data.TypeId) (*LabelStyle, bool) {
	var label *LabelStyle
	switch kind {
	case data.KindNode:
		if s, ok := t.nodes[typeId]; ok && s != nil {
			label = s.Label
		}
	case data.KindWay:
		if s, ok := t.ways[typeId]; ok && s != nil {
			label = s.Label
		}
	case data.KindArea, data.KindRelationArea:
		if s, ok := t.areas[typeId]; ok && s != nil {
			label = s.Label
		}
	}
	return label, label != nil
}

func (t *Tier) WayLayer(typeId data.TypeId) int {
	if s, ok := t.ways[typeId]; ok && s != nil {
		return s.Layer
	}
	return 0
}

func (t *Tier) AreaLayer(typeId data.TypeId) int {
	if s, ok := t.areas[typeId]; ok && s != nil {
		return s.Layer
	}
	return 0
}

func (t *Tier) MaxWayLayer() int {
	max := 0
	for _, s := range t.ways {
		if s != nil && s.Layer > max {
			max = s.Layer
		}
	}
	return max
}

func (t *Tier) MaxAreaLayer() int {
	max := 0
	for _, s := range t.areas {
		if s != nil && s.Layer > max {
			max = s.Layer
		}
	}
	return max
}

// Ordered list of tiers, nearest first. Immutable once handed to the renderer.
type Config struct {
	tiers []*Tier
}

// Builds a configuration from the given tiers, post processing each one and ordering them by distance
func NewConfig(tiers ...*Tier) (*Config, error) {
	sorted := append([]*Tier(nil), tiers...)
	for _, t := range sorted {
		if t.maxDistance <= t.minDistance {
			return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidDistanceRange, t.minDistance, t.maxDistance)
		}
		t.PostProcess()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].minDistance < sorted[j].minDistance
	})
	return &Config{tiers: sorted}, nil
}

func (c *Config) Tiers() []*Tier {
	if c == nil {
		return nil
	}
	return c.tiers
}

func (c *Config) Tier(i int) *Tier {
	return c.tiers[i]
}

func (c *Config) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tiers)
}

// Sorted unique font families used over all tiers
func (c *Config) Fonts() []string {
	set := make(map[string]bool)
	for _, t := range c.Tiers() {
		for _, f := range t.fonts {
			set[f] = true
		}
	}
	fonts := make([]string, 0, len(set))
	for f := range set {
		fonts = append(fonts, f)
	}
	sort.Strings(fonts)
	return fonts
}
