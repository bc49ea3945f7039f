package style

import "github.com/ecopia-map/globe_renderer/internal/data"

// Builds a three tier configuration for the types of data.DefaultTypeConfig
func DefaultConfig(tc *data.TypeConfig) (*Config, error) {
	near := NewTier()
	mid := NewTier()
	far := NewTier()

	if err := near.SetDistanceRange(0, 2500); err != nil {
		return nil, err
	}
	if err := mid.SetDistanceRange(2500, 25000); err != nil {
		return nil, err
	}
	if err := far.SetDistanceRange(25000, 500000); err != nil {
		return nil, err
	}

	label := NewLabelStyle()
	label.FontFamily = "DejaVuSans"
	label.FontColor = MustParseColor("#202020ff")

	roads := []struct {
		name  string
		width float64
		color string
		tiers []*Tier
	}{
		{"highway_motorway", 14, "#e892a2ff", []*Tier{near, mid, far}},
		{"highway_trunk", 12, "#f9b29cff", []*Tier{near, mid, far}},
		{"highway_primary", 10, "#fcd6a4ff", []*Tier{near, mid}},
		{"highway_secondary", 8, "#f7fabfff", []*Tier{near, mid}},
		{"highway_tertiary", 7, "#ffffffff", []*Tier{near}},
		{"highway_residential", 5, "#ffffffff", []*Tier{near}},
		{"highway_service", 3, "#ffffffff", []*Tier{near}},
		{"highway_footway", 1.5, "#fa8072ff", []*Tier{near}},
		{"highway_cycleway", 1.5, "#0000ffff", []*Tier{near}},
		{"railway_rail", 3, "#707070ff", []*Tier{near, mid}},
		{"waterway_river", 10, "#aad3dfff", []*Tier{near, mid, far}},
		{"waterway_stream", 3, "#aad3dfff", []*Tier{near}},
	}
	for _, r := range roads {
		id := tc.GetTypeId(r.name)
		if id == data.TypeIgnore {
			continue
		}
		for _, t := range r.tiers {
			line := NewLineStyle(r.width)
			line.LineColor = MustParseColor(r.color)
			line.OutlineWidth = 1
			line.OutlineColor = MustParseColor("#a0a0a0ff")
			ws := &WayStyle{Layer: 1, Line: line}
			if t == near {
				ws.Label = label
			}
			t.SetWayStyle(id, ws)
		}
	}

	areas := []struct {
		name  string
		layer int
		color string
		tiers []*Tier
	}{
		{"building_yes", 2, "#d9d0c9ff", []*Tier{near}},
		{"landuse_residential", 0, "#e0dfdfff", []*Tier{near, mid}},
		{"landuse_grass", 0, "#cdebb0ff", []*Tier{near, mid}},
		{"landuse_forest", 0, "#add19eff", []*Tier{near, mid, far}},
		{"leisure_park", 0, "#c8faccff", []*Tier{near, mid}},
		{"natural_water", 1, "#aad3dfff", []*Tier{near, mid, far}},
		{"natural_wood", 0, "#add19eff", []*Tier{near, mid, far}},
		{"amenity_parking", 0, "#eeeeeeff", []*Tier{near}},
	}
	for _, a := range areas {
		id := tc.GetTypeId(a.name)
		if id == data.TypeIgnore {
			continue
		}
		for _, t := range a.tiers {
			fill := NewFillStyle()
			if c, err := ParseColor(a.color); err == nil {
				fill.FillColor = c
			}
			t.SetAreaStyle(id, &AreaStyle{Layer: a.layer, Fill: fill})
		}
	}

	places := []struct {
		name  string
		tiers []*Tier
	}{
		{"place_city", []*Tier{mid, far}},
		{"place_town", []*Tier{mid}},
		{"place_suburb", []*Tier{near}},
		{"amenity_cafe", []*Tier{near}},
		{"amenity_restaurant", []*Tier{near}},
		{"railway_station", []*Tier{near, mid}},
		{"highway_bus_stop", []*Tier{near}},
	}
	for _, p := range places {
		id := tc.GetTypeId(p.name)
		if id == data.TypeIgnore {
			continue
		}
		for _, t := range p.tiers {
			symbol := NewSymbolStyle()
			symbol.Type = SymbolCircle
			symbol.Size = 8
			t.SetNodeStyle(id, &NodeStyle{Fill: NewFillStyle(), Symbol: symbol, Label: label})
		}
	}

	return NewConfig(near, mid, far)
}
