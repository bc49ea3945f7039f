package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/globe_renderer/internal/data"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff000080")
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.R)
	assert.Equal(t, 0.0, c.G)
	assert.InDelta(t, 128.0/255, c.A, 1e-12)
	assert.Equal(t, "#ff000080", c.String())

	c, err = ParseColor("#00ff00")
	require.NoError(t, err)
	assert.Equal(t, ColorRGBA{G: 1, A: 1}, c)

	_, err = ParseColor("#12")
	assert.ErrorIs(t, err, ErrInvalidColor)
	_, err = ParseColor("#gggggggg")
	assert.ErrorIs(t, err, ErrInvalidColor)

	assert.Panics(t, func() { MustParseColor("red") })
}

func TestLineWidthIsClamped(t *testing.T) {
	assert.Equal(t, 1.0, NewLineStyle(0.2).LineWidth)
	assert.Equal(t, 4.0, NewLineStyle(4).LineWidth)
}

func TestLabelDefaults(t *testing.T) {
	l := NewLabelStyle()
	assert.Equal(t, 10.0, l.FontSize)
	assert.Equal(t, 0.5, l.ContourPadding)
	assert.Equal(t, 5.0, l.OffsetHeight)
	assert.Equal(t, LabelDefault, l.Type)
}

func TestTierDistanceRange(t *testing.T) {
	tier := NewTier()
	assert.Equal(t, 0.0, tier.MinDistance())
	assert.Equal(t, 250.0, tier.MaxDistance())

	assert.ErrorIs(t, tier.SetDistanceRange(10, 10), ErrInvalidDistanceRange)
	require.NoError(t, tier.SetDistanceRange(10, 20))
	assert.Equal(t, 20.0, tier.MaxDistance())
}

func TestTierLookups(t *testing.T) {
	tier := NewTier()
	label := NewLabelStyle()
	label.FontFamily = "Serif"
	other := NewLabelStyle()
	other.FontFamily = "Mono"

	tier.SetWayStyle(1, &WayStyle{Layer: 3, Line: NewLineStyle(2), Label: label})
	tier.SetWayStyle(2, &WayStyle{Layer: 5})
	tier.SetAreaStyle(4, &AreaStyle{Layer: 1, Fill: NewFillStyle(), Label: other})
	tier.SetNodeStyle(6, &NodeStyle{Fill: NewFillStyle(), Symbol: NewSymbolStyle(), Label: label})
	tier.PostProcess()

	assert.Equal(t, []data.TypeId{1}, tier.WayTypes().Ids(), "ways without a line style are not active")
	assert.Equal(t, []data.TypeId{4}, tier.AreaTypes().Ids())
	assert.Equal(t, []data.TypeId{1, 4, 6}, tier.ActiveTypes().Ids())
	assert.Equal(t, []string{"Mono", "Serif"}, tier.Fonts())

	_, ok := tier.LineStyleFor(1)
	assert.True(t, ok)
	_, ok = tier.LineStyleFor(2)
	assert.False(t, ok)
	_, ok = tier.LineStyleFor(42)
	assert.False(t, ok)

	_, ok = tier.FillStyleFor(data.KindArea, 4)
	assert.True(t, ok)
	_, ok = tier.FillStyleFor(data.KindRelationArea, 4)
	assert.True(t, ok)
	_, ok = tier.FillStyleFor(data.KindNode, 4)
	assert.False(t, ok)
	_, ok = tier.FillStyleFor(data.KindWay, 1)
	assert.False(t, ok)

	l, ok := tier.LabelStyleFor(data.KindWay, 1)
	require.True(t, ok)
	assert.Same(t, label, l)
	_, ok = tier.LabelStyleFor(data.KindWay, 2)
	assert.False(t, ok)

	_, ok = tier.SymbolStyleFor(6)
	assert.True(t, ok)

	assert.Equal(t, 3, tier.WayLayer(1))
	assert.Equal(t, 0, tier.WayLayer(9))
	assert.Equal(t, 5, tier.MaxWayLayer())
	assert.Equal(t, 1, tier.MaxAreaLayer())
}

func TestNewConfigOrdersTiers(t *testing.T) {
	far := NewTier()
	require.NoError(t, far.SetDistanceRange(1000, 5000))
	near := NewTier()
	require.NoError(t, near.SetDistanceRange(0, 1000))

	cfg, err := NewConfig(far, near)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Len())
	assert.Same(t, near, cfg.Tier(0))
	assert.Same(t, far, cfg.Tier(1))

	broken := &Tier{minDistance: 5, maxDistance: 1}
	_, err = NewConfig(broken)
	assert.ErrorIs(t, err, ErrInvalidDistanceRange)

	var empty *Config
	assert.Equal(t, 0, empty.Len())
}

func TestDefaultConfig(t *testing.T) {
	tc := data.DefaultTypeConfig()
	cfg, err := DefaultConfig(tc)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Len())

	for i := 1; i < cfg.Len(); i++ {
		assert.LessOrEqual(t, cfg.Tier(i-1).MaxDistance(), cfg.Tier(i).MinDistance())
	}

	motorway := tc.GetTypeId("highway_motorway")
	for _, tier := range cfg.Tiers() {
		assert.True(t, tier.WayTypes().Has(motorway))
	}

	building := tc.GetTypeId("building_yes")
	assert.True(t, cfg.Tier(0).AreaTypes().Has(building))
	assert.False(t, cfg.Tier(2).AreaTypes().Has(building))
	assert.Equal(t, []string{"DejaVuSans"}, cfg.Fonts())
}
