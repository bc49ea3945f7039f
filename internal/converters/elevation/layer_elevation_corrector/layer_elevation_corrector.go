package layer_elevation_corrector

import "github.com/ecopia-map/globe_renderer/internal/converters"

// Lifts features by a fixed offset plus a per-layer step so that stacked layers do not z-fight
type LayerElevationCorrector struct {
	Offset    float64
	LayerStep float64
}

func NewLayerElevationCorrector(offset, layerStep float64) converters.ElevationCorrector {
	return &LayerElevationCorrector{
		Offset:    offset,
		LayerStep: layerStep,
	}
}

func (c *LayerElevationCorrector) CorrectElevation(lon, lat, z float64) float64 {
	return z + c.Offset
}

func (c *LayerElevationCorrector) CorrectLayerElevation(layer int, lon, lat, z float64) float64 {
	return c.CorrectElevation(lon, lat, z) + float64(layer)*c.LayerStep
}
