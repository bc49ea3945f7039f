package std_algorithm_manager

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/converters/proj4_coordinate_converter"
	"github.com/ecopia-map/globe_renderer/internal/io"
	"github.com/ecopia-map/globe_renderer/internal/renderer"
)

func TestConverterFollowsSrid(t *testing.T) {
	opts := renderer.DefaultOptions()
	m := NewAlgorithmManager(opts)
	assert.IsType(t, &converters.WGS84Converter{}, m.GetCoordinateConverterAlgorithm())

	opts = renderer.DefaultOptions()
	opts.Srid = 3857
	m = NewAlgorithmManager(opts)
	assert.IsType(t, &proj4_coordinate_converter.Proj4CoordinateConverter{}, m.GetCoordinateConverterAlgorithm())
}

func TestExecutorFollowsOptions(t *testing.T) {
	opts := renderer.DefaultOptions()
	assert.Equal(t, io.SequentialExecutor{}, NewAlgorithmManager(opts).GetQueryExecutorAlgorithm())

	opts.ParallelQueries = true
	opts.QueryWorkers = 3
	assert.Equal(t, io.ParallelExecutor{Workers: 3}, NewAlgorithmManager(opts).GetQueryExecutorAlgorithm())
}

func TestElevationCorrectorUsesLayerStep(t *testing.T) {
	opts := renderer.DefaultOptions()
	opts.ElevationOffset = 2
	opts.LayerElevationStep = 0.5
	c := NewAlgorithmManager(opts).GetElevationCorrectionAlgorithm()

	assert.Equal(t, 2.0, c.CorrectElevation(0, 0, 0))
	assert.Equal(t, 3.5, c.CorrectLayerElevation(3, 0, 0, 0))
}
