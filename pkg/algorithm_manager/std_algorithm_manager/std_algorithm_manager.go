package std_algorithm_manager

import (
	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/converters/elevation/layer_elevation_corrector"
	"github.com/ecopia-map/globe_renderer/internal/converters/proj4_coordinate_converter"
	"github.com/ecopia-map/globe_renderer/internal/dataset"
	"github.com/ecopia-map/globe_renderer/internal/io"
	"github.com/ecopia-map/globe_renderer/internal/renderer"
	"github.com/ecopia-map/globe_renderer/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	options             *renderer.Options
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
}

func NewAlgorithmManager(opts *renderer.Options) algorithm_manager.AlgorithmManager {
	return &StandardAlgorithmManager{
		options:             opts,
		coordinateConverter: coordinateConverterFor(opts.Srid),
		elevationCorrector:  layer_elevation_corrector.NewLayerElevationCorrector(opts.ElevationOffset, opts.LayerElevationStep),
	}
}

// WGS84 inputs skip proj4 entirely
func coordinateConverterFor(srid int) converters.CoordinateConverter {
	if srid == converters.WGS84Srid {
		return converters.NewWGS84Converter()
	}
	return proj4_coordinate_converter.NewProj4CoordinateConverter()
}

func (m *StandardAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return m.elevationCorrector
}

func (m *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return m.coordinateConverter
}

func (m *StandardAlgorithmManager) GetQueryExecutorAlgorithm() io.QueryExecutor {
	if m.options.ParallelQueries {
		return io.ParallelExecutor{Workers: m.options.QueryWorkers}
	}
	return io.SequentialExecutor{}
}

func (m *StandardAlgorithmManager) GetDatabaseAlgorithm() *dataset.GridDatabase {
	return dataset.NewGridDatabase(m.options.CellSize)
}
