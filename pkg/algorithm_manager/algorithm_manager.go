package algorithm_manager

import (
	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/dataset"
	"github.com/ecopia-map/globe_renderer/internal/io"
)

type AlgorithmManager interface {
	GetElevationCorrectionAlgorithm() converters.ElevationCorrector
	GetCoordinateConverterAlgorithm() converters.CoordinateConverter
	GetQueryExecutorAlgorithm() io.QueryExecutor
	GetDatabaseAlgorithm() *dataset.GridDatabase
}
