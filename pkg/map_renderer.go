package pkg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang/geo/r3"

	"github.com/ecopia-map/globe_renderer/internal/builder"
	"github.com/ecopia-map/globe_renderer/internal/camera"
	"github.com/ecopia-map/globe_renderer/internal/data"
	"github.com/ecopia-map/globe_renderer/internal/dataset"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
	"github.com/ecopia-map/globe_renderer/internal/render"
	"github.com/ecopia-map/globe_renderer/internal/renderer"
	"github.com/ecopia-map/globe_renderer/internal/scene"
	"github.com/ecopia-map/globe_renderer/internal/style"
	"github.com/ecopia-map/globe_renderer/pkg/algorithm_manager"
	"github.com/ecopia-map/globe_renderer/tools"
)

type IMapRenderer interface {
	LoadDataset(ctx context.Context) (dataset.LoadStats, error)
	InitializeScene(ctx context.Context, position geometry.GeoPoint, fovY, aspectRatio float64) (scene.RefreshStats, error)
	UpdateCameraLookAt(ctx context.Context, eye, viewPt, up r3.Vector) (scene.RefreshStats, error)
	SetCamera(ctx context.Context, position geometry.GeoPoint, mode camera.ViewMode) (scene.RefreshStats, error)
	Pan(ctx context.Context, bearing, distance float64) (scene.RefreshStats, error)
	Zoom(ctx context.Context, amount float64) (scene.RefreshStats, error)
	Rotate(ctx context.Context, axis camera.RotationAxis, angle float64) (scene.RefreshStats, error)
	SetStyleConfig(cfg *style.Config)
	DebugLog() []tools.DebugEntry
}

var _ IMapRenderer = (*MapRenderer)(nil)

// Ties the camera, the database and the scene reconciler together
type MapRenderer struct {
	opts       *renderer.Options
	fileFinder tools.FileFinder
	manager    algorithm_manager.AlgorithmManager

	types      *data.TypeConfig
	db         *dataset.GridDatabase
	camera     *camera.Camera
	backend    render.Backend
	reconciler *scene.Reconciler
	log        *tools.DebugLog
}

// Builds a renderer drawing into backend. A nil cfg installs the default style configuration.
func NewMapRenderer(opts *renderer.Options, fileFinder tools.FileFinder, manager algorithm_manager.AlgorithmManager,
	backend render.Backend, types *data.TypeConfig, cfg *style.Config) (*MapRenderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if types == nil {
		types = data.DefaultTypeConfig()
	}
	if cfg == nil {
		var err error
		if cfg, err = style.DefaultConfig(types); err != nil {
			return nil, err
		}
	}

	m := &MapRenderer{
		opts:       opts,
		fileFinder: fileFinder,
		manager:    manager,
		types:      types,
		db:         manager.GetDatabaseAlgorithm(),
		backend:    backend,
		log:        tools.NewDebugLog(),
	}
	m.camera = camera.NewCamera(m.cameraSettings(opts.Camera.FovY, opts.Camera.AspectRatio))

	b := builder.NewBuilder(manager.GetElevationCorrectionAlgorithm(), render.NewSharedNodes(), builder.Options{
		BuildingDefaultHeight: opts.BuildingDefaultHeight,
		BuildingTruthyValues:  opts.BuildingTruthyValues,
		RibbonMode:            opts.RibbonMode.OutlineType(),
	})
	m.reconciler = scene.NewReconciler(m.db, manager.GetQueryExecutorAlgorithm(), b, backend, cfg, scene.Settings{
		OverlapThreshold:        opts.RefreshOverlapThreshold,
		InvalidCameraClearAfter: opts.InvalidCameraClearAfter,
	}, m.log)
	return m, nil
}

func (m *MapRenderer) cameraSettings(fovY, aspectRatio float64) camera.Settings {
	return camera.Settings{
		FovY:         fovY,
		AspectRatio:  aspectRatio,
		NearFactor:   m.opts.NearClipFactor,
		FallbackNear: m.opts.FallbackNearDist,
		FallbackFar:  m.opts.FallbackFarDist(),
	}
}

func (m *MapRenderer) Camera() *camera.Camera {
	return m.camera
}

func (m *MapRenderer) Database() *dataset.GridDatabase {
	return m.db
}

func (m *MapRenderer) Reconciler() *scene.Reconciler {
	return m.reconciler
}

// Entries of the append-only debug log
func (m *MapRenderer) DebugLog() []tools.DebugEntry {
	return m.log.Entries()
}

// Loads every dataset file found under the input option into the database
func (m *MapRenderer) LoadDataset(ctx context.Context) (dataset.LoadStats, error) {
	var total dataset.LoadStats

	files, err := m.fileFinder.GetDatasetFiles(m.opts.Input, m.opts.Recursive)
	if err != nil {
		return total, err
	}
	if len(files) == 0 {
		return total, fmt.Errorf("no dataset file found in %s", m.opts.Input)
	}

	geojsonLoader := dataset.NewGeoJSONLoader(m.types, m.manager.GetCoordinateConverterAlgorithm(), m.opts.Srid)
	loaders := dataset.Loaders{
		GeoJSON:   geojsonLoader,
		PBF:       dataset.NewPBFLoader(m.types),
		Shapefile: geojsonLoader.ShapefileLoader(),
	}
	defer m.manager.GetCoordinateConverterAlgorithm().Cleanup()

	for i, path := range files {
		tools.LogOutputf("Loading file %d/%d: %s", i+1, len(files), filepath.Base(path))
		stats, err := dataset.LoadFile(ctx, path, loaders, m.db)
		if err != nil {
			return total, err
		}
		total.Nodes += stats.Nodes
		total.Ways += stats.Ways
		total.Areas += stats.Areas
		total.RelationWays += stats.RelationWays
		total.RelationAreas += stats.RelationAreas
		total.Ignored += stats.Ignored
		total.Broken += stats.Broken
	}

	m.log.Infof("dataset loaded, %s", total)
	// data changed under the current extent
	m.reconciler.Invalidate()
	return total, nil
}

// Replaces the camera projection and places it straight above position, then refreshes the scene
func (m *MapRenderer) InitializeScene(ctx context.Context, position geometry.GeoPoint, fovY, aspectRatio float64) (scene.RefreshStats, error) {
	m.camera = camera.NewCamera(m.cameraSettings(fovY, aspectRatio))
	m.reconciler.Invalidate()
	return m.afterCameraChange(ctx, m.camera.SetCamera(position, camera.ViewTopDown))
}

// For hosts that drive the camera with their own manipulator
func (m *MapRenderer) UpdateCameraLookAt(ctx context.Context, eye, viewPt, up r3.Vector) (scene.RefreshStats, error) {
	return m.afterCameraChange(ctx, m.camera.LookAt(eye, viewPt, up))
}

func (m *MapRenderer) SetCamera(ctx context.Context, position geometry.GeoPoint, mode camera.ViewMode) (scene.RefreshStats, error) {
	return m.afterCameraChange(ctx, m.camera.SetCamera(position, mode))
}

func (m *MapRenderer) Pan(ctx context.Context, bearing, distance float64) (scene.RefreshStats, error) {
	return m.afterCameraChange(ctx, m.camera.Pan(bearing, distance))
}

func (m *MapRenderer) Zoom(ctx context.Context, amount float64) (scene.RefreshStats, error) {
	return m.afterCameraChange(ctx, m.camera.Zoom(amount))
}

func (m *MapRenderer) Rotate(ctx context.Context, axis camera.RotationAxis, angle float64) (scene.RefreshStats, error) {
	return m.afterCameraChange(ctx, m.camera.Rotate(axis, angle))
}

// Refreshes the scene for the current camera pose
func (m *MapRenderer) Refresh(ctx context.Context) (scene.RefreshStats, error) {
	return m.reconciler.Refresh(ctx, m.camera)
}

// Installs a new style configuration; the scene is rebuilt on the next refresh
func (m *MapRenderer) SetStyleConfig(cfg *style.Config) {
	m.reconciler.SetStyleConfig(cfg)
}

// Invalid camera poses still reach the reconciler, which counts them and eventually clears the scene.
// Any other camera error leaves the pose unchanged and skips the refresh.
func (m *MapRenderer) afterCameraChange(ctx context.Context, cameraErr error) (scene.RefreshStats, error) {
	if cameraErr != nil && !errors.Is(cameraErr, camera.ErrInvalidCameraGeometry) {
		return scene.RefreshStats{}, cameraErr
	}
	if cameraErr != nil {
		m.log.Warningf("%v, using near %.1f and far %.1f", cameraErr, m.camera.NearDist(), m.camera.FarDist())
	}

	stats, err := m.reconciler.Refresh(ctx, m.camera)
	if cameraErr != nil {
		return stats, cameraErr
	}
	return stats, err
}
