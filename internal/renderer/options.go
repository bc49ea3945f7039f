package renderer

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ecopia-map/globe_renderer/internal/converters"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
)

var ErrInvalidOptions = errors.New("invalid renderer options")

type RibbonMode string

const (
	// ribbons straddle the centerline
	RibbonModeCenter RibbonMode = "CENTER"
	// ribbons lie left of the direction of travel
	RibbonModeLeft RibbonMode = "LEFT"
	// ribbons lie right of the direction of travel
	RibbonModeRight RibbonMode = "RIGHT"
)

func (m RibbonMode) String() string {
	return string(m)
}

func ParseRibbonMode(value string) RibbonMode {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	switch normalizedValue {
	case "CENTER":
		return RibbonModeCenter
	case "LEFT":
		return RibbonModeLeft
	case "RIGHT":
		return RibbonModeRight
	}
	return ""
}

func (m RibbonMode) OutlineType() geometry.OutlineType {
	switch m {
	case RibbonModeLeft:
		return geometry.OutlineLeft
	case RibbonModeRight:
		return geometry.OutlineRight
	}
	return geometry.OutlineCenter
}

// Contains the options of the scene renderer
type Options struct {
	Input     string  `toml:"input"`     // Input dataset file/folder
	Recursive bool    `toml:"recursive"` // Recursive lookup of dataset files in subfolders
	Srid      int     `toml:"srid"`      // EPSG code of the input coordinates
	CellSize  float64 `toml:"cell_size"` // Grid cell size of the in-memory database, in degrees
	Output    string  `toml:"output"`    // GeoJSON snapshot of the rendered scene, empty to skip

	RefreshOverlapThreshold float64 `toml:"refresh_overlap_threshold"`  // Overlap ratio below which the scene is refreshed
	NearClipFactor          float64 `toml:"near_clip_factor"`           // Near clip distance as a fraction of the eye to ground distance
	FallbackNearDist        float64 `toml:"fallback_near_dist"`         // Near clip distance used when the globe is not visible, in meters
	FallbackFarFactor       float64 `toml:"fallback_far_factor"`        // Far clip distance used when the globe is not visible, in semi-major axes
	InvalidCameraClearAfter int     `toml:"invalid_camera_clear_after"` // Consecutive invalid camera poses after which the scene is cleared

	ElevationOffset       float64    `toml:"elevation_offset"`        // Vertical offset applied to every feature, in meters
	LayerElevationStep    float64    `toml:"layer_elevation_step"`    // Vertical distance between render layers, in meters
	BuildingDefaultHeight float64    `toml:"building_default_height"` // Height of buildings without a usable height tag, in meters
	BuildingTruthyValues  []string   `toml:"building_truthy_values"`  // Building tag values that mark a building
	RibbonMode            RibbonMode `toml:"ribbon_mode"`             // Placement of way ribbons

	ParallelQueries bool `toml:"parallel_queries"` // Runs the tier queries on a worker pool
	QueryWorkers    int  `toml:"query_workers"`    // Size of the query worker pool, 0 for one per CPU

	Camera CameraOptions `toml:"camera"`
}

// Initial camera pose and projection
type CameraOptions struct {
	Lat         float64 `toml:"lat"`
	Lon         float64 `toml:"lon"`
	Alt         float64 `toml:"alt"`
	FovY        float64 `toml:"fov_y"`
	AspectRatio float64 `toml:"aspect_ratio"`
}

func DefaultOptions() *Options {
	return &Options{
		Srid:                    converters.WGS84Srid,
		CellSize:                0.01,
		RefreshOverlapThreshold: 0.75,
		NearClipFactor:          1.0 / 3.0,
		FallbackNearDist:        20,
		FallbackFarFactor:       1.25,
		InvalidCameraClearAfter: 2,
		LayerElevationStep:      1,
		BuildingDefaultHeight:   10,
		BuildingTruthyValues:    []string{"yes", "true", "1"},
		RibbonMode:              RibbonModeCenter,
		Camera: CameraOptions{
			Lat:         51.5039,
			Lon:         -0.1214,
			Alt:         750,
			FovY:        30,
			AspectRatio: 1.67,
		},
	}
}

// Reads the options from a TOML file on top of the defaults. Unknown keys are rejected.
func LoadOptionsFile(path string) (*Options, error) {
	opts := DefaultOptions()

	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fp.Close() }()

	if err := toml.NewDecoder(bufio.NewReader(fp)).DisallowUnknownFields().Decode(opts); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	opts.RibbonMode = ParseRibbonMode(string(opts.RibbonMode))
	return opts, opts.Validate()
}

// Checks that every option is in its allowed range
func (opt *Options) Validate() error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(opt.RefreshOverlapThreshold > 0 && opt.RefreshOverlapThreshold <= 1, "refresh_overlap_threshold must be in (0, 1]")
	check(opt.NearClipFactor > 0 && opt.NearClipFactor < 1, "near_clip_factor must be in (0, 1)")
	check(opt.FallbackNearDist > 0, "fallback_near_dist must be positive")
	check(opt.FallbackFarFactor > 0, "fallback_far_factor must be positive")
	check(opt.FallbackNearDist < opt.FallbackFarFactor*converters.SemiMajorAxis, "fallback_near_dist must be lower than the fallback far distance")
	check(opt.InvalidCameraClearAfter >= 0, "invalid_camera_clear_after cannot be negative")
	check(opt.LayerElevationStep >= 0, "layer_elevation_step cannot be negative")
	check(opt.BuildingDefaultHeight > 0, "building_default_height must be positive")
	check(opt.CellSize > 0, "cell_size must be positive")
	check(opt.QueryWorkers >= 0, "query_workers cannot be negative")
	check(opt.RibbonMode != "", "ribbon_mode should be one of CENTER, LEFT or RIGHT")
	check(opt.Camera.FovY > 0 && opt.Camera.FovY < 180, "camera fov_y must be in (0, 180)")
	check(opt.Camera.AspectRatio > 0, "camera aspect_ratio must be positive")
	check(opt.Camera.Lat >= -90 && opt.Camera.Lat <= 90, "camera lat must be in [-90, 90]")
	check(opt.Camera.Lon >= -180 && opt.Camera.Lon <= 180, "camera lon must be in [-180, 180]")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(problems, "; "))
	}
	return nil
}

// Far clip distance used when the globe is not visible, in meters
func (opt *Options) FallbackFarDist() float64 {
	return opt.FallbackFarFactor * converters.SemiMajorAxis
}

func (opt *Options) Copy() *Options {
	newOpt := *opt
	newOpt.BuildingTruthyValues = append([]string(nil), opt.BuildingTruthyValues...)
	return &newOpt
}
