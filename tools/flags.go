package tools

import (
	"flag"
)

const (
	CommandView  = "view"
	CommandPan   = "pan"
	CommandOrbit = "orbit"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type RendererFlags struct {
	Config    *string  `json:"config"`
	Input     *string  `json:"input"`
	Srid      *int     `json:"srid"`
	Recursive *bool    `json:"recursive"`
	Output    *string  `json:"output"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Alt       *float64 `json:"alt"`
	Oblique   *bool    `json:"oblique"`
	Parallel  *bool    `json:"parallel"`
	Workers   *int     `json:"workers"`
	Silent    *bool    `json:"silent"`
	Timestamp *bool    `json:"timestamp"`
	Help      *bool    `json:"help"`

	// long names of the flags explicitly given on the command line
	Set map[string]bool `json:"-"`
}

// Whether the flag with the given long name was explicitly given
func (f RendererFlags) IsSet(name string) bool {
	return f.Set[name]
}

type FlagsForCommandView struct {
	RendererFlags
}

type FlagsForCommandPan struct {
	RendererFlags
	Bearing  *float64 `json:"bearing"`
	Distance *float64 `json:"distance"`
	Steps    *int     `json:"steps"`
}

type FlagsForCommandOrbit struct {
	RendererFlags
	Axis  *string  `json:"axis"`
	Angle *float64 `json:"angle"`
	Steps *int     `json:"steps"`
}

// Flag set that remembers which shorthand belongs to which long flag name
type commandFlagSet struct {
	*flag.FlagSet
	aliases map[string]string
}

func newCommandFlagSet(name string) *commandFlagSet {
	return &commandFlagSet{
		FlagSet: flag.NewFlagSet(name, flag.ExitOnError),
		aliases: make(map[string]string),
	}
}

func (fs *commandFlagSet) alias(name, shortHand string) {
	fs.aliases[name] = name
	if shortHand != name && shortHand != "" {
		fs.aliases[shortHand] = name
	}
}

func (fs *commandFlagSet) visited() map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[fs.aliases[f.Name]] = true
	})
	return set
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "", false, "Displays the version of globe_renderer.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func defineRendererFlags(fs *commandFlagSet) RendererFlags {
	return RendererFlags{
		Config:    defineStringFlagCommand(fs, "config", "c", "", "Specifies a TOML file with the renderer options. Command line flags override its values."),
		Input:     defineStringFlagCommand(fs, "input", "i", "", "Specifies the input dataset file/folder (.geojson, .json, .osm.pbf or .shp)."),
		Srid:      defineIntFlagCommand(fs, "srid", "e", 4326, "EPSG srid code of the input coordinates."),
		Recursive: defineBoolFlagCommand(fs, "recursive", "r", false, "Enables recursive lookup for dataset files inside the subfolders."),
		Output:    defineStringFlagCommand(fs, "output", "o", "", "Writes a GeoJSON snapshot of the rendered scene to the given file."),
		Lat:       defineFloat64FlagCommand(fs, "lat", "", 51.5039, "Latitude of the camera, in degrees."),
		Lon:       defineFloat64FlagCommand(fs, "lon", "", -0.1214, "Longitude of the camera, in degrees."),
		Alt:       defineFloat64FlagCommand(fs, "alt", "a", 750, "Altitude of the camera above the ellipsoid, in meters."),
		Oblique:   defineBoolFlagCommand(fs, "oblique", "b", false, "Looks ahead towards north instead of straight down."),
		Parallel:  defineBoolFlagCommand(fs, "parallel", "p", false, "Runs the tier queries on a worker pool."),
		Workers:   defineIntFlagCommand(fs, "workers", "w", 0, "Number of query workers, 0 for one per CPU."),
		Silent:    defineBoolFlagCommand(fs, "silent", "s", false, "Use to suppress all the non-error messages."),
		Timestamp: defineBoolFlagCommand(fs, "timestamp", "t", false, "Adds timestamp to log messages."),
		Help:      defineBoolFlagCommand(fs, "help", "h", false, "Displays this help."),
	}
}

func ParseFlagsForCommandView(args []string) FlagsForCommandView {
	fs := newCommandFlagSet("command-view")
	flags := FlagsForCommandView{RendererFlags: defineRendererFlags(fs)}

	_ = fs.Parse(args)
	flags.Set = fs.visited()
	return flags
}

func ParseFlagsForCommandPan(args []string) FlagsForCommandPan {
	fs := newCommandFlagSet("command-pan")
	flags := FlagsForCommandPan{
		RendererFlags: defineRendererFlags(fs),
		Bearing:       defineFloat64FlagCommand(fs, "bearing", "", 90, "Direction of the pan, in degrees clockwise from north."),
		Distance:      defineFloat64FlagCommand(fs, "distance", "d", 250, "Distance covered by each pan step, in meters."),
		Steps:         defineIntFlagCommand(fs, "steps", "n", 10, "Number of pan steps."),
	}

	_ = fs.Parse(args)
	flags.Set = fs.visited()
	return flags
}

func ParseFlagsForCommandOrbit(args []string) FlagsForCommandOrbit {
	fs := newCommandFlagSet("command-orbit")
	flags := FlagsForCommandOrbit{
		RendererFlags: defineRendererFlags(fs),
		Axis:          defineStringFlagCommand(fs, "axis", "x", "heading", "Rotation axis, can be 'heading' or 'tilt'."),
		Angle:         defineFloat64FlagCommand(fs, "angle", "g", 15, "Rotation of each step, in degrees."),
		Steps:         defineIntFlagCommand(fs, "steps", "n", 24, "Number of rotation steps."),
	}

	_ = fs.Parse(args)
	flags.Set = fs.visited()
	return flags
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(fs *commandFlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	fs.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		fs.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	fs.alias(name, shortHand)
	return &output
}

func defineIntFlagCommand(fs *commandFlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	fs.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		fs.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	fs.alias(name, shortHand)
	return &output
}

func defineFloat64FlagCommand(fs *commandFlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	fs.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		fs.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	fs.alias(name, shortHand)
	return &output
}

func defineBoolFlagCommand(fs *commandFlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	fs.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		fs.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	fs.alias(name, shortHand)
	return &output
}
