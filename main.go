/*
 * This file is part of the Go Cesium Point Cloud Tiler distribution (https://github.com/mfbonfigli/gocesiumtiler).
 * Copyright (c) 2019 Massimo Federico Bonfigli - m.federico.bonfigli@gmail.com
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/ecopia-map/globe_renderer/internal/camera"
	"github.com/ecopia-map/globe_renderer/internal/geometry"
	"github.com/ecopia-map/globe_renderer/internal/io"
	"github.com/ecopia-map/globe_renderer/internal/renderer"
	"github.com/ecopia-map/globe_renderer/pkg"
	"github.com/ecopia-map/globe_renderer/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/globe_renderer/tools"
)

const VERSION = "0.3.0"

const logo = `
       _       _
  __ _| | ___ | |__   ___
 / _  | |/ _ \| '_ \ / _ \
| (_| | | (_) | |_) |  __/
 \__, |_|\___/|_.__/ \___|  renderer
 |___/  Globe map scene renderer written in golang, YYYY
`

func main() {
	flagsGlobal := tools.ParseFlagsGlobal()
	defer glog.Flush()
	glog.V(1).Infoln(tools.FmtJSONString(flagsGlobal))

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		glog.Fatal("Please specify a subcommand [view|pan|orbit].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandView:
		mainCommandView(args)
	case tools.CommandPan:
		mainCommandPan(args)
	case tools.CommandOrbit:
		mainCommandOrbit(args)
	default:
		glog.Fatalf("Unrecognized command [%q]. Command must be one of [view|pan|orbit]", cmd)
	}
}

func mainCommandView(args []string) {
	flags := tools.ParseFlagsForCommandView(args)
	if *flags.Help {
		showHelp()
		return
	}

	opts, _, backend := startRenderer(context.Background(), flags.RendererFlags)
	writeSnapshot(opts, backend)
}

func mainCommandPan(args []string) {
	flags := tools.ParseFlagsForCommandPan(args)
	if *flags.Help {
		showHelp()
		return
	}

	ctx := context.Background()
	opts, m, backend := startRenderer(ctx, flags.RendererFlags)
	for i := 0; i < *flags.Steps; i++ {
		stats, err := m.Pan(ctx, *flags.Bearing, *flags.Distance)
		reportStep("pan", i+1, *flags.Steps, stats.String(), err)
	}
	writeSnapshot(opts, backend)
}

func mainCommandOrbit(args []string) {
	flags := tools.ParseFlagsForCommandOrbit(args)
	if *flags.Help {
		showHelp()
		return
	}

	axis, ok := parseRotationAxis(*flags.Axis)
	if !ok {
		glog.Fatalf("axis should be either heading or tilt, got %q", *flags.Axis)
	}

	ctx := context.Background()
	opts, m, backend := startRenderer(ctx, flags.RendererFlags)
	for i := 0; i < *flags.Steps; i++ {
		stats, err := m.Rotate(ctx, axis, *flags.Angle)
		reportStep("orbit", i+1, *flags.Steps, stats.String(), err)
	}
	writeSnapshot(opts, backend)
}

func parseRotationAxis(value string) (camera.RotationAxis, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "heading":
		return camera.AxisHeading, true
	case "tilt":
		return camera.AxisTilt, true
	}
	return camera.AxisHeading, false
}

// Camera errors are reported and navigation goes on, as an interactive viewer would
func reportStep(name string, step, steps int, stats string, err error) {
	if err != nil {
		glog.Warningf("%s %d/%d: %v", name, step, steps, err)
		return
	}
	tools.LogOutputf("%s %d/%d: %s", name, step, steps, stats)
}

// Builds the options, loads the dataset and renders the initial camera pose
func startRenderer(ctx context.Context, flags tools.RendererFlags) (*renderer.Options, *pkg.MapRenderer, *io.SnapshotBackend) {
	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.Timestamp {
		tools.DisableLoggerTimestamp()
	}

	opts, err := buildOptions(flags)
	if err != nil {
		glog.Fatal("Error parsing input parameters: ", err)
	}
	if msg, ok := validateInput(opts); !ok {
		glog.Fatal("Error parsing input parameters: " + msg)
	}
	glog.V(1).Infoln("options", tools.FmtJSONString(opts))

	backend := io.NewSnapshotBackend()
	m, err := pkg.NewMapRenderer(opts, tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts), backend, nil, nil)
	if err != nil {
		glog.Fatal(err)
	}

	start := time.Now()
	stats, err := m.LoadDataset(ctx)
	if err != nil {
		glog.Fatal("Error while loading the dataset: ", err)
	}
	timeTrack(start, "dataset loading")
	tools.LogOutput("Loaded", stats.String())

	position := geometry.GeoPoint{Lat: opts.Camera.Lat, Lon: opts.Camera.Lon, Alt: opts.Camera.Alt}
	refresh, err := m.InitializeScene(ctx, position, opts.Camera.FovY, opts.Camera.AspectRatio)
	if err == nil && *flags.Oblique {
		refresh, err = m.SetCamera(ctx, position, camera.ViewOblique)
	}
	if err != nil {
		glog.Fatal("Error while placing the camera: ", err)
	}
	tools.LogOutput("Initial scene", refresh.String())
	tools.LogOutput("Camera", m.Camera().String())
	return opts, m, backend
}

// Options file first, then every flag given explicitly on the command line
func buildOptions(flags tools.RendererFlags) (*renderer.Options, error) {
	opts := renderer.DefaultOptions()
	if *flags.Config != "" {
		var err error
		if opts, err = renderer.LoadOptionsFile(*flags.Config); err != nil {
			return nil, err
		}
	}

	if flags.IsSet("input") {
		opts.Input = *flags.Input
	}
	if flags.IsSet("srid") {
		opts.Srid = *flags.Srid
	}
	if flags.IsSet("recursive") {
		opts.Recursive = *flags.Recursive
	}
	if flags.IsSet("output") {
		opts.Output = *flags.Output
	}
	if flags.IsSet("lat") {
		opts.Camera.Lat = *flags.Lat
	}
	if flags.IsSet("lon") {
		opts.Camera.Lon = *flags.Lon
	}
	if flags.IsSet("alt") {
		opts.Camera.Alt = *flags.Alt
	}
	if flags.IsSet("parallel") {
		opts.ParallelQueries = *flags.Parallel
	}
	if flags.IsSet("workers") {
		opts.QueryWorkers = *flags.Workers
	}
	return opts, opts.Validate()
}

// Checks that the input exists
func validateInput(opts *renderer.Options) (string, bool) {
	if opts.Input == "" {
		return "an input dataset is required", false
	}
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return "Input file/folder not found", false
	}
	return "", true
}

func writeSnapshot(opts *renderer.Options, backend *io.SnapshotBackend) {
	if opts.Output == "" {
		return
	}
	if err := tools.CreateParentDirectory(opts.Output); err != nil {
		glog.Fatal(err)
	}
	if err := backend.WriteFile(opts.Output); err != nil {
		glog.Fatal("Error while writing the snapshot: ", err)
	}
	tools.LogOutput("Snapshot written to", opts.Output)
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("globe_renderer keeps a 3D globe scene in sync with a moving camera, loading map features from GeoJSON or OSM PBF datasets")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage: globe_renderer [global flags] <view|pan|orbit> [command flags]")
	fmt.Println("Global flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
	fmt.Println("Run a command with -help to list its flags.")
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
