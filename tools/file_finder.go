package tools

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dataset file extensions understood by the loaders
var DatasetExtensions = []string{".osm.pbf", ".geojson", ".json", ".shp"}

type FileFinder interface {
	GetDatasetFiles(input string, recursive bool) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

func IsDatasetFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range DatasetExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// If input is a file it is returned as is, otherwise the dataset files of the input folder are returned,
// eventually excluding nested folders if recursive is disabled
func (f *StandardFileFinder) GetDatasetFiles(input string, recursive bool) ([]string, error) {
	baseInfo, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !baseInfo.IsDir() {
		return []string{input}, nil
	}

	var files = make([]string, 0)
	err = filepath.Walk(
		input,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if !recursive && !os.SameFile(info, baseInfo) {
					return filepath.SkipDir
				}
				return nil
			}
			if IsDatasetFile(info.Name()) {
				files = append(files, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
