package engine

import (
	"os"
	"path/filepath"

	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// collectResources maps the declared output files that actually exist in
// the run directory to FileResources. Declared files the workflow did not
// produce are skipped, matching the resource set to what is on disk.
func collectResources(runDir string, outputFiles []string) map[string]model.FileResource {
	resources := make(map[string]model.FileResource)
	for _, file := range outputFiles {
		path := filepath.Join(runDir, file)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		resources[file] = model.FileResource{
			Identifier: file,
			Path:       path,
		}
	}
	return resources
}
