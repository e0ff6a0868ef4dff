package ingest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/domain/commonModels"
	"github.com/intigra/ragapi/internal/extract"
)

// collectFiles validates the submitted path and gathers every ingestible
// file under it. A single-file path must itself be a supported type; for a
// directory, unsupported files are skipped silently. Paths are returned
// sorted so a job always sees them in the same order.
func collectFiles(path string) ([]string, error) {
	if path == "" {
		return nil, apperrors.Validation("path is required")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Validation("path does not exist: %s", path)
	} else if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if extract.DetectDocType(path) == commonModels.ERR {
			return nil, apperrors.Validation("unsupported file type: %s", filepath.Ext(path))
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if extract.DetectDocType(p) != commonModels.ERR {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperrors.Validation("no ingestible files under %s", path)
	}

	sort.Strings(files)
	return files, nil
}
