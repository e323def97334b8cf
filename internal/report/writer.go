package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"prunarr/internal/fileutil"
)

const (
	DeletedFileName  = "movies_deleted.json"
	NotFoundFileName = "movies_not_found.json"
)

// Paths locates the files written for one run.
type Paths struct {
	Dir      string
	Deleted  string
	NotFound string
}

// Write persists both documents under <resultsDir>/<date_deleted>/. Each file is
// replaced atomically, so a rerun on the same day overwrites that day's reports.
func Write(resultsDir string, deleted DeletedDocument, notFound NotFoundDocument) (Paths, error) {
	dir := filepath.Join(resultsDir, deleted.Summary.DateDeleted)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create results directory %q: %w", dir, err)
	}

	paths := Paths{
		Dir:      dir,
		Deleted:  filepath.Join(dir, DeletedFileName),
		NotFound: filepath.Join(dir, NotFoundFileName),
	}
	if err := writeJSONFile(paths.Deleted, deleted); err != nil {
		return Paths{}, err
	}
	if err := writeJSONFile(paths.NotFound, notFound); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

func writeJSONFile(path string, v any) error {
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Read loads a previously written pair of documents from dir.
func Read(dir string) (DeletedDocument, NotFoundDocument, error) {
	var deleted DeletedDocument
	var notFound NotFoundDocument
	if err := readJSONFile(filepath.Join(dir, DeletedFileName), &deleted); err != nil {
		return DeletedDocument{}, NotFoundDocument{}, err
	}
	if err := readJSONFile(filepath.Join(dir, NotFoundFileName), &notFound); err != nil {
		return DeletedDocument{}, NotFoundDocument{}, err
	}
	return deleted, notFound, nil
}

func readJSONFile(path string, v any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	if err := json.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
