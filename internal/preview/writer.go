package preview

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/storepreview/internal/model"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Writer writes previews into a directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer for dir. The directory is created on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Path returns the file a target is written to.
func (w *Writer) Path(target model.Target) string {
	return filepath.Join(w.dir, target.FileName())
}

// Write stores doc for target, overwriting any existing preview, and
// returns the path written.
func (w *Writer) Write(target model.Target, doc string) (string, error) {
	if err := target.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create previews directory %s: %w", w.dir, err)
	}

	path := w.Path(target)
	//nolint:gosec // previews are served as public static files
	if err := os.WriteFile(path, []byte(doc), filePerm); err != nil {
		return "", fmt.Errorf("failed to write preview %s: %w", path, err)
	}
	return path, nil
}
