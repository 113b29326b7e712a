package pbr

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kpango/glg"
)

// Output texture name markers.
const (
	SuffixNMO = "_NMO"
	SuffixBCR = "_BCR"
)

// Writer writes composited textures in one or more formats.
type Writer struct {
	Codec   *Codec
	Dir     string
	Formats []Format
	// Robust keeps writing the remaining files after a save fails. When
	// false, the first failure stops the writer.
	Robust bool
}

// OutputPaths returns the files Write produces for baseName, NMO and BCR
// interleaved per format.
func (w *Writer) OutputPaths(baseName string) []string {
	var paths []string
	for _, f := range w.Formats {
		paths = append(paths,
			filepath.Join(w.Dir, baseName+SuffixNMO+f.Ext()),
			filepath.Join(w.Dir, baseName+SuffixBCR+f.Ext()))
	}
	return paths
}

// Write saves nmo and bcr under the names derived from baseName and returns
// the paths written successfully. The returned error joins every save
// failure when the writer is robust.
func (w *Writer) Write(baseName string, nmo, bcr *Texture) ([]string, error) {
	var written []string
	var failures []string
	var firstErr error

	for i, path := range w.OutputPaths(baseName) {
		tex := nmo
		if i%2 == 1 {
			tex = bcr
		}

		err := w.Codec.Save(path, tex)
		if err != nil {
			glg.Errorf("Failed to save image: %v", err)
			if !w.Robust {
				return written, err
			}
			if firstErr == nil {
				firstErr = err
			}
			failures = append(failures, filepath.Base(path))
			continue
		}

		written = append(written, path)
	}

	if len(failures) > 1 {
		return written, newErrorf(KindImageSave, w.Dir, "failed to save %s",
			strings.Join(failures, ", "))
	}

	return written, firstErr
}

// MoveResults moves the given files into resultDir, creating it if needed,
// and returns their new paths. A file that cannot be moved is reported and
// skipped; the returned error, of kind KindFilesystem, describes the last
// such failure.
func MoveResults(paths []string, resultDir string) ([]string, error) {
	if err := os.MkdirAll(resultDir, 0755); err != nil {
		glg.Errorf("Filesystem error: %v", err)
		return nil, newError(KindFilesystem, resultDir, err)
	}

	var moved []string
	var lastErr error

	for _, path := range paths {
		dest := filepath.Join(resultDir, filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			glg.Errorf("Filesystem error: %v", err)
			lastErr = newError(KindFilesystem, path, err)
			continue
		}

		moved = append(moved, dest)
	}

	return moved, lastErr
}
