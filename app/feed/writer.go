package feed

import (
	"fmt"
	"os"
	"path/filepath"
)

type Writer struct {
	outputDir  string
	filePrefix string
}

func NewWriter(outputDir, filePrefix string) *Writer {
	return &Writer{
		outputDir:  outputDir,
		filePrefix: filePrefix,
	}
}

// Path returns the file a tag is written to: <dir>/<prefix>_<tag>.xml.
func (w *Writer) Path(tag string) string {
	return filepath.Join(w.outputDir, fmt.Sprintf("%s_%s.xml", w.filePrefix, tag))
}

// Run writes one rendered feed. The data goes to a temporary file in the
// output directory which is then renamed over the target, so readers see
// either the previous file or the complete new one. Files written earlier in
// the same run are left in place when a later write fails.
func (w *Writer) Run(tag string, data []byte) (string, error) {
	if !ValidTag(tag) {
		return "", fmt.Errorf("invalid feed tag %q", tag)
	}

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := w.Path(tag)

	tmp, err := os.CreateTemp(w.outputDir, fmt.Sprintf("%s_%s-*.tmp", w.filePrefix, tag))
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return path, nil
}
