package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"taxi-dashboard/models"
	"taxi-dashboard/utils"
)

// HTMLWriter writes the dashboard document to disk, replacing any previous file.
type HTMLWriter struct{}

// NewHTMLWriter returns an HTMLWriter.
func NewHTMLWriter() *HTMLWriter {
	return &HTMLWriter{}
}

// Write creates missing parent directories and atomically replaces path with
// doc. Failures are reported as *models.RenderError and never leave a
// truncated file at path.
func (w *HTMLWriter) Write(path string, doc []byte) error {
	if path == "" {
		return &models.RenderError{Err: fmt.Errorf("empty output path")}
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return &models.RenderError{Path: path, Err: fmt.Errorf("destination is a directory")}
	}

	err := utils.WriteFileAtomic(path, 0o644, func(out io.Writer) error {
		_, err := io.Copy(out, bytes.NewReader(doc))
		return err
	})
	if err != nil {
		return &models.RenderError{Path: path, Err: err}
	}
	return nil
}

// AbsPath resolves path for the success message, falling back to path itself.
func AbsPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
