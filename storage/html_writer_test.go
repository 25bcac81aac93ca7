package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"taxi-dashboard/models"
)

func TestHTMLWriterCreatesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outputs", "dashboard.html")
	w := NewHTMLWriter()

	if err := w.Write(path, []byte("<html>one</html>")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := w.Write(path, []byte("<html>two</html>")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<html>two</html>" {
		t.Errorf("content: got %q", got)
	}
}

func TestHTMLWriterFailures(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := writeBytes(blocker, []byte("x")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"directory", dir},
		{"parent is a file", filepath.Join(blocker, "dashboard.html")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewHTMLWriter().Write(tt.path, []byte("<html></html>"))
			var re *models.RenderError
			if !errors.As(err, &re) {
				t.Errorf("got %v, want *models.RenderError", err)
			}
		})
	}
}
