package utils

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomicCreatesDirsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.txt")

	for _, content := range []string{"first", "second"} {
		err := WriteFileAtomic(path, 0o644, func(w io.Writer) error {
			_, err := io.WriteString(w, content)
			return err
		})
		if err != nil {
			t.Fatalf("WriteFileAtomic: %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != content {
			t.Errorf("content: got %q, want %q", got, content)
		}
	}
	assertNoTempFiles(t, filepath.Dir(path))
}

func TestWriteFileAtomicFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.parquet")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("connection reset")
	err := WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		_, _ = io.Copy(w, bytes.NewReader([]byte("partial")))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Errorf("original file modified: %q", got)
	}
	assertNoTempFiles(t, dir)
}

func TestWriteFileAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.parquet")

	_ = WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return errors.New("interrupted")
	})
	if FileExists(path) {
		t.Error("failed write must not create the destination")
	}
	assertNoTempFiles(t, dir)
}

func TestTempPathIsUniqueSibling(t *testing.T) {
	a := TempPath("/cache/x.parquet")
	b := TempPath("/cache/x.parquet")
	if a == b {
		t.Error("temp paths should be unique")
	}
	if filepath.Dir(a) != "/cache" || !strings.HasSuffix(a, ".part") {
		t.Errorf("unexpected temp path %q", a)
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".part") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}
