package extract

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

type entry struct {
	name    string
	content string
	dir     bool
}

func buildArchive(t *testing.T, path string, compressed bool, entries []entry) {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		if e.dir {
			if err := tw.WriteHeader(&tar.Header{Name: e.name, Typeflag: tar.TypeDir, Mode: 0755}); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := tw.WriteHeader(&tar.Header{Name: e.name, Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(e.content))}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(e.content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	data := buf.Bytes()
	if compressed {
		var gzBuf bytes.Buffer
		gw := gzip.NewWriter(&gzBuf)
		if _, err := gw.Write(data); err != nil {
			t.Fatal(err)
		}
		if err := gw.Close(); err != nil {
			t.Fatal(err)
		}
		data = gzBuf.Bytes()
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractTar(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "update.tar")
	dest := filepath.Join(dir, "usb")
	if err := os.Mkdir(dest, 0755); err != nil {
		t.Fatal(err)
	}
	buildArchive(t, archive, false, []entry{
		{name: "SWL/", dir: true},
		{name: "SWL/firmware.swl", content: "firmware payload"},
		{name: "manifest.txt", content: "version 21.08"},
	})

	if err := Extract(archive, dest); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(filepath.Join(dest, "SWL", "firmware.swl"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "firmware payload" {
		t.Errorf("unexpected content: %q", content)
	}
	if _, err := os.Stat(filepath.Join(dest, "manifest.txt")); err != nil {
		t.Errorf("missing manifest: %v", err)
	}
}

func TestExtractTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "update.tar.gz")
	dest := filepath.Join(dir, "usb")
	if err := os.Mkdir(dest, 0755); err != nil {
		t.Fatal(err)
	}
	buildArchive(t, archive, true, []entry{
		{name: "firmware.swl", content: "compressed payload"},
	})

	if err := Extract(archive, dest); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(filepath.Join(dest, "firmware.swl"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "compressed payload" {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestExtractRootEntry(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "update.tar")
	dest := filepath.Join(dir, "usb")
	if err := os.Mkdir(dest, 0755); err != nil {
		t.Fatal(err)
	}
	buildArchive(t, archive, false, []entry{
		{name: "./", dir: true},
		{name: "./firmware.swl", content: "payload"},
	})

	if err := Extract(archive, dest); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(filepath.Join(dest, "firmware.swl"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "payload" {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar")
	dest := filepath.Join(dir, "usb")
	if err := os.Mkdir(dest, 0755); err != nil {
		t.Fatal(err)
	}
	buildArchive(t, archive, false, []entry{
		{name: "../escape.txt", content: "outside"},
	})

	if err := Extract(archive, dest); err == nil {
		t.Fatal("expected traversal error, got none")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); err == nil {
		t.Error("traversal entry was written outside destination")
	}
}

func TestExtractMissingArchive(t *testing.T) {
	if err := Extract(filepath.Join(t.TempDir(), "absent.tar"), t.TempDir()); err == nil {
		t.Fatal("expected error for missing archive")
	}
}
