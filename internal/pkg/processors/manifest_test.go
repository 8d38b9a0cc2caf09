package processors

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
name: demo
version: 0.1.0
sources:
  - main.tn
  - lib.tn
dependencies:
  - github.com/example/base
`)
	m, err := ReadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "demo" || m.Version != "0.1.0" {
		t.Fatalf("unexpected header: %+v", m)
	}
	if len(m.Sources) != 2 || m.Sources[0] != "main.tn" {
		t.Fatalf("unexpected sources: %v", m.Sources)
	}
	if len(m.Dependencies) != 1 {
		t.Fatalf("unexpected dependencies: %v", m.Dependencies)
	}
}

func TestReadManifestMissingFile(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	if !os.IsNotExist(err) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}

func TestReadManifestInvalidYaml(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "name: [unclosed")
	if _, err := ReadManifest(dir); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestReadManifestRequiresNameAndSources(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "sources:\n  - main.tn\n")
	if _, err := ReadManifest(dir); err == nil {
		t.Fatal("expected an error for the missing name")
	}

	writeManifest(t, dir, "name: demo\n")
	if _, err := ReadManifest(dir); err == nil {
		t.Fatal("expected an error for the empty source list")
	}
}
