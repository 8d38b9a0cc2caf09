package processors

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tern-compiler/internal/pkg/common"
)

const ManifestFileName = "tern.yaml"

// Manifest is the parsed contents of a package's tern.yaml.
type Manifest struct {
	Name         string   `yaml:"name"`
	Version      string   `yaml:"version"`
	Sources      []string `yaml:"sources"`
	Dependencies []string `yaml:"dependencies"`
}

// ReadManifest loads and validates the manifest of the package rooted at
// dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, common.NewSystemError(fmt.Errorf("failed to parse manifest in `%s`: %w", dir, err))
	}
	if m.Name == "" {
		return nil, common.NewSystemError(fmt.Errorf("manifest in `%s` has no package name", dir))
	}
	if len(m.Sources) == 0 {
		return nil, common.NewSystemError(fmt.Errorf("package `%s` lists no sources", m.Name))
	}
	return m, nil
}
