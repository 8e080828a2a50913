// Package manifest reads package.json files, exposing the four dependency
// sections and the scripts block that the package-manifest, postinstall-hook,
// and typosquatting detectors all consume.
package manifest

import (
	"encoding/json"
	"os"
)

// Manifest is a parsed package.json.
type Manifest struct {
	Path                string
	Raw                 []byte
	Dependencies        map[string]string
	DevDependencies      map[string]string
	PeerDependencies     map[string]string
	OptionalDependencies map[string]string
	Scripts              map[string]string
}

type manifestJSON struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	Scripts              map[string]string `json:"scripts"`
}

// Parse reads and decodes the package.json at path. Unreadable or
// unparseable manifests return an error; callers must skip the file rather
// than emit a finding for it (spec §7).
func Parse(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var mj manifestJSON
	if err := json.Unmarshal(raw, &mj); err != nil {
		return nil, err
	}

	return &Manifest{
		Path:                 path,
		Raw:                  raw,
		Dependencies:         mj.Dependencies,
		DevDependencies:      mj.DevDependencies,
		PeerDependencies:     mj.PeerDependencies,
		OptionalDependencies: mj.OptionalDependencies,
		Scripts:              mj.Scripts,
	}, nil
}

// DependencySections returns the four dependency sections in the fixed
// iteration order used by the package-manifest and typosquatting detectors.
func (m *Manifest) DependencySections() []map[string]string {
	return []map[string]string{
		m.Dependencies,
		m.DevDependencies,
		m.PeerDependencies,
		m.OptionalDependencies,
	}
}
