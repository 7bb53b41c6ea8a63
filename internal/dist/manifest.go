package dist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// ManifestFile is the file name of the manifest in the generators folder.
const ManifestFile = "dist-manifest.json"

// Kinds of imported files.
const (
	KindLibrary    = "library"
	KindExecutable = "executable"
	KindLicense    = "license"
)

// Entry records one imported file.
type Entry struct {
	Path       string `json:"path"` // relative to the tree root, slash separated
	Kind       string `json:"kind"`
	Dependency string `json:"dependency"`
	Source     string `json:"source"`
	RPath      string `json:"rpath,omitempty"`
}

// Manifest lists the files of a distribution tree. A binary is only added
// after its rpath was patched.
type Manifest struct {
	Settings  map[string]string `json:"settings"`
	CreatedAt time.Time         `json:"created_at"`
	Entries   []Entry           `json:"entries"`
}

// Count returns the number of entries of the given kind.
func (m *Manifest) Count(kind string) int {
	n := 0
	for _, e := range m.Entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// LoadManifest reads a manifest written by SaveManifest.
func LoadManifest(file string) (*Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveManifest writes m to file, creating its directory.
func SaveManifest(file string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0o644)
}
