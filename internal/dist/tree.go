// Package dist assembles the distribution tree: shared libraries and
// executables imported from dependency packages, their license files, and
// on Linux the rewritten rpath of every imported binary.
package dist

import (
	"os"
	"path/filepath"

	"github.com/open-simulation-platform/cosimpkg/recipe"
)

// RPath values written into imported binaries.
const (
	LibRPath = "$ORIGIN"
	ExeRPath = "$ORIGIN/../lib"
)

// Tree is the layout of a distribution folder.
//
//	root/
//	  bin/                  executables, and DLLs on Windows
//	  lib/                  shared libraries
//	  doc/licenses/<dep>/   license files per dependency
type Tree struct {
	Root     string
	BinDir   string
	LibDir   string
	Licenses string
}

// NewTree returns the layout below root for the target settings.
func NewTree(root string, s recipe.Settings) Tree {
	bin := filepath.Join(root, "bin")
	lib := filepath.Join(root, "lib")
	if s.IsWindows() {
		lib = bin
	}
	return Tree{
		Root:     root,
		BinDir:   bin,
		LibDir:   lib,
		Licenses: filepath.Join(root, "doc", "licenses"),
	}
}

// LicenseDir returns the license folder of dependency name.
func (t Tree) LicenseDir(name string) string {
	return filepath.Join(t.Licenses, name)
}

// Reset removes the tree and recreates its empty directories.
func (t Tree) Reset() error {
	if err := os.RemoveAll(t.Root); err != nil {
		return err
	}
	for _, dir := range []string{t.BinDir, t.LibDir, t.Licenses} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
