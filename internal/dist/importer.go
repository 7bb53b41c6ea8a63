package dist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/open-simulation-platform/cosimpkg/internal/graph"
	"github.com/open-simulation-platform/cosimpkg/internal/logger"
	"github.com/open-simulation-platform/cosimpkg/recipe"
)

// Importer copies artifacts of dependency packages into a Tree.
type Importer struct {
	tree     Tree
	settings recipe.Settings
	patcher  Patcher
	manifest *Manifest
}

// NewImporter returns an Importer filling tree for the target settings.
// patcher is only used when the target is Linux.
func NewImporter(tree Tree, s recipe.Settings, patcher Patcher) *Importer {
	return &Importer{
		tree:     tree,
		settings: s,
		patcher:  patcher,
		manifest: &Manifest{Settings: s, CreatedAt: time.Now().UTC()},
	}
}

// Manifest returns the files imported so far.
func (im *Importer) Manifest() *Manifest {
	return im.manifest
}

// ImportDynamicLibs copies the shared libraries of dep whose names match
// patterns into the tree's library directory and sets their rpath to
// LibRPath. Nothing is copied unless shared is true.
func (im *Importer) ImportDynamicLibs(ctx context.Context, dep *graph.Node, patterns []string, shared bool) ([]string, error) {
	if !shared {
		logger.DebugKV(ctx, "Skipping static dependency", "dependency", dep.Ref.Name)
		return nil, nil
	}
	dirs := dep.Root().LibDirs
	if im.settings.IsWindows() {
		dirs = dep.Root().BinDirs
	}
	var patternsx []string
	for _, p := range patterns {
		patternsx = append(patternsx, im.settings.SharedLibPattern(p))
	}
	return im.importBinaries(ctx, dep, dirs, patternsx, im.tree.LibDir, KindLibrary, LibRPath)
}

// ImportExecutables copies the executables of dep matching patterns into
// the tree's bin directory and sets their rpath to ExeRPath.
func (im *Importer) ImportExecutables(ctx context.Context, dep *graph.Node, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	var patternsx []string
	for _, p := range patterns {
		patternsx = append(patternsx, im.settings.ExecutablePattern(p))
	}
	return im.importBinaries(ctx, dep, dep.Root().BinDirs, patternsx, im.tree.BinDir, KindExecutable, ExeRPath)
}

func (im *Importer) importBinaries(ctx context.Context, dep *graph.Node, dirs, patterns []string, target, kind, rpath string) ([]string, error) {
	var all []string
	for _, dir := range dirs {
		for _, pattern := range patterns {
			files, err := Copy(pattern, dir, target, CopyOptions{Recursive: true})
			if err != nil {
				return all, fmt.Errorf("copy %s from %s: %w", pattern, dir, err)
			}
			if err := im.updateRPath(ctx, files, rpath); err != nil {
				return all, fmt.Errorf("%s: set rpath: %w", dep.Ref.Name, err)
			}
			for _, f := range files {
				im.record(f, kind, dep, dir, rpath)
			}
			all = append(all, files...)
		}
	}
	if len(all) > 0 {
		logger.InfoKV(ctx, "Imported "+kind+" files", "dependency", dep.Ref.Name, "count", len(all))
	}
	return all, nil
}

// updateRPath patches the regular files among files on Linux targets.
func (im *Importer) updateRPath(ctx context.Context, files []string, rpath string) error {
	if !im.settings.IsLinux() {
		return nil
	}
	files = regularFiles(files)
	if len(files) == 0 {
		return nil
	}
	return im.patcher.SetRPath(ctx, rpath, files)
}

// ImportLicenses copies the license files of dep into the tree's license
// folder for dep. The package's license folder is copied as a whole when it
// exists; otherwise files in the package root matching rule.Patterns are.
func (im *Importer) ImportLicenses(ctx context.Context, dep *graph.Node, rule recipe.LicenseRule) ([]string, error) {
	if dep.PackageFolder == "" {
		return nil, nil
	}
	target := im.tree.LicenseDir(dep.Ref.Name)

	var files []string
	folder := filepath.Join(dep.PackageFolder, rule.Folder)
	if fi, err := os.Stat(folder); rule.Folder != "" && err == nil && fi.IsDir() {
		copied, err := Copy("*", folder, target, CopyOptions{KeepPath: true, Recursive: true})
		if err != nil {
			return nil, fmt.Errorf("%s: copy licenses: %w", dep.Ref.Name, err)
		}
		files = copied
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dep.Ref.Name, err)
	} else {
		for _, p := range rule.Patterns {
			copied, err := Copy(p, dep.PackageFolder, target, CopyOptions{IgnoreCase: true})
			if err != nil {
				return nil, fmt.Errorf("%s: copy %s: %w", dep.Ref.Name, p, err)
			}
			files = append(files, copied...)
		}
	}

	for _, f := range files {
		im.record(f, KindLicense, dep, dep.PackageFolder, "")
	}
	if len(files) == 0 {
		logger.WarnKV(ctx, "No license files found", "dependency", dep.Ref.Name)
	}
	return files, nil
}

func (im *Importer) record(file, kind string, dep *graph.Node, source, rpath string) {
	rel, err := filepath.Rel(im.tree.Root, file)
	if err != nil {
		rel = file
	}
	rel = filepath.ToSlash(rel)
	if !im.settings.IsLinux() {
		rpath = ""
	}
	for i, e := range im.manifest.Entries {
		if e.Path == rel {
			im.manifest.Entries[i] = Entry{Path: rel, Kind: kind, Dependency: dep.Ref.Name, Source: source, RPath: rpath}
			return
		}
	}
	im.manifest.Entries = append(im.manifest.Entries, Entry{
		Path:       rel,
		Kind:       kind,
		Dependency: dep.Ref.Name,
		Source:     source,
		RPath:      rpath,
	})
}
