// Package packager runs the packaging of a distribution: it checks the
// resolved graph against the recipe, generates the build-system files and
// assembles the dist/ tree from the dependency packages.
package packager

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/open-simulation-platform/cosimpkg/internal/dist"
	"github.com/open-simulation-platform/cosimpkg/internal/env"
	"github.com/open-simulation-platform/cosimpkg/internal/generate"
	"github.com/open-simulation-platform/cosimpkg/internal/graph"
	"github.com/open-simulation-platform/cosimpkg/internal/logger"
	"github.com/open-simulation-platform/cosimpkg/recipe"
)

// Options contains the inputs of a packaging run.
type Options struct {
	Recipe   *recipe.Recipe
	Graph    *graph.Graph
	Settings recipe.Settings

	// BuildFolder holds the generators folder and the distribution tree.
	BuildFolder string
	// DistFolder and GeneratorsFolder are relative to BuildFolder unless
	// absolute.
	DistFolder       string
	GeneratorsFolder string

	// Patcher rewrites rpaths. If nil, Patchelf runs in the virtual build
	// environment of the graph's tool requirements.
	Patcher  dist.Patcher
	Patchelf string
	// DryRun logs the patch commands instead of running them.
	DryRun bool
	// Archive, if set, is the path of a zip file receiving the tree.
	Archive string
}

// Result describes a completed run.
type Result struct {
	Tree         dist.Tree
	Generated    []string
	Manifest     *dist.Manifest
	ManifestFile string
}

// Folders returns the absolute distribution and generators folders.
func (o *Options) Folders() (distDir, genDir string, err error) {
	build, err := filepath.Abs(o.BuildFolder)
	if err != nil {
		return "", "", err
	}
	resolve := func(dir, def string) string {
		if dir == "" {
			dir = def
		}
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(build, dir)
	}
	return resolve(o.DistFolder, "dist"), resolve(o.GeneratorsFolder, "generators"), nil
}

func (o *Options) validate() error {
	switch {
	case o.Recipe == nil:
		return errors.New("no recipe")
	case o.Graph == nil:
		return errors.New("no dependency graph")
	case o.BuildFolder == "":
		return errors.New("no build folder")
	}
	return nil
}

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "packager")
	if err := opts.validate(); err != nil {
		return nil, err
	}
	distDir, genDir, err := opts.Folders()
	if err != nil {
		return nil, err
	}

	unlock, err := lockFolder(genDir)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", genDir, err)
	}
	defer unlock()

	logger.InfoKV(ctx, "Packaging", "recipe", opts.Recipe.Name, "settings", opts.Settings.String())

	if err := CheckRequirements(opts.Recipe, opts.Settings, opts.Graph); err != nil {
		return nil, err
	}

	generated, err := Generate(ctx, opts.Settings, opts.Graph, genDir)
	if err != nil {
		return nil, err
	}

	tree := dist.NewTree(distDir, opts.Settings)
	if err := tree.Reset(); err != nil {
		return nil, fmt.Errorf("reset %s: %w", distDir, err)
	}

	im := dist.NewImporter(tree, opts.Settings, opts.patcher())
	if err := importAll(ctx, im, opts.Recipe, opts.Graph); err != nil {
		return nil, err
	}

	res := &Result{
		Tree:         tree,
		Generated:    generated,
		Manifest:     im.Manifest(),
		ManifestFile: filepath.Join(genDir, dist.ManifestFile),
	}
	if err := dist.SaveManifest(res.ManifestFile, res.Manifest); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}

	if opts.Archive != "" {
		logger.InfoKV(ctx, "Writing archive", "path", opts.Archive)
		if err := dist.Zip(tree.Root, opts.Archive); err != nil {
			return nil, fmt.Errorf("archive %s: %w", tree.Root, err)
		}
	}

	logger.InfoKV(ctx, "Distribution ready",
		"path", tree.Root,
		dist.KindLibrary, res.Manifest.Count(dist.KindLibrary),
		dist.KindExecutable, res.Manifest.Count(dist.KindExecutable),
		dist.KindLicense, res.Manifest.Count(dist.KindLicense))
	return res, nil
}

func (o *Options) patcher() dist.Patcher {
	if o.Patcher != nil {
		return o.Patcher
	}
	exe := o.Patchelf
	if exe == "" {
		exe = "patchelf"
	}
	p := dist.NewPatchelf(exe, env.NewBuildEnv(o.Graph.Tools()))
	p.DryRun = o.DryRun
	return p
}

// Generate writes the toolchain file and the config files of the host
// dependencies into dir.
func Generate(ctx context.Context, s recipe.Settings, g *graph.Graph, dir string) ([]string, error) {
	tc, err := generate.NewToolchain(s, g.Tools()).Generate(dir)
	if err != nil {
		return nil, fmt.Errorf("generate toolchain: %w", err)
	}
	files, err := generate.Deps(dir, g.Host())
	if err != nil {
		return nil, fmt.Errorf("generate deps: %w", err)
	}
	files = append([]string{tc}, files...)
	logger.InfoKV(ctx, "Generated build files", "folder", dir, "count", len(files))
	return files, nil
}

func importAll(ctx context.Context, im *dist.Importer, r *recipe.Recipe, g *graph.Graph) error {
	for _, dep := range g.Nodes() {
		dctx := logger.WithKV(ctx, "dependency", dep.Ref.Name)
		shared := Shared(r, dep)
		if _, err := im.ImportDynamicLibs(dctx, dep, r.LibPatterns(dep.Ref.Name), shared); err != nil {
			return err
		}
	}

	for _, rule := range r.Imports.Executables {
		ok, err := ruleEnabled(r, g, rule)
		if err != nil {
			return err
		}
		if !ok {
			logger.DebugKV(ctx, "Executable rule disabled", "from", rule.From, "option", rule.IfOption)
			continue
		}
		dep, err := g.Get(rule.From)
		if err != nil {
			return fmt.Errorf("import executables: %w", err)
		}
		if _, err := im.ImportExecutables(logger.WithKV(ctx, "dependency", dep.Ref.Name), dep, rule.Patterns); err != nil {
			return err
		}
	}

	for _, dep := range g.Nodes() {
		if _, err := im.ImportLicenses(logger.WithKV(ctx, "dependency", dep.Ref.Name), dep, r.Imports.Licenses); err != nil {
			return err
		}
	}
	return nil
}

// ruleEnabled evaluates the "<dep>:<option>" condition of rule. A missing
// dependency disables the rule.
func ruleEnabled(r *recipe.Recipe, g *graph.Graph, rule recipe.ExecutableRule) (bool, error) {
	if rule.IfOption == "" {
		return true, nil
	}
	name, opt, _ := strings.Cut(rule.IfOption, ":")
	dep, err := g.Get(name)
	if errors.Is(err, graph.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return recipe.IsTrue(option(r, dep, opt)), nil
}

// Shared reports whether dep is built as a shared library.
func Shared(r *recipe.Recipe, dep *graph.Node) bool {
	return recipe.IsTrue(option(r, dep, "shared"))
}

// option returns the value of option key of dep. Options the graph omits
// fall back to the recipe defaults for host packages; tool requirements do
// not inherit them.
func option(r *recipe.Recipe, dep *graph.Node, key string) string {
	if v, ok := dep.Option(key); ok {
		return v
	}
	if dep.IsBuild() {
		return ""
	}
	v, _ := r.DefaultOption(dep.Ref.Name, key)
	return v
}
