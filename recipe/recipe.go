// Package recipe describes what a distribution is assembled from: the
// settings it is built for, the packages it requires and the rules for
// importing their artifacts.
package recipe

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-simulation-platform/cosimpkg/mod/module"
	"github.com/open-simulation-platform/cosimpkg/mod/versions"
)

// ErrInvalid is returned when a recipe fails validation.
var ErrInvalid = errors.New("invalid recipe")

//go:embed default.yaml
var defaultRecipe []byte

// Recipe is the declaration of a distribution.
type Recipe struct {
	Name string `yaml:"name"`
	// Settings lists the setting keys the recipe depends on.
	Settings []string `yaml:"settings"`
	// DefaultOptions maps "<dep pattern>:<option>" to a value, e.g. "*:shared".
	DefaultOptions map[string]string `yaml:"default_options"`
	ToolRequires   []Requirement     `yaml:"tool_requires"`
	Requires       []Requirement     `yaml:"requires"`
	Imports        Imports           `yaml:"imports"`
}

// Requirement declares a dependency on a package reference. When restricts
// the requirement to hosts whose settings match.
type Requirement struct {
	Ref  string            `yaml:"ref"`
	When map[string]string `yaml:"when,omitempty"`
}

// Imports holds the rules for populating the distribution tree.
type Imports struct {
	// Libs restricts the shared libraries imported from a dependency to the
	// given name patterns. Dependencies without an entry import everything.
	Libs        map[string][]string `yaml:"libs"`
	Executables []ExecutableRule    `yaml:"executables"`
	Licenses    LicenseRule         `yaml:"licenses"`
}

// ExecutableRule imports companion executables from a dependency.
type ExecutableRule struct {
	From string `yaml:"from"`
	// IfOption names a "<dep>:<option>" that must be true for the rule to
	// apply. Empty means always.
	IfOption string   `yaml:"if_option,omitempty"`
	Patterns []string `yaml:"patterns,omitempty"`
}

// LicenseRule configures license collection.
type LicenseRule struct {
	// Folder is the package-relative directory copied verbatim when present.
	Folder string `yaml:"folder"`
	// Patterns are the case-insensitive file name patterns used when the
	// package has no license folder.
	Patterns []string `yaml:"patterns"`
}

// Default returns the built-in recipe of the cosim command line tool.
func Default() *Recipe {
	r, err := Parse(defaultRecipe)
	if err != nil {
		panic(fmt.Sprintf("recipe: embedded default is broken: %v", err))
	}
	return r
}

// Load reads a recipe from a YAML file.
func Load(file string) (*Recipe, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return r, nil
}

// Parse decodes and validates a YAML recipe. Unknown fields are rejected.
func Parse(data []byte) (*Recipe, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var r Recipe
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks references, ranges and rules.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	for _, req := range append(append([]Requirement(nil), r.ToolRequires...), r.Requires...) {
		ref, err := module.ParseRef(req.Ref)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if ref.IsRange() {
			if _, err := versions.ParseRange(ref.Version); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalid, ref.Name, err)
			}
		}
	}
	for key := range r.DefaultOptions {
		if _, _, ok := strings.Cut(key, ":"); !ok {
			return fmt.Errorf("%w: default option %q, want <pattern>:<option>", ErrInvalid, key)
		}
	}
	for _, e := range r.Imports.Executables {
		if e.From == "" {
			return fmt.Errorf("%w: executable rule without 'from'", ErrInvalid)
		}
		if e.IfOption != "" && !strings.Contains(e.IfOption, ":") {
			return fmt.Errorf("%w: if_option %q, want <dep>:<option>", ErrInvalid, e.IfOption)
		}
	}
	return nil
}

// Requirements returns the tool and library requirements that apply to s.
func (r *Recipe) Requirements(s Settings) (tools, libs []module.Ref) {
	pick := func(reqs []Requirement) []module.Ref {
		var refs []module.Ref
		for _, req := range reqs {
			if s.Matches(req.When) {
				refs = append(refs, module.MustParseRef(req.Ref))
			}
		}
		return refs
	}
	return pick(r.ToolRequires), pick(r.Requires)
}

// LibPatterns returns the library name patterns imported from dep.
func (r *Recipe) LibPatterns(dep string) []string {
	if p, ok := r.Imports.Libs[dep]; ok && len(p) > 0 {
		return p
	}
	return []string{"*"}
}

// DefaultOption returns the recipe default for option key of dep. Exact
// "<dep>:<key>" entries take precedence over patterns.
func (r *Recipe) DefaultOption(dep, key string) (string, bool) {
	if v, ok := r.DefaultOptions[dep+":"+key]; ok {
		return v, true
	}
	for k, v := range r.DefaultOptions {
		pattern, opt, _ := strings.Cut(k, ":")
		if opt != key {
			continue
		}
		if ok, _ := path.Match(pattern, dep); ok {
			return v, true
		}
	}
	return "", false
}

// IsTrue reports whether an option value means true.
func IsTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
