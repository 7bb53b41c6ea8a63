// Package generate writes the files the downstream CMake build consumes:
// a toolchain file and a package config file per host dependency.
package generate

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/open-simulation-platform/cosimpkg/internal/graph"
	"github.com/open-simulation-platform/cosimpkg/recipe"
)

// ToolchainFile is the name of the generated toolchain file.
const ToolchainFile = "toolchain.cmake"

type defineValue struct {
	value    string
	typeName string
}

// Toolchain generates the CMake toolchain file.
type Toolchain struct {
	settings recipe.Settings
	tools    []*graph.Node
	defines  map[string]defineValue
}

// NewToolchain returns a toolchain for the target settings. The bindirs of
// tools are added to CMAKE_PROGRAM_PATH.
func NewToolchain(s recipe.Settings, tools []*graph.Node) *Toolchain {
	t := &Toolchain{
		settings: s,
		tools:    tools,
		defines:  make(map[string]defineValue),
	}
	if bt := s[recipe.SettingBuildType]; bt != "" {
		t.Define("CMAKE_BUILD_TYPE", bt)
	}
	t.DefineBool("CMAKE_POSITION_INDEPENDENT_CODE", true)
	if s.IsLinux() {
		t.Define("CMAKE_INSTALL_RPATH", "$ORIGIN/../lib")
		t.DefineBool("CMAKE_BUILD_RPATH_USE_ORIGIN", true)
	}
	return t
}

// Define adds a STRING cache entry.
func (t *Toolchain) Define(key, value string) {
	t.defines[key] = defineValue{value: value, typeName: "STRING"}
}

// DefineBool adds a BOOL cache entry set to ON or OFF.
func (t *Toolchain) DefineBool(key string, value bool) {
	v := "OFF"
	if value {
		v = "ON"
	}
	t.defines[key] = defineValue{value: v, typeName: "BOOL"}
}

type cacheEntry struct {
	Key, Value, Type string
}

func (t *Toolchain) cacheEntries() []cacheEntry {
	keys := make([]string, 0, len(t.defines))
	for k := range t.defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]cacheEntry, 0, len(keys))
	for _, k := range keys {
		d := t.defines[k]
		entries = append(entries, cacheEntry{Key: k, Value: d.value, Type: d.typeName})
	}
	return entries
}

func (t *Toolchain) programPath() []string {
	var dirs []string
	for _, tool := range t.tools {
		dirs = append(dirs, tool.Root().BinDirs...)
	}
	return dirs
}

var toolchainTmpl = template.Must(template.New("toolchain").Funcs(funcs).Parse(`# Generated by cosimpkg. Do not edit.
{{range .Entries -}}
set({{.Key}} {{quote .Value}} CACHE {{.Type}} "" FORCE)
{{end -}}
list(PREPEND CMAKE_PREFIX_PATH "${CMAKE_CURRENT_LIST_DIR}")
list(PREPEND CMAKE_MODULE_PATH "${CMAKE_CURRENT_LIST_DIR}")
{{- if .ProgramPath}}
list(PREPEND CMAKE_PROGRAM_PATH {{pathList .ProgramPath}})
{{- end}}
`))

// Generate writes the toolchain file into dir and returns its path.
func (t *Toolchain) Generate(dir string) (string, error) {
	var b strings.Builder
	err := toolchainTmpl.Execute(&b, struct {
		Entries     []cacheEntry
		ProgramPath []string
	}{t.cacheEntries(), t.programPath()})
	if err != nil {
		return "", err
	}
	file := filepath.Join(dir, ToolchainFile)
	return file, writeFile(file, b.String())
}

func writeFile(file, content string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	return os.WriteFile(file, []byte(content), 0o644)
}

var funcs = template.FuncMap{
	"quote":    quote,
	"pathList": pathList,
}

// quote returns s as a quoted CMake argument.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// pathList returns dirs as one quoted CMake list with forward slashes.
func pathList(dirs []string) string {
	conv := make([]string, len(dirs))
	for i, d := range dirs {
		conv[i] = filepath.ToSlash(d)
	}
	return quote(strings.Join(conv, ";"))
}
