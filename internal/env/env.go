// Package env provides the host settings and the virtual build environment
// external tools run in.
package env

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/open-simulation-platform/cosimpkg/internal/graph"
	"github.com/open-simulation-platform/cosimpkg/recipe"
)

// HostSettings returns the settings of the machine the tool runs on.
func HostSettings() recipe.Settings {
	return recipe.Settings{
		recipe.SettingOS:        osName(runtime.GOOS),
		recipe.SettingArch:      hostArch(),
		recipe.SettingBuildType: "Release",
	}
}

func osName(goos string) string {
	switch goos {
	case "linux":
		return recipe.Linux
	case "windows":
		return recipe.Windows
	case "darwin":
		return recipe.Macos
	case "freebsd":
		return "FreeBSD"
	}
	return goos
}

// archName maps a machine name, as reported by uname or GOARCH, to the
// package manager's arch setting.
func archName(machine string) string {
	switch machine {
	case "x86_64", "amd64":
		return "x86_64"
	case "i386", "i686", "386":
		return "x86"
	case "aarch64", "arm64":
		return "armv8"
	case "armv7l", "arm":
		return "armv7"
	case "ppc64le":
		return "ppc64le"
	case "riscv64":
		return "riscv64"
	}
	return machine
}

// BuildEnv is the environment of the tool requirements: their bindirs on
// PATH and their libdirs on the dynamic loader path.
type BuildEnv struct {
	vars map[string]string
	base []string
}

// NewBuildEnv builds the environment for the given tool requirements on
// top of the current process environment.
func NewBuildEnv(tools []*graph.Node) *BuildEnv {
	e := &BuildEnv{vars: map[string]string{}, base: os.Environ()}
	for i := len(tools) - 1; i >= 0; i-- {
		info := tools[i].Root()
		for j := len(info.BinDirs) - 1; j >= 0; j-- {
			e.Prepend("PATH", info.BinDirs[j])
		}
		for j := len(info.LibDirs) - 1; j >= 0; j-- {
			e.Prepend(loaderPathVar(), info.LibDirs[j])
		}
	}
	return e
}

func loaderPathVar() string {
	switch runtime.GOOS {
	case "windows":
		return "PATH"
	case "darwin":
		return "DYLD_LIBRARY_PATH"
	}
	return "LD_LIBRARY_PATH"
}

// Get returns the value of key, falling back to the base environment.
func (e *BuildEnv) Get(key string) string {
	if v, ok := e.vars[key]; ok {
		return v
	}
	prefix := key + "="
	for _, kv := range e.base {
		if strings.HasPrefix(kv, prefix) {
			return kv[len(prefix):]
		}
	}
	return ""
}

// Prepend prepends value to a PATH-style variable.
func (e *BuildEnv) Prepend(key, value string) {
	if cur := e.Get(key); cur != "" {
		value += string(os.PathListSeparator) + cur
	}
	e.vars[key] = value
}

// Environ returns the environment in "key=value" form, suitable for
// exec.Cmd.Env.
func (e *BuildEnv) Environ() []string {
	out := make([]string, 0, len(e.base)+len(e.vars))
	for _, kv := range e.base {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := e.vars[k]; !ok {
			out = append(out, kv)
		}
	}
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+e.vars[k])
	}
	return out
}

// LookPath searches the environment's PATH for an executable. Names
// containing a path separator are returned as they are.
func (e *BuildEnv) LookPath(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		return name, nil
	}
	for _, dir := range filepath.SplitList(e.Get("PATH")) {
		for _, cand := range executableNames(name) {
			p := filepath.Join(dir, cand)
			if isExecutable(p) {
				return p, nil
			}
		}
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func executableNames(name string) []string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		return []string{name + ".exe", name}
	}
	return []string{name}
}
