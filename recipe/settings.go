package recipe

import (
	"fmt"
	"sort"
	"strings"
)

// Setting keys understood by the recipe.
const (
	SettingOS        = "os"
	SettingArch      = "arch"
	SettingCompiler  = "compiler"
	SettingBuildType = "build_type"
)

// Values of the "os" setting with special handling.
const (
	Linux   = "Linux"
	Windows = "Windows"
	Macos   = "Macos"
)

// Settings holds the host settings a run is performed for, keyed by
// setting name ("os", "arch", ...).
type Settings map[string]string

// ParseSettings parses "key=value" assignments as given on the command line.
func ParseSettings(assignments []string) (Settings, error) {
	s := make(Settings, len(assignments))
	for _, a := range assignments {
		k, v, ok := strings.Cut(a, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			return nil, fmt.Errorf("invalid setting %q, want key=value", a)
		}
		s[k] = v
	}
	return s, nil
}

// Merge returns a copy of s with the values of overrides applied on top.
func (s Settings) Merge(overrides Settings) Settings {
	out := make(Settings, len(s)+len(overrides))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// OS returns the target operating system.
func (s Settings) OS() string { return s[SettingOS] }

// IsWindows reports whether the target is Windows.
func (s Settings) IsWindows() bool { return s[SettingOS] == Windows }

// IsLinux reports whether the target is Linux.
func (s Settings) IsLinux() bool { return s[SettingOS] == Linux }

// Matches reports whether every key/value in cond equals the setting.
// An empty cond always matches.
func (s Settings) Matches(cond map[string]string) bool {
	for k, v := range cond {
		if s[k] != v {
			return false
		}
	}
	return true
}

// SharedLibPattern turns a library name pattern into the platform's shared
// library file pattern: "<p>.dll" on Windows, "lib<p>.so*" elsewhere.
func (s Settings) SharedLibPattern(p string) string {
	if s.IsWindows() {
		return p + ".dll"
	}
	return "lib" + p + ".so*"
}

// ExecutablePattern turns an executable name pattern into the platform's
// executable file pattern.
func (s Settings) ExecutablePattern(p string) string {
	if s.IsWindows() {
		return p + ".exe"
	}
	return p
}

// String returns the settings as "key=value" pairs sorted by key and
// joined with "-".
func (s Settings) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+s[k])
	}
	return strings.Join(parts, "-")
}
