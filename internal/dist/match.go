package dist

import (
	"regexp"
	"strings"
	"sync"
)

var (
	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

// matchPattern reports whether name matches the shell pattern with the
// package manager's fnmatch rules: '*' matches any run of characters,
// including '/', '?' matches one character and "[...]" a character class
// ("[!...]" negated).
func matchPattern(pattern, name string, fold bool) bool {
	key := pattern
	if fold {
		key = "(?i)" + pattern
	}
	patternMu.Lock()
	re, ok := patternCache[key]
	if !ok {
		re = regexp.MustCompile(translate(pattern, fold))
		patternCache[key] = re
	}
	patternMu.Unlock()
	return re.MatchString(name)
}

func translate(pattern string, fold bool) string {
	var b strings.Builder
	b.WriteString("(?s")
	if fold {
		b.WriteString("i")
	}
	b.WriteString(")^")
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i + 1
			if j < len(pattern) && pattern[j] == '!' {
				j++
			}
			if j < len(pattern) && pattern[j] == ']' {
				j++
			}
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j >= len(pattern) {
				b.WriteString(`\[`)
				continue
			}
			class := strings.ReplaceAll(pattern[i+1:j], `\`, `\\`)
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			} else if strings.HasPrefix(class, "^") {
				class = `\` + class
			}
			b.WriteString("[" + class + "]")
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}
	b.WriteString("$")
	return b.String()
}
