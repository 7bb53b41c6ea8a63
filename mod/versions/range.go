// Package versions provides version-range constraints for package references.
package versions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidRange is returned by ParseRange for malformed expressions.
var ErrInvalidRange = errors.New("invalid version range")

type condition struct {
	op      string // one of ">=", ">", "<=", "<", "="
	version version
}

// version is a package version. canon is its canonical semver form, empty
// for versions semver cannot express ("1.1.1w", "2.13.1.1").
type version struct {
	raw, canon string
}

func parseVersion(s string) (version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if canon, err := Canonical(s); err == nil {
		return version{raw: s, canon: canon}, nil
	}
	if !isLoose(s) {
		return version{}, fmt.Errorf("malformed version %q", s)
	}
	return version{raw: s}, nil
}

// isLoose reports whether s starts with a digit and consists of digits,
// letters and the separators ". - + _ ~".
func isLoose(s string) bool {
	if s == "" || !isDigit(s[0]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isDigit(c) && !isAlpha(c) && !strings.ContainsRune(".-+_~", rune(c)) {
			return false
		}
	}
	return true
}

func (v version) prerelease() bool {
	if v.canon != "" {
		return semver.Prerelease(v.canon) != ""
	}
	return strings.Contains(v.raw, "-")
}

// compare orders versions by semver when both have a semver form and by
// GNU version sort otherwise.
func compare(a, b version) int {
	if a.canon != "" && b.canon != "" {
		return semver.Compare(a.canon, b.canon)
	}
	return compareLoose(a.raw, b.raw)
}

// Range is a parsed version range such as "[>=1.71 <2 || 3.0]".
// Alternatives are separated by "||"; conditions inside an alternative
// must all hold.
type Range struct {
	expr              string
	alternatives      [][]condition
	includePrerelease bool
}

// ParseRange parses a range expression. The surrounding brackets are
// optional. Trailing options follow a comma, e.g. "[>=1.0, include_prerelease]".
func ParseRange(expr string) (*Range, error) {
	s := strings.TrimSpace(expr)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	body, opts, _ := strings.Cut(s, ",")
	r := &Range{expr: expr}
	for _, opt := range strings.Split(opts, ",") {
		switch strings.TrimSpace(opt) {
		case "":
		case "include_prerelease":
			r.includePrerelease = true
		default:
			return nil, fmt.Errorf("%w: unknown option %q in %q", ErrInvalidRange, opt, expr)
		}
	}
	for _, alt := range strings.Split(body, "||") {
		fields := strings.Fields(alt)
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: empty alternative in %q", ErrInvalidRange, expr)
		}
		var conds []condition
		for _, f := range fields {
			c, err := parseCondition(f)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRange, expr, err)
			}
			conds = append(conds, c...)
		}
		r.alternatives = append(r.alternatives, conds)
	}
	return r, nil
}

func parseCondition(s string) ([]condition, error) {
	for _, op := range []string{">=", "<=", ">", "<", "=", "~", "^"} {
		if !strings.HasPrefix(s, op) {
			continue
		}
		v, err := parseVersion(s[len(op):])
		if err != nil {
			return nil, err
		}
		switch op {
		case "~":
			return []condition{{">=", v}, {"<", bump(s[len(op):], false)}}, nil
		case "^":
			return []condition{{">=", v}, {"<", bump(s[len(op):], true)}}, nil
		}
		return []condition{{op, v}}, nil
	}
	v, err := parseVersion(s)
	if err != nil {
		return nil, err
	}
	return []condition{{"=", v}}, nil
}

// bump returns the exclusive upper bound for a tilde or caret condition.
// Tilde increments the minor version when one is given ("~1.2" -> "1.3",
// "~1" -> "2"); caret increments the first non-zero component ("^1.2" ->
// "2", "^0.2" -> "0.3"). The "-0" suffix keeps pre-releases of the bound
// out of the range.
func bump(v string, caret bool) version {
	core, _, _ := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	idx := 0
	if caret {
		for idx < len(parts)-1 && parts[idx] == "0" {
			idx++
		}
	} else if len(parts) > 1 {
		idx = 1
	}
	n, _ := strconv.Atoi(leadingDigits(parts[idx]))
	parts[idx] = strconv.Itoa(n + 1)
	for i := range parts[:idx] {
		parts[i] = leadingDigits(parts[i])
	}
	canon, _ := Canonical(strings.Join(parts[:idx+1], "."))
	canon += "-0"
	return version{raw: strings.TrimPrefix(canon, "v"), canon: canon}
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 {
		return "0"
	}
	return s[:i]
}

// Canonical converts a package version ("1.71", "0.11.0") to canonical
// semver form ("v1.71.0"). Versions with more than three numeric
// components are rejected.
func Canonical(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", errors.New("empty version")
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("malformed version %q", strings.TrimPrefix(v, "v"))
	}
	return semver.Canonical(v), nil
}

// Contains reports whether ver satisfies r. Pre-release versions only
// match when the range was parsed with include_prerelease.
func (r *Range) Contains(ver string) bool {
	v, err := parseVersion(ver)
	if err != nil {
		return false
	}
	if v.prerelease() && !r.includePrerelease {
		return false
	}
	for _, alt := range r.alternatives {
		if matchAll(alt, v) {
			return true
		}
	}
	return false
}

func matchAll(conds []condition, v version) bool {
	for _, c := range conds {
		cmp := compare(v, c.version)
		var ok bool
		switch c.op {
		case ">=":
			ok = cmp >= 0
		case ">":
			ok = cmp > 0
		case "<=":
			ok = cmp <= 0
		case "<":
			ok = cmp < 0
		case "=":
			ok = cmp == 0
		}
		if !ok {
			return false
		}
	}
	return true
}

// String returns the expression r was parsed from.
func (r *Range) String() string {
	return r.expr
}

// Satisfies reports whether the resolved version satisfies the required
// one. A required version in brackets is a range; anything else must match
// exactly, as text.
func Satisfies(required, resolved string) (bool, error) {
	if !strings.HasPrefix(required, "[") {
		return required == resolved, nil
	}
	r, err := ParseRange(required)
	if err != nil {
		return false, err
	}
	return r.Contains(resolved), nil
}
