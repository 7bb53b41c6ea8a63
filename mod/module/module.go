// Package module defines the module.Ref type along with support code.
package module

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRef is returned by ParseRef for malformed references.
var ErrInvalidRef = errors.New("invalid package reference")

// A Ref identifies a dependency package as "name/version[@user[/channel]]".
// Version may be an exact version or a range in brackets, e.g. "[>=1.71]".
type Ref struct {
	Name    string
	Version string
	User    string
	Channel string
}

// ParseRef parses a reference in the form "name/version@user/channel".
// The user and channel parts are optional.
func ParseRef(s string) (Ref, error) {
	var r Ref
	nameVer, userChan, hasUser := strings.Cut(strings.TrimSpace(s), "@")
	name, ver, ok := strings.Cut(nameVer, "/")
	if !ok || name == "" || ver == "" {
		return r, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	r.Name, r.Version = name, ver
	if hasUser {
		user, channel, _ := strings.Cut(userChan, "/")
		if user == "" {
			return r, fmt.Errorf("%w: %q", ErrInvalidRef, s)
		}
		r.User, r.Channel = user, channel
	}
	return r, nil
}

// MustParseRef is like ParseRef but panics on error.
func MustParseRef(s string) Ref {
	r, err := ParseRef(s)
	if err != nil {
		panic(err)
	}
	return r
}

// IsRange reports whether the version part of r is a version range.
func (r Ref) IsRange() bool {
	return strings.HasPrefix(r.Version, "[") && strings.HasSuffix(r.Version, "]")
}

// String returns the canonical textual form of r.
func (r Ref) String() string {
	s := r.Name + "/" + r.Version
	if r.User != "" {
		s += "@" + r.User
		if r.Channel != "" {
			s += "/" + r.Channel
		}
	}
	return s
}
