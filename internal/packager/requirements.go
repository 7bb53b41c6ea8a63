package packager

import (
	"errors"
	"fmt"

	"github.com/open-simulation-platform/cosimpkg/internal/graph"
	"github.com/open-simulation-platform/cosimpkg/mod/module"
	"github.com/open-simulation-platform/cosimpkg/mod/versions"
	"github.com/open-simulation-platform/cosimpkg/recipe"
)

// ErrUnsatisfied is returned when the graph does not provide a declared
// requirement.
var ErrUnsatisfied = errors.New("requirement not satisfied")

// CheckRequirements verifies that every requirement r declares for s is
// resolved in g: tool requirements in the build context, libraries in the
// host context, each with a version in the declared range.
func CheckRequirements(r *recipe.Recipe, s recipe.Settings, g *graph.Graph) error {
	tools, libs := r.Requirements(s)
	var errs []error
	for _, ref := range tools {
		errs = append(errs, checkRef(ref, g.Tools()))
	}
	for _, ref := range libs {
		errs = append(errs, checkRef(ref, g.Host()))
	}
	return errors.Join(errs...)
}

func checkRef(req module.Ref, nodes []*graph.Node) error {
	var seen []string
	for _, n := range nodes {
		if n.Ref.Name != req.Name {
			continue
		}
		ok, err := versions.Satisfies(req.Version, n.Ref.Version)
		if err != nil {
			return fmt.Errorf("%s: %w", req, err)
		}
		if ok && n.Ref.User == req.User && n.Ref.Channel == req.Channel {
			return nil
		}
		seen = append(seen, n.Ref.String())
	}
	if len(seen) == 0 {
		return fmt.Errorf("%w: %s is not in the graph", ErrUnsatisfied, req)
	}
	return fmt.Errorf("%w: %s resolved to %v", ErrUnsatisfied, req, seen)
}
