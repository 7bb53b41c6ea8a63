// Package graph reads the dependency graph resolved by the package manager.
//
// The document has the shape written by "conan graph info --format=json":
//
//	{"graph": {"nodes": {
//	  "0": {"ref": "conanfile", "dependencies": {"1": {"direct": true, "build": false}}},
//	  "1": {"ref": "boost/1.81.0", "context": "host", "package_folder": "...",
//	        "options": {"shared": "True"},
//	        "cpp_info": {"root": {"libdirs": ["..."], "bindirs": ["..."]}}}
//	}}}
//
// Node "0" is the consumer itself and is not a dependency.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/open-simulation-platform/cosimpkg/mod/module"
)

// ErrNotFound is returned when a dependency is not part of the graph.
var ErrNotFound = errors.New("dependency not found")

// Package contexts.
const (
	ContextHost  = "host"
	ContextBuild = "build"
)

// CppInfo lists the filesystem locations a package exports.
type CppInfo struct {
	IncludeDirs []string `json:"includedirs"`
	LibDirs     []string `json:"libdirs"`
	BinDirs     []string `json:"bindirs"`
	Libs        []string `json:"libs"`
}

// Edge describes how a node requires another.
type Edge struct {
	Ref    string `json:"ref"`
	Direct bool   `json:"direct"`
	Build  bool   `json:"build"`
}

// Node is one resolved package.
type Node struct {
	ID            string             `json:"-"`
	RawRef        string             `json:"ref"`
	Context       string             `json:"context"`
	PackageFolder string             `json:"package_folder"`
	Options       map[string]string  `json:"options"`
	CppInfo       map[string]CppInfo `json:"cpp_info"`
	Dependencies  map[string]Edge    `json:"dependencies"`

	Ref module.Ref `json:"-"`
}

// Root returns the package-level cpp_info component.
func (n *Node) Root() CppInfo {
	return n.CppInfo["root"]
}

// Option returns the value of option key and whether the graph sets it.
func (n *Node) Option(key string) (string, bool) {
	v, ok := n.Options[key]
	return v, ok
}

// IsBuild reports whether the node is a tool requirement.
func (n *Node) IsBuild() bool {
	return n.Context == ContextBuild
}

// Graph is a resolved dependency graph.
type Graph struct {
	root  *Node
	nodes []*Node // dependencies in node id order, root excluded
}

type document struct {
	Graph struct {
		Nodes map[string]*Node `json:"nodes"`
	} `json:"graph"`
}

// Load reads a graph document from file.
func Load(file string) (*Graph, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return g, nil
}

// Parse decodes a graph document.
func Parse(data []byte) (*Graph, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	root, ok := doc.Graph.Nodes["0"]
	if !ok {
		return nil, errors.New("graph has no root node")
	}
	root.ID = "0"

	g := &Graph{root: root}
	for id, n := range doc.Graph.Nodes {
		if id == "0" {
			continue
		}
		ref, err := module.ParseRef(n.RawRef)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		n.ID, n.Ref = id, ref
		if n.Context == "" {
			n.Context = ContextHost
		}
		g.nodes = append(g.nodes, n)
	}
	sort.Slice(g.nodes, func(i, j int) bool {
		return idLess(g.nodes[i].ID, g.nodes[j].ID)
	})
	return g, nil
}

// idLess orders numeric ids numerically and anything else lexically.
func idLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

// Root returns the consumer node.
func (g *Graph) Root() *Node {
	return g.root
}

// Nodes returns all dependencies, host and build, in id order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Host returns the dependencies in the host context.
func (g *Graph) Host() []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if !n.IsBuild() {
			out = append(out, n)
		}
	}
	return out
}

// Tools returns the tool requirements.
func (g *Graph) Tools() []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.IsBuild() {
			out = append(out, n)
		}
	}
	return out
}

// Get returns the first dependency named name, preferring the host context.
func (g *Graph) Get(name string) (*Node, error) {
	var found *Node
	for _, n := range g.nodes {
		if n.Ref.Name != name {
			continue
		}
		if !n.IsBuild() {
			return n, nil
		}
		if found == nil {
			found = n
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return found, nil
}
