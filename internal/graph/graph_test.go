package graph

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func names(nodes []*Node) []string {
	var s []string
	for _, n := range nodes {
		s = append(s, n.Ref.Name)
	}
	return s
}

func TestLoad(t *testing.T) {
	g, err := Load(filepath.Join("testdata", "graph.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := names(g.Nodes()), []string{"libcosim", "boost", "proxyfmu", "cmake", "patchelf"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Nodes() = %v, want %v", got, want)
	}
	if got, want := names(g.Host()), []string{"libcosim", "boost", "proxyfmu"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Host() = %v, want %v", got, want)
	}
	if got, want := names(g.Tools()), []string{"cmake", "patchelf"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Tools() = %v, want %v", got, want)
	}
	if edges := g.Root().Dependencies; len(edges) != 4 || !edges["10"].Build {
		t.Errorf("root dependencies = %v", edges)
	}

	cosim, err := g.Get("libcosim")
	if err != nil {
		t.Fatalf("Get(libcosim) error = %v", err)
	}
	if cosim.Ref.Channel != "testing-feature_conan-2" {
		t.Errorf("libcosim channel = %q", cosim.Ref.Channel)
	}
	if v, ok := cosim.Option("proxyfmu"); !ok || v != "True" {
		t.Errorf("libcosim proxyfmu = %q, %v", v, ok)
	}
	if got := cosim.Root().LibDirs; !reflect.DeepEqual(got, []string{"/pkgs/libcosim/lib"}) {
		t.Errorf("libcosim libdirs = %v", got)
	}

	patchelf, err := g.Get("patchelf")
	if err != nil || !patchelf.IsBuild() {
		t.Errorf("Get(patchelf) = %v, %v; want build node", patchelf, err)
	}
	if _, ok := patchelf.Option("shared"); ok {
		t.Error("patchelf should have no shared option")
	}

	if _, err := g.Get("zlib"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(zlib) error = %v, want ErrNotFound", err)
	}
}

func TestGet_PrefersHost(t *testing.T) {
	g, err := Parse([]byte(`{"graph": {"nodes": {
		"0": {"ref": "conanfile"},
		"1": {"ref": "protobuf/3.21.12", "context": "build"},
		"2": {"ref": "protobuf/3.21.12"}
	}}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	n, err := g.Get("protobuf")
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != "2" || n.Context != ContextHost {
		t.Errorf("Get(protobuf) = node %s (%s), want host node 2", n.ID, n.Context)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"not json": `{`,
		"no root":  `{"graph": {"nodes": {"1": {"ref": "boost/1.81.0"}}}}`,
		"bad ref":  `{"graph": {"nodes": {"0": {"ref": "conanfile"}, "1": {"ref": "boost"}}}}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "graph.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want ErrNotExist", err)
	}
}
