package dist

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/open-simulation-platform/cosimpkg/internal/env"
	"github.com/open-simulation-platform/cosimpkg/internal/graph"
)

func TestCopy_KeepPath(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "a", 0o644)
	writeFile(t, filepath.Join(src, "sub", "b.txt"), "b", 0o600)
	writeFile(t, filepath.Join(src, "sub", "c.bin"), "c", 0o644)
	dst := t.TempDir()

	files, err := Copy("*.txt", src, dst, CopyOptions{KeepPath: true, Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("copied %v, want 2 files", files)
	}
	fi, err := os.Stat(filepath.Join(dst, "sub", "b.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && fi.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", fi.Mode().Perm())
	}
}

func TestCopy_FlatAndNonRecursive(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "a", 0o644)
	writeFile(t, filepath.Join(src, "sub", "b.txt"), "b", 0o644)

	flat := t.TempDir()
	files, err := Copy("*.txt", src, flat, CopyOptions{Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := baseNames(files); !reflect.DeepEqual(got, []string{"a.txt", "b.txt"}) {
		t.Errorf("flat copy = %v", got)
	}
	if _, err := os.Stat(filepath.Join(flat, "b.txt")); err != nil {
		t.Errorf("b.txt not flattened: %v", err)
	}

	top := t.TempDir()
	files, err = Copy("*.txt", src, top, CopyOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := baseNames(files); !reflect.DeepEqual(got, []string{"a.txt"}) {
		t.Errorf("non-recursive copy = %v", got)
	}
}

func TestCopy_MissingSource(t *testing.T) {
	files, err := Copy("*", filepath.Join(t.TempDir(), "nope"), t.TempDir(), CopyOptions{})
	if err != nil || files != nil {
		t.Errorf("Copy() = %v, %v; want nil, nil", files, err)
	}
}

func TestCopy_OverwritesReadOnly(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "libx.so"), "new", 0o444)
	dst := t.TempDir()
	writeFile(t, filepath.Join(dst, "libx.so"), "old", 0o444)

	if _, err := Copy("*", src, dst, CopyOptions{}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(dst, "libx.so"))
	if string(data) != "new" {
		t.Errorf("content = %q, want new", data)
	}
}

func TestTree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "dist")

	tree := NewTree(root, linux)
	if tree.LibDir != filepath.Join(root, "lib") || tree.BinDir != filepath.Join(root, "bin") {
		t.Errorf("linux tree = %+v", tree)
	}
	if got := tree.LicenseDir("boost"); got != filepath.Join(root, "doc", "licenses", "boost") {
		t.Errorf("LicenseDir() = %q", got)
	}
	if w := NewTree(root, windows); w.LibDir != w.BinDir {
		t.Errorf("windows tree lib = %q, want bin", w.LibDir)
	}

	writeFile(t, filepath.Join(root, "lib", "stale.so"), "x", 0o644)
	if err := tree.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "lib", "stale.so")); !os.IsNotExist(err) {
		t.Error("Reset() kept a stale file")
	}
	for _, dir := range []string{tree.BinDir, tree.LibDir, tree.Licenses} {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			t.Errorf("%s missing after Reset()", dir)
		}
	}
}

func TestManifest(t *testing.T) {
	file := filepath.Join(t.TempDir(), "generators", ManifestFile)
	m := &Manifest{
		Settings: map[string]string{"os": "Linux"},
		Entries: []Entry{
			{Path: "lib/libfoo.so", Kind: KindLibrary, Dependency: "foo", RPath: LibRPath},
			{Path: "doc/licenses/foo/LICENSE", Kind: KindLicense, Dependency: "foo"},
		},
	}
	if err := SaveManifest(file, m); err != nil {
		t.Fatal(err)
	}
	got, err := LoadManifest(file)
	if err != nil {
		t.Fatal(err)
	}
	if got.Count(KindLibrary) != 1 || got.Count(KindLicense) != 1 || got.Count(KindExecutable) != 0 {
		t.Errorf("loaded manifest = %+v", got)
	}
	if _, err := LoadManifest(filepath.Join(t.TempDir(), ManifestFile)); !os.IsNotExist(err) {
		t.Errorf("LoadManifest(missing) error = %v", err)
	}
}

func TestZip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "bin", "cosim"), "exe", 0o755)
	writeFile(t, filepath.Join(src, "lib", "libcosim.so"), "lib", 0o644)
	dest := filepath.Join(t.TempDir(), "dist.zip")

	if err := Zip(src, dest); err != nil {
		t.Fatal(err)
	}
	r, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
		if f.Name == "lib/libcosim.so" {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			data, _ := io.ReadAll(rc)
			rc.Close()
			if string(data) != "lib" {
				t.Errorf("libcosim.so content = %q", data)
			}
		}
	}
	sort.Strings(names)
	if want := []string{"bin/cosim", "lib/libcosim.so"}; !reflect.DeepEqual(names, want) {
		t.Errorf("archive entries = %v, want %v", names, want)
	}
}

func TestCommandLine(t *testing.T) {
	got := commandLine("patchelf", []string{"--set-rpath", "$ORIGIN/../lib", "/dist/bin/my tool"})
	if !strings.Contains(got, "'$ORIGIN/../lib'") {
		t.Errorf("commandLine() = %q, want quoted rpath", got)
	}
	if !strings.Contains(got, "'/dist/bin/my tool'") {
		t.Errorf("commandLine() = %q, want quoted path", got)
	}
	if !strings.HasPrefix(got, "patchelf --set-rpath ") {
		t.Errorf("commandLine() = %q", got)
	}
}

func TestPatchelf_DryRun(t *testing.T) {
	p := NewPatchelf("does-not-exist", env.NewBuildEnv(nil))
	p.DryRun = true
	if err := p.SetRPath(context.Background(), LibRPath, []string{"/dist/lib/libfoo.so"}); err != nil {
		t.Errorf("SetRPath() dry run error = %v", err)
	}
}

func TestPatchelf_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as patchelf")
	}
	bindir := t.TempDir()
	out := filepath.Join(t.TempDir(), "args")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + out + "\n"
	writeFile(t, filepath.Join(bindir, "patchelf"), script, 0o755)

	tool := &graph.Node{
		Context: graph.ContextBuild,
		CppInfo: map[string]graph.CppInfo{"root": {BinDirs: []string{bindir}}},
	}
	p := NewPatchelf("patchelf", env.NewBuildEnv([]*graph.Node{tool}))
	if err := p.SetRPath(context.Background(), ExeRPath, []string{"/dist/bin/a", "/dist/bin/b"}); err != nil {
		t.Fatalf("SetRPath() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "--set-rpath\n$ORIGIN/../lib\n/dist/bin/a\n/dist/bin/b\n"
	if string(data) != want {
		t.Errorf("patchelf args = %q, want %q", data, want)
	}
}

func TestPatchelf_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as patchelf")
	}
	bindir := t.TempDir()
	writeFile(t, filepath.Join(bindir, "patchelf"), "#!/bin/sh\necho 'not an ELF executable' >&2\nexit 1\n", 0o755)
	tool := &graph.Node{CppInfo: map[string]graph.CppInfo{"root": {BinDirs: []string{bindir}}}}

	p := NewPatchelf("patchelf", env.NewBuildEnv([]*graph.Node{tool}))
	err := p.SetRPath(context.Background(), LibRPath, []string{"/dist/lib/libfoo.so"})
	if err == nil || !strings.Contains(err.Error(), "not an ELF executable") {
		t.Errorf("SetRPath() error = %v, want patchelf's message", err)
	}
}

func TestPatchelf_NotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	p := NewPatchelf("patchelf", env.NewBuildEnv(nil))
	if err := p.SetRPath(context.Background(), LibRPath, []string{"/dist/lib/libfoo.so"}); err == nil {
		t.Error("SetRPath() error = nil, want not found")
	}
}
