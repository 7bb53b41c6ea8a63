package dist

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyOptions controls Copy.
type CopyOptions struct {
	// KeepPath preserves the path relative to src below dst; otherwise
	// matches are copied flat into dst.
	KeepPath bool
	// IgnoreCase matches patterns case-insensitively.
	IgnoreCase bool
	// Recursive descends into subdirectories of src. Patterns are matched
	// against the slash-separated path relative to src.
	Recursive bool
}

// Copy copies the files below src matching pattern into dst and returns
// the destination paths in walk order. A missing src copies nothing.
// Symbolic links are recreated as links; regular files keep their mode.
func Copy(pattern, src, dst string, opts CopyOptions) ([]string, error) {
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var copied []string
	walk := func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != src && !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if !matchPattern(pattern, filepath.ToSlash(rel), opts.IgnoreCase) {
			return nil
		}
		target := filepath.Join(dst, d.Name())
		if opts.KeepPath {
			target = filepath.Join(dst, rel)
		}
		if err := copyEntry(p, target, d); err != nil {
			return err
		}
		copied = append(copied, target)
		return nil
	}
	if err := filepath.WalkDir(src, walk); err != nil {
		return copied, err
	}
	return copied, nil
}

func copyEntry(src, dst string, d fs.DirEntry) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	// Overlapping patterns may have copied dst already, possibly read-only.
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if d.Type()&fs.ModeSymlink != 0 {
		link, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(link, dst)
	}
	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile applies the umask; match the source mode exactly.
	return os.Chmod(dst, fi.Mode().Perm())
}

// regularFiles filters paths down to regular files, dropping symlinks.
func regularFiles(paths []string) []string {
	var out []string
	for _, p := range paths {
		if fi, err := os.Lstat(p); err == nil && fi.Mode().IsRegular() {
			out = append(out, p)
		}
	}
	return out
}
