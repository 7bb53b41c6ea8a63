package dist

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/open-simulation-platform/cosimpkg/internal/env"
	"github.com/open-simulation-platform/cosimpkg/internal/logger"
)

// Patcher rewrites the runtime library search path of binaries.
type Patcher interface {
	SetRPath(ctx context.Context, rpath string, files []string) error
}

// Patchelf runs "patchelf --set-rpath" in the build environment.
type Patchelf struct {
	// Exe is the patchelf executable, looked up in Env's PATH.
	Exe string
	Env *env.BuildEnv
	// DryRun logs the command instead of running it.
	DryRun bool
}

var _ Patcher = (*Patchelf)(nil)

// NewPatchelf returns a Patcher running exe within e.
func NewPatchelf(exe string, e *env.BuildEnv) *Patchelf {
	return &Patchelf{Exe: exe, Env: e}
}

// SetRPath sets the rpath of files to rpath with a single invocation.
func (p *Patchelf) SetRPath(ctx context.Context, rpath string, files []string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"--set-rpath", rpath}, files...)
	cmdline := commandLine(p.Exe, args)
	if p.DryRun {
		logger.InfoKV(ctx, "Dry run, not patching", "command", cmdline)
		return nil
	}

	exe, err := p.Env.LookPath(p.Exe)
	if err != nil {
		return err
	}
	logger.DebugKV(ctx, "Running patchelf", "command", cmdline)

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Env = p.Env.Environ()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %s", cmdline, msg)
		}
		return fmt.Errorf("%s: %w", cmdline, err)
	}
	return nil
}

// commandLine renders name and args as a shell command, for logs.
func commandLine(name string, args []string) string {
	words := make([]string, 0, len(args)+1)
	for _, w := range append([]string{name}, args...) {
		q, err := syntax.Quote(w, syntax.LangPOSIX)
		if err != nil {
			q = fmt.Sprintf("%q", w)
		}
		words = append(words, q)
	}
	return strings.Join(words, " ")
}
