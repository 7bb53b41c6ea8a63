//go:build !linux && !darwin && !freebsd

package env

import (
	"os"
	"runtime"
)

func hostArch() string {
	return archName(runtime.GOARCH)
}

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
