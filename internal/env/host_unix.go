//go:build linux || darwin || freebsd

package env

import (
	"runtime"

	"golang.org/x/sys/unix"
)

func hostArch() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return archName(runtime.GOARCH)
	}
	return archName(unix.ByteSliceToString(uts.Machine[:]))
}

func isExecutable(path string) bool {
	return unix.Access(path, unix.X_OK) == nil && !isDir(path)
}
