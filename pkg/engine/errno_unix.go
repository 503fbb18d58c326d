//go:build !windows

package engine

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func isAddrInUse(errno syscall.Errno) bool {
	return errno == unix.EADDRINUSE
}

func isPermission(errno syscall.Errno) bool {
	return errno == unix.EACCES || errno == unix.EPERM
}
