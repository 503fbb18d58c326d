//go:build windows

package engine

import (
	"syscall"

	"golang.org/x/sys/windows"
)

func isAddrInUse(errno syscall.Errno) bool {
	return errno == windows.WSAEADDRINUSE
}

func isPermission(errno syscall.Errno) bool {
	return errno == windows.WSAEACCES || errno == windows.ERROR_ACCESS_DENIED
}
