//go:build windows

package launcher

import "syscall"

// buildSysProcAttr creates a new process group so Ctrl-C in the
// launching console doesn't propagate directly to the background
// supervisor.
func buildSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
