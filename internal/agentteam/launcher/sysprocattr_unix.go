//go:build !windows

package launcher

import "syscall"

// buildSysProcAttr puts the background supervisor in its own process
// group so an interactive Ctrl-C in the launching shell does not also
// signal it directly.
func buildSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
