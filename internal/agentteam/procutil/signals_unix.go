//go:build !windows

package procutil

import (
	"os"
	"syscall"
)

// ShutdownSignals is the set of OS signals that trigger a graceful
// supervisor shutdown.
func ShutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}
