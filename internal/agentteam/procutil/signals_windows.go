//go:build windows

package procutil

import "os"

// ShutdownSignals is the set of OS signals that trigger a graceful
// supervisor shutdown; on Windows only Ctrl-C (os.Interrupt) is
// portably observable.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
