//go:build !windows

package endpoint

import (
	"fmt"
	"net"
	"os"
)

func sockSuffix() string { return ".sock" }

// PlatformID is the POSIX user id on Unix.
func PlatformID() string {
	return fmt.Sprintf("%d", os.Getuid())
}

func listen(name string) (net.Listener, error) {
	ln, err := net.Listen("unix", SockPath(name))
	if err != nil {
		return nil, fmt.Errorf("endpoint: failed to bind unix socket %q: %w", SockPath(name), err)
	}
	return ln, nil
}

func dial(name string) (net.Conn, error) {
	conn, err := net.Dial("unix", SockPath(name))
	if err != nil {
		return nil, fmt.Errorf("endpoint: failed to connect to %q: %w", name, err)
	}
	return conn, nil
}
