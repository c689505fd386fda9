//go:build windows

package endpoint

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

func sockSuffix() string { return ".sock" }

// PlatformID is the process id on non-POSIX platforms.
func PlatformID() string {
	return fmt.Sprintf("%d", os.Getpid())
}

func listen(name string) (net.Listener, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("endpoint: failed to bind loopback port: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := os.WriteFile(SockPath(name), []byte(strconv.Itoa(port)), 0o644); err != nil {
		ln.Close()
		return nil, fmt.Errorf("endpoint: failed to write port file: %w", err)
	}
	return ln, nil
}

func dial(name string) (net.Conn, error) {
	data, err := os.ReadFile(SockPath(name))
	if err != nil {
		return nil, fmt.Errorf("endpoint: failed to read port file for %q: %w", name, err)
	}
	port := strings.TrimSpace(string(data))
	conn, err := net.Dial("tcp", "127.0.0.1:"+port)
	if err != nil {
		return nil, fmt.Errorf("endpoint: failed to connect to %q: %w", name, err)
	}
	return conn, nil
}
