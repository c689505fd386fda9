// Package endpoint resolves and binds the supervisor's local RPC
// endpoint: an AF_UNIX socket on POSIX, a loopback TCP port recorded in
// a text file on other platforms.
package endpoint

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// Dir returns the endpoint directory for this machine/user:
// {tmp}/agent-team-{platform-id}/.
func Dir() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("agent-team-%s", PlatformID()))
}

// EnsureDir creates the endpoint directory if it does not already exist.
func EnsureDir() (string, error) {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("endpoint: failed to create directory %q: %w", dir, err)
	}
	return dir, nil
}

// SockPath returns the path of the name's endpoint file. On POSIX this
// is the AF_UNIX socket path; elsewhere it is the text file carrying the
// bound TCP port.
func SockPath(name string) string {
	return filepath.Join(Dir(), name+sockSuffix())
}

// LogPath returns the path of the name's background log file.
func LogPath(name string) string {
	return filepath.Join(Dir(), name+".log")
}

// RemoveStale removes any existing endpoint file for name, ignoring a
// not-exist error.
func RemoveStale(name string) error {
	err := os.Remove(SockPath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("endpoint: failed to remove stale endpoint %q: %w", name, err)
	}
	return nil
}

// Exists reports whether name's endpoint file is present.
func Exists(name string) bool {
	_, err := os.Stat(SockPath(name))
	return err == nil
}

// Remove deletes name's endpoint file, ignoring a not-exist error.
func Remove(name string) error {
	return RemoveStale(name)
}

// Dial connects to name's endpoint, AF_UNIX on POSIX or loopback TCP
// (port read from the endpoint file) elsewhere.
func Dial(name string) (net.Conn, error) {
	return dial(name)
}

// Listener owns a bound endpoint and its cleanup.
type Listener struct {
	net.Listener
	name string
}

// Close closes the underlying listener and removes the endpoint file.
func (l *Listener) Close() error {
	err := l.Listener.Close()
	if rmErr := RemoveStale(l.name); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}

// Listen binds name's endpoint: an AF_UNIX socket on POSIX, or a
// loopback TCP listener whose port is written to the endpoint file
// elsewhere.
func Listen(name string) (*Listener, error) {
	if _, err := EnsureDir(); err != nil {
		return nil, err
	}
	if err := RemoveStale(name); err != nil {
		return nil, err
	}
	ln, err := listen(name)
	if err != nil {
		return nil, err
	}
	return &Listener{Listener: ln, name: name}, nil
}
