// Package listener opens the server's TCP listening socket.
//
// The teacher codebase reaches for syscall directly when it needs control
// below the os/net abstraction (internal/fs/lock.go's use of syscall.Flock
// for flock(2)); this package follows the same instinct for SO_REUSEADDR,
// going through golang.org/x/sys/unix rather than the syscall package
// because x/sys is the maintained, cross-platform-correct successor and the
// rest of this pack (mauriciomferz-Gauth_go) already depends on it.
package listener

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// Listen opens a TCP listener on addr (host:port, or ":port" for all
// interfaces) with SO_REUSEADDR set on the listening socket, so a restarted
// server can rebind a port still draining TIME_WAIT connections from a prior
// run.
func Listen(addr string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var setErr error

			err := c.Control(func(fd uintptr) {
				setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}

			return setErr
		},
	}

	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listener: listen %s: %w", addr, err)
	}

	return ln, nil
}
