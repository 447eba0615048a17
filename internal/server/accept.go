package server

import (
	"errors"
	"net"

	"github.com/calvinalkan/fsrv/internal/queue"
)

// AcceptLoop blocks in Listener.Accept and pushes each accepted connection
// onto Queue. It applies no throttling of its own: when every worker is
// busy, Queue.Push blocks, Accept stops draining the kernel backlog, and
// TCP back-pressures the client naturally.
type AcceptLoop struct {
	Listener net.Listener
	Queue    *queue.Bounded[net.Conn]
}

// Run accepts connections until the listener is closed or Accept returns a
// non-recoverable error. Returns nil if the listener was closed
// deliberately (net.ErrClosed), otherwise the error that stopped the loop.
func (a *AcceptLoop) Run() error {
	for {
		conn, err := a.Listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		a.Queue.Push(conn)
	}
}
