// Package server wires the bounded queue, the resource lock table, the
// protocol parser, and the request handler into the worker pool and accept
// loop described by SPEC_FULL.md §2 and §4.4/§4.6.
package server

import (
	"bufio"
	"fmt"
	"net"

	"github.com/calvinalkan/fsrv/internal/audit"
	"github.com/calvinalkan/fsrv/internal/fsstore"
	"github.com/calvinalkan/fsrv/internal/handler"
	"github.com/calvinalkan/fsrv/internal/protocol"
	"github.com/calvinalkan/fsrv/internal/queue"
	"github.com/calvinalkan/fsrv/internal/restable"
)

// Worker pops connections from a shared queue and drives each one through
// parse, classify, acquire, handle, audit, release, close - the state
// machine in SPEC_FULL.md §4.4. Any number of Workers may share one Queue,
// Table, FS, and Sink.
type Worker struct {
	Queue *queue.Bounded[net.Conn]
	Table *restable.Table
	FS    fsstore.FS
	Sink  *audit.Sink
}

// Run pops connections forever, processing one at a time, and never
// returns; callers run it in its own goroutine per worker.
func (w *Worker) Run() {
	for {
		conn := w.Queue.Pop()
		w.serveOne(conn)
	}
}

// serveOne implements the per-connection state machine. Every exit path
// closes conn and, if a lock guard was acquired, releases it - guaranteed
// by running the whole body under defer/recover so a handler panic can
// never leak a held lock or an open socket.
func (w *Worker) serveOne(conn net.Conn) {
	defer conn.Close()

	defer func() {
		if r := recover(); r != nil {
			w.Sink.Record("", "", 500, "0")
		}
	}()

	reader := bufio.NewReader(conn)

	req, err := protocol.Parse(reader)
	if err != nil {
		_ = handler.WriteStatus(conn, 400, nil)
		w.Sink.Record("", "", 400, "0")

		return
	}

	if req.Method == protocol.Unsupported {
		_ = handler.WriteStatus(conn, 501, nil)
		w.Sink.Record(req.RawMethod, req.URI, 501, req.RequestID)

		return
	}

	mode := restable.Shared
	if req.Method == protocol.Put {
		mode = restable.Exclusive
	}

	guard := w.Table.Acquire(req.URI, mode)
	defer guard.Release()

	// serve's error return only ever signals a short write or I/O failure
	// partway through an already-committed response; the status code it
	// returns alongside the error is still the one that was sent, so the
	// audit record uses it unconditionally. The deferred conn.Close above
	// handles cleanup; there is no response left to amend.
	status, _ := w.serve(conn, req)

	w.Sink.Record(req.Method.String(), req.URI, status, req.RequestID)
}

func (w *Worker) serve(conn net.Conn, req *protocol.Request) (status int, err error) {
	switch req.Method {
	case protocol.Get:
		return handler.ServeGET(conn, w.FS, req.URI)
	case protocol.Put:
		existed, existsErr := w.FS.Exists(req.URI)
		if existsErr != nil {
			existed = false
		}

		return handler.ServePUT(conn, w.FS, req.URI, req.Body, existed)
	default:
		return 0, fmt.Errorf("serve: unreachable method %v", req.Method)
	}
}
