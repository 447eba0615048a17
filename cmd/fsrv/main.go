// Command fsrv is a multi-threaded, single-directory HTTP file server. It
// serves GET and PUT over a restricted HTTP/1.1 subset, using a fixed pool
// of worker goroutines and a per-URI concurrency coordinator so that
// concurrent requests for different files never block on each other.
package main

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/calvinalkan/fsrv/internal/audit"
	"github.com/calvinalkan/fsrv/internal/config"
	"github.com/calvinalkan/fsrv/internal/fsstore"
	"github.com/calvinalkan/fsrv/internal/listener"
	"github.com/calvinalkan/fsrv/internal/queue"
	"github.com/calvinalkan/fsrv/internal/restable"
	"github.com/calvinalkan/fsrv/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run wires the listener, the bounded queue, the resource lock table, and
// the worker pool together and blocks until the listener is closed or
// fails. It returns the process exit code, following the teacher's
// idiom (cmd/tk/main.go) of keeping os.Exit out of the testable path.
func run(args []string, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(stderr, "fsrv: %v\n", err)
		return 1
	}

	ln, err := listener.Listen(fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		fmt.Fprintf(stderr, "fsrv: %v\n", err)
		return 1
	}
	defer ln.Close()

	store := fsstore.NewReal(cfg.Root)
	sink := audit.NewSink(stderr)

	q := queue.NewBounded[net.Conn](cfg.Threads)
	table := restable.New(cfg.Threads)

	for range cfg.Threads {
		w := &server.Worker{Queue: q, Table: table, FS: store, Sink: sink}
		go w.Run()
	}

	loop := &server.AcceptLoop{Listener: ln, Queue: q}

	if err := loop.Run(); err != nil {
		fmt.Fprintf(stderr, "fsrv: %v\n", err)
		return 1
	}

	return 0
}
