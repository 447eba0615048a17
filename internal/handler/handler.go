// Package handler performs the filesystem I/O for GET and PUT and emits the
// HTTP response. It has no knowledge of locking or the worker pool: by the
// time [ServeGET] or [ServePUT] runs, the caller already holds the
// appropriate resource lock for the URI being served.
package handler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/calvinalkan/fsrv/internal/fsstore"
)

// Status text for every code this server emits.
var statusText = map[int]string{
	200: "OK",
	201: "Created",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	500: "Internal Server Error",
	501: "Not Implemented",
}

// WriteStatus writes a complete response: status line, Content-Length,
// blank line, and body. It is used for GET/PUT responses as well as the
// 400/501 replies the worker emits directly for malformed or unsupported
// requests.
func WriteStatus(w io.Writer, status int, body []byte) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", status, statusText[status]); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(bw, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return err
	}

	if len(body) > 0 {
		if _, err := bw.Write(body); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ServeGET reads uri from fs and streams it to w, returning the status
// code that was sent.
func ServeGET(w io.Writer, fs fsstore.FS, uri string) (status int, err error) {
	info, statErr := fs.Stat(uri)

	switch {
	case statErr != nil && os.IsNotExist(statErr):
		return writeEmpty(w, 404)
	case statErr != nil && os.IsPermission(statErr):
		return writeEmpty(w, 403)
	case statErr != nil:
		return writeEmpty(w, 500)
	case info.IsDir():
		return writeEmpty(w, 403)
	}

	f, err := fs.Open(uri)
	if err != nil {
		switch {
		case os.IsPermission(err):
			return writeEmpty(w, 403)
		case os.IsNotExist(err):
			return writeEmpty(w, 404)
		default:
			return writeEmpty(w, 500)
		}
	}
	defer f.Close()

	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "HTTP/1.1 200 OK\r\n"); err != nil {
		return 0, err
	}

	if _, err := fmt.Fprintf(bw, "Content-Length: %d\r\n\r\n", info.Size()); err != nil {
		return 0, err
	}

	if _, err := io.Copy(bw, f); err != nil {
		// Short write to client: the status line is already committed,
		// there is no response left to amend. Propagate so the caller
		// closes the connection.
		return 200, fmt.Errorf("streaming body: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return 200, fmt.Errorf("flushing body: %w", err)
	}

	return 200, nil
}

// ServePUT reads body to EOF and replaces (or creates) uri atomically with
// those bytes, returning the status code that was sent. The caller bounds
// body to the request's Content-Length.
// existed reports whether uri referred to a file before this call.
func ServePUT(w io.Writer, fs fsstore.FS, uri string, body io.Reader, existed bool) (status int, err error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return writeEmpty(w, 500)
	}

	if err := fs.WriteFileAtomic(uri, data); err != nil {
		return writeEmpty(w, classifyWriteErr(err))
	}

	if existed {
		return writeEmpty(w, 200)
	}

	return writeEmpty(w, 201)
}

func classifyWriteErr(err error) int {
	switch {
	case errors.Is(err, os.ErrPermission), errors.Is(err, syscall.EACCES):
		return 403
	case errors.Is(err, syscall.EISDIR):
		return 403
	case errors.Is(err, os.ErrNotExist), errors.Is(err, syscall.ENOENT):
		return 403
	default:
		return 500
	}
}

func writeEmpty(w io.Writer, status int) (int, error) {
	if err := WriteStatus(w, status, nil); err != nil {
		return status, err
	}

	return status, nil
}
