package handlers

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/eurozulu/httpfileserver/internal/lockpool"
	"github.com/eurozulu/httpfileserver/internal/wire"
)

// readChunk is the maximum number of body bytes read from the socket and
// written to the file per iteration.
const readChunk = 4096

// fileMode is the mode new files are created with, subject to umask.
const fileMode = 0666

// PUT acquires a writer admission of lock, opens (or creates) uri, copies
// exactly contentLength bytes from r into it, and writes the 200/201
// response itself on success. The body is read from r, which may already
// hold bytes buffered while the headers were read; a short read (the client closing
// early) truncates the stored body at what was received rather than
// failing the request — this is the spec's defined behavior, not an
// oversight.
func PUT(r *bufio.Reader, w io.Writer, root *Root, uri string, contentLength int64, lock *lockpool.RWLock) int {
	path, err := root.resolve(uri)
	if err != nil {
		return wire.StatusForbidden
	}

	lock.WriterLock()
	defer lock.WriterUnlock()

	created, status := openForWrite(path)
	if status != 0 {
		return status
	}
	f, err := os.OpenFile(path, writeFlags(created), fileMode)
	if err != nil {
		return wire.StatusInternalServerError
	}
	defer f.Close()

	if err := copyBody(r, f, contentLength); err != nil {
		return wire.StatusInternalServerError
	}

	if created {
		if err := wire.WritePutCreated(w); err != nil {
			return wire.StatusCreated
		}
		return wire.StatusCreated
	}
	if err := wire.WritePutOK(w); err != nil {
		return wire.StatusOK
	}
	return wire.StatusOK
}

// openForWrite decides whether path already exists as something other than
// a directory (overwrite, status 0/created=false), does not exist (create,
// created=true), or is some other condition the server reports directly
// (status nonzero, in which case the caller must not proceed to open it).
func openForWrite(path string) (created bool, status int) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return false, wire.StatusForbidden
		}
		return false, 0
	case errors.Is(err, os.ErrNotExist):
		return true, 0
	default:
		return false, wire.StatusInternalServerError
	}
}

func writeFlags(created bool) int {
	flags := os.O_WRONLY | os.O_TRUNC
	if created {
		flags |= os.O_CREATE
	}
	return flags
}

// copyBody reads exactly n bytes from r in chunks of up to readChunk and
// writes them to f, stopping early (without error) if r runs dry before n
// bytes have been read.
func copyBody(r *bufio.Reader, f *os.File, n int64) error {
	var written int64
	buf := make([]byte, readChunk)
	for written < n {
		want := int64(len(buf))
		if remain := n - written; remain < want {
			want = remain
		}
		read, err := r.Read(buf[:want])
		if read > 0 {
			if _, werr := f.Write(buf[:read]); werr != nil {
				return werr
			}
			written += int64(read)
		}
		if err != nil {
			return nil // short read: truncate the body at what was received
		}
	}
	return nil
}
