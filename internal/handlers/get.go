package handlers

import (
	"errors"
	"io"
	"os"

	"github.com/eurozulu/httpfileserver/internal/lockpool"
	"github.com/eurozulu/httpfileserver/internal/wire"
)

// streamChunk is the maximum number of file bytes copied to the socket per
// write.
const streamChunk = 2048

// GET opens uri read-only under a reader admission of lock, streams its
// contents to w, and reports the status to respond with. On success it has
// already written the 200 response (header and body) itself; the caller
// must not write anything further for a 200. Any other returned status has
// not been written and is the caller's responsibility.
func GET(w io.Writer, root *Root, uri string, lock *lockpool.RWLock) int {
	path, err := root.resolve(uri)
	if err != nil {
		return wire.StatusForbidden
	}

	lock.ReaderLock()
	defer lock.ReaderUnlock()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return wire.StatusNotFound
		}
		return wire.StatusInternalServerError
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return wire.StatusInternalServerError
	}
	if !info.Mode().IsRegular() {
		return wire.StatusForbidden
	}

	if err := wire.WriteGetHeader(w, info.Size()); err != nil {
		return wire.StatusInternalServerError
	}

	remaining := info.Size()
	buf := make([]byte, streamChunk)
	for remaining > 0 {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return wire.StatusOK // body already partially sent; nothing more to do
			}
			remaining -= int64(n)
		}
		if rerr != nil {
			break // EOF or read error: stop at whatever was sent
		}
	}

	return wire.StatusOK
}
