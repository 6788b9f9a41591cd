package handlers

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eurozulu/httpfileserver/internal/lockpool"
	"github.com/eurozulu/httpfileserver/internal/wire"
	"github.com/stretchr/testify/require"
)

func newLock() *lockpool.RWLock {
	return lockpool.New(lockpool.NWay, 1)
}

func TestPutCreatesThenGetReadsBytes(t *testing.T) {
	dir := t.TempDir()
	root := NewRoot(dir)
	lock := newLock()

	var putResp bytes.Buffer
	status := PUT(bufio.NewReader(strings.NewReader("hello")), &putResp, root, "a", 5, lock)
	require.Equal(t, wire.StatusCreated, status)
	require.Equal(t, "HTTP/1.1 201 Created\r\nContent-Length: 8\r\n\r\nCreated\n", putResp.String())

	var getResp bytes.Buffer
	status = GET(&getResp, root, "a", lock)
	require.Equal(t, wire.StatusOK, status)
	require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello", getResp.String())
}

func TestPutOverwriteReturns200(t *testing.T) {
	dir := t.TempDir()
	root := NewRoot(dir)
	lock := newLock()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("hello"), 0666))

	var resp bytes.Buffer
	status := PUT(bufio.NewReader(strings.NewReader("hi")), &resp, root, "a", 2, lock)
	require.Equal(t, wire.StatusOK, status)
	require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 3\r\n\r\nOK\n", resp.String())

	contents, err := os.ReadFile(filepath.Join(dir, "a"))
	require.NoError(t, err)
	require.Equal(t, "hi", string(contents))
}

func TestGetMissingReturns404(t *testing.T) {
	dir := t.TempDir()
	root := NewRoot(dir)
	lock := newLock()

	var resp bytes.Buffer
	status := GET(&resp, root, "missing", lock)
	require.Equal(t, wire.StatusNotFound, status)
	require.Empty(t, resp.String(), "no body should be written by the handler for a non-200 status")
}

func TestGetDirectoryReturns403(t *testing.T) {
	dir := t.TempDir()
	root := NewRoot(dir)
	lock := newLock()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0777))

	status := GET(&bytes.Buffer{}, root, "sub", lock)
	require.Equal(t, wire.StatusForbidden, status)
}

func TestPutDirectoryReturns403(t *testing.T) {
	dir := t.TempDir()
	root := NewRoot(dir)
	lock := newLock()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0777))

	status := PUT(bufio.NewReader(strings.NewReader("")), &bytes.Buffer{}, root, "sub", 0, lock)
	require.Equal(t, wire.StatusForbidden, status)
}

func TestPutShortBodyTruncates(t *testing.T) {
	dir := t.TempDir()
	root := NewRoot(dir)
	lock := newLock()

	status := PUT(bufio.NewReader(strings.NewReader("ab")), &bytes.Buffer{}, root, "a", 10, lock)
	require.Equal(t, wire.StatusCreated, status)

	contents, err := os.ReadFile(filepath.Join(dir, "a"))
	require.NoError(t, err)
	require.Equal(t, "ab", string(contents))
}

func TestReadYourWritesUnderSerialization(t *testing.T) {
	dir := t.TempDir()
	root := NewRoot(dir)
	lock := newLock()

	PUT(bufio.NewReader(strings.NewReader("hello")), &bytes.Buffer{}, root, "a", 5, lock)
	PUT(bufio.NewReader(strings.NewReader("hi")), &bytes.Buffer{}, root, "a", 2, lock)

	var resp bytes.Buffer
	GET(&resp, root, "a", lock)
	require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nhi", resp.String())
}
