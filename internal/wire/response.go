package wire

import (
	"fmt"
	"io"
)

// WriteFixed writes the complete status line, Content-Length header, blank
// line and literal body for one of the fixed-body statuses (everything
// except the two PUT success bodies and the GET 200, which vary or are
// streamed). It is an error to call it with any other code.
func WriteFixed(w io.Writer, code int) error {
	r, ok := fixedResponses[code]
	if !ok {
		return fmt.Errorf("wire: %d has no fixed response", code)
	}
	_, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\nContent-Length: %d\r\n\r\n%s",
		code, r.reason, len(r.body), r.body)
	return err
}

// WritePutOK writes the fixed 200 response body used when PUT overwrites an
// existing file.
func WritePutOK(w io.Writer) error {
	const body = "OK\n"
	_, err := fmt.Fprintf(w, "HTTP/1.1 200 OK\r\nContent-Length: %d\r\n\r\n%s", len(body), body)
	return err
}

// WritePutCreated writes the fixed 201 response used when PUT creates a new
// file.
func WritePutCreated(w io.Writer) error {
	const body = "Created\n"
	_, err := fmt.Fprintf(w, "HTTP/1.1 201 Created\r\nContent-Length: %d\r\n\r\n%s", len(body), body)
	return err
}

// WriteGetHeader writes the 200 status line and Content-Length for a GET
// response; the caller streams the file body separately.
func WriteGetHeader(w io.Writer, size int64) error {
	_, err := fmt.Fprintf(w, "HTTP/1.1 200 OK\r\nContent-Length: %d\r\n\r\n", size)
	return err
}
