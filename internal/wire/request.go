package wire

import (
	"regexp"
	"strconv"
)

// requestLineRe matches "<METHOD> /<uri> <VERSION>" with the exact
// character classes the original C server's regex enforced.
var requestLineRe = regexp.MustCompile(`^([A-Z]{1,8}) +(/[A-Za-z0-9._]{1,63}) +(HTTP/[0-9]\.[0-9])$`)

// headerLineRe matches a "key: value" header line. key is an HTTP token;
// value is any printable run up to the line terminator (already stripped by
// LineReader).
var headerLineRe = regexp.MustCompile(`^([!#$%&'*+.^_` + "`" + `|~0-9A-Za-z-]+): *(.*)$`)

// nonNegativeIntRe matches the decimal integers Request-Id and
// Content-Length are allowed to carry.
var nonNegativeIntRe = regexp.MustCompile(`^[0-9]+$`)

// ParsedRequest is the fully validated request the state machine produces.
// It is built on the worker's stack for the lifetime of one request and
// discarded once the response is sent.
type ParsedRequest struct {
	Method        string // "GET" or "PUT"
	URI           string // path with the leading '/' stripped
	Version       string
	RequestID     int64
	ContentLength int64 // only meaningful when Method == "PUT"
}

// Parse drives the request state machine against lr: request line,
// method/version check, Request-Id header, Content-Length header (PUT
// only), then drains any remaining headers up to the blank line. On any
// rule violation it returns a *StatusError carrying the wire status to
// respond with; ParsedRequest is nil in that case.
func Parse(lr *LineReader) (*ParsedRequest, error) {
	line, err := lr.ReadLine(MaxRequestLineLen)
	if err != nil {
		return nil, err
	}

	m := requestLineRe.FindStringSubmatch(line)
	if m == nil {
		return nil, NewStatusError(StatusBadRequest)
	}
	method, rawURI, version := m[1], m[2], m[3]

	var status int
	switch method {
	case "GET", "PUT":
	default:
		status = StatusNotImplemented
	}
	// The version check runs unconditionally after the method check, so a
	// request that is both an unknown method and the wrong version reports
	// 505 — this matches the original server's sequential, non-exclusive
	// assignment of status in the same code path.
	if version != "HTTP/1.1" {
		status = StatusVersionNotSupported
	}
	if status != 0 {
		return nil, NewStatusError(status)
	}

	req := &ParsedRequest{
		Method:  method,
		URI:     rawURI[1:], // strip leading '/'
		Version: version,
	}

	requestID, err := readIntHeader(lr, "Request-Id")
	if err != nil {
		return nil, err
	}
	req.RequestID = requestID

	if method == "PUT" {
		contentLength, err := readIntHeader(lr, "Content-Length")
		if err != nil {
			return nil, err
		}
		req.ContentLength = contentLength
	}

	if err := lr.DrainHeaders(); err != nil {
		return nil, err
	}

	return req, nil
}

// readIntHeader reads the next header line, requires its key to equal want
// (case-sensitive) and its value to be a non-negative decimal integer.
func readIntHeader(lr *LineReader, want string) (int64, error) {
	line, err := lr.ReadLine(MaxHeaderLineLen)
	if err != nil {
		return 0, err
	}
	m := headerLineRe.FindStringSubmatch(line)
	if m == nil || m[1] != want || !nonNegativeIntRe.MatchString(m[2]) {
		return 0, NewStatusError(StatusBadRequest)
	}
	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, NewStatusError(StatusBadRequest)
	}
	return n, nil
}
