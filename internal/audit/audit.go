// Package audit emits the one-line-per-request audit trail, exactly as
// specified: "method,/uri,status,request_id\n" on stderr, and only for the
// subset of statuses the server considers worth recording.
package audit

import (
	"fmt"
	"io"
)

// loggable is the set of statuses that produce an audit record.
var loggable = map[int]bool{
	200: true,
	201: true,
	404: true,
}

// Record writes one audit line to w if status is 200, 201, or 404; it is a
// no-op for any other status (4xx other than 404, and all 5xx, produce no
// audit line). The format is deliberately not routed through a structured
// logger: it is a protocol artifact with an exact byte layout, not a
// human-facing log line.
func Record(w io.Writer, method, uri string, status int, requestID int64) {
	if !loggable[status] {
		return
	}
	fmt.Fprintf(w, "%s,/%s,%d,%d\n", method, uri, status, requestID)
}
