// Package server bundles the listener→queue→worker pipeline into one owned
// context: a lock registry, a job queue, and a fixed worker pool built once
// at startup and threaded into every worker, rather than relying on
// file-scope globals for the lock registry and its guarding mutex.
package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"

	"github.com/eurozulu/httpfileserver/internal/audit"
	"github.com/eurozulu/httpfileserver/internal/handlers"
	"github.com/eurozulu/httpfileserver/internal/lockpool"
	"github.com/eurozulu/httpfileserver/internal/queue"
	"github.com/eurozulu/httpfileserver/internal/wire"
)

// Config configures a Server. WorkerCount must be > 0.
type Config struct {
	// Dir is the flat directory GET/PUT resolve URIs against.
	Dir string
	// WorkerCount is the number of worker goroutines, and the capacity of
	// the job queue between the accept loop and the pool.
	WorkerCount int
	// AuditOut receives one audit line per request whose status is 200,
	// 201, or 404. Defaults to os.Stderr.
	AuditOut io.Writer
	// Logger receives process narration (accept errors, startup/shutdown).
	// Defaults to log.Default().
	Logger *log.Logger
}

// Server is a concurrent file server: one accept loop feeding a bounded job
// queue, drained by a fixed pool of worker goroutines that each run the
// per-connection request state machine to completion.
type Server struct {
	root        *handlers.Root
	workerCount int
	queue       *queue.Queue[net.Conn]
	registry    *lockpool.Registry
	auditOut    io.Writer
	logger      *log.Logger

	wg sync.WaitGroup
}

// New constructs a Server from cfg. It does not start accepting
// connections; call Serve with a listener to do that.
func New(cfg Config) (*Server, error) {
	if cfg.WorkerCount <= 0 {
		return nil, fmt.Errorf("server: worker count must be > 0, got %d", cfg.WorkerCount)
	}
	auditOut := cfg.AuditOut
	if auditOut == nil {
		auditOut = os.Stderr
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		root:        handlers.NewRoot(cfg.Dir),
		workerCount: cfg.WorkerCount,
		queue:       queue.New[net.Conn](cfg.WorkerCount),
		registry:    lockpool.NewRegistry(lockpool.NWay, 1),
		auditOut:    auditOut,
		logger:      logger,
	}, nil
}

// Serve runs the accept loop against l and blocks until l.Accept returns an
// error that indicates the listener itself is gone (e.g. after Close). A
// transient accept failure is logged and the loop continues, mirroring the
// original server's posture of never dying on a bad accept.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Printf("starting %d worker threads", s.workerCount)
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.runWorker()
	}

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Printf("failed to accept socket: %v", err)
			continue
		}
		s.queue.Push(conn)
	}
}

// Shutdown stops accepting new work by closing l, queues one stop marker per
// worker, and waits for every worker to finish the connections queued ahead
// of its marker and exit. It is process teardown, not a per-request timeout;
// no per-request deadline is imposed.
func (s *Server) Shutdown(l net.Listener) error {
	err := l.Close()
	for i := 0; i < s.workerCount; i++ {
		s.queue.Push(nil)
	}
	s.wg.Wait()
	return err
}

func (s *Server) runWorker() {
	defer s.wg.Done()
	for {
		conn := s.queue.Pop()
		if conn == nil {
			return // stop marker queued by Shutdown
		}
		s.serveConn(conn)
	}
}

// serveConn runs the request state machine for exactly one request on conn,
// then closes it: no pipelining, no persistent connections.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	lr := wire.NewLineReader(conn)
	req, err := wire.Parse(lr)
	if err != nil {
		s.writeError(conn, err)
		return
	}

	lock := s.registry.FindOrCreate(req.URI)

	var status int
	switch req.Method {
	case "GET":
		status = handlers.GET(conn, s.root, req.URI, lock)
	case "PUT":
		status = handlers.PUT(lr.Reader(), conn, s.root, req.URI, req.ContentLength, lock)
	}

	if status != wire.StatusOK && status != wire.StatusCreated {
		if werr := wire.WriteFixed(conn, status); werr != nil {
			s.logger.Printf("failed writing %d response for %s /%s: %v", status, req.Method, req.URI, werr)
		}
	}
	audit.Record(s.auditOut, req.Method, req.URI, status, req.RequestID)
}

// writeError responds to a parser-stage failure. None of these statuses
// (400, 501, 505) are ever audited.
func (s *Server) writeError(conn net.Conn, err error) {
	se, ok := err.(*wire.StatusError)
	if !ok {
		se = wire.NewStatusError(wire.StatusInternalServerError)
	}
	if werr := wire.WriteFixed(conn, se.Code); werr != nil {
		s.logger.Printf("failed writing %d response: %v", se.Code, werr)
	}
}
