// Command httpserver runs a concurrent HTTP/1.1 file server: a thread-pool
// dispatcher in front of a per-URI reader/writer lock registry, serving the
// current directory as the origin for GET and PUT.
//
//	httpserver [-t worker_count] <port>
package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"

	"github.com/eurozulu/httpfileserver/server"
)

const usage = "Usage: ./httpserver [-t threads] <port>\n"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	workers := 4
	var rest []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h":
			fmt.Fprint(os.Stdout, usage)
			return 0

		case arg == "-t":
			i++
			if i >= len(args) {
				fmt.Fprint(os.Stdout, usage)
				return 1
			}
			n, err := strconv.Atoi(args[i])
			if err != nil || n <= 0 {
				fmt.Fprint(os.Stdout,
					"Error: Invalid value for thread count. Please provide a non-negative number.\n")
				return 1
			}
			workers = n

		case len(arg) > 1 && arg[0] == '-':
			fmt.Fprintf(os.Stdout, "Error: Unknown option character '%c'\n%s", arg[1], usage)
			return 1

		default:
			rest = append(rest, arg)
		}
	}

	if len(rest) == 0 {
		fmt.Fprint(os.Stdout, usage)
		return 1
	}
	port, err := strconv.Atoi(rest[0])
	if err != nil {
		fmt.Fprint(os.Stdout, usage)
		return 1
	}

	logger := log.Default()

	srv, err := server.New(server.Config{
		Dir:         ".",
		WorkerCount: workers,
		Logger:      logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stdout, "Error: %v\n", err)
		return 1
	}

	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		fmt.Fprintf(os.Stdout, "Failed to initialize listener socket: Port %d did not respond", port)
		return 1
	}

	logger.Println("==========Starting server event loop==========")
	logger.Printf("creating %d worker threads", workers)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(l) }()

	select {
	case <-sig:
		logger.Println("shutting down...")
		if err := srv.Shutdown(l); err != nil {
			logger.Printf("shutdown error: %v", err)
		}
		return 0
	case err := <-done:
		if err != nil {
			logger.Printf("server error: %v", err)
			return 1
		}
		return 0
	}
}
