// Package server wires and runs the application's transport layer.
//
// It owns the HTTP server lifecycle: startup, OS signal handling, and
// graceful shutdown.
package server
