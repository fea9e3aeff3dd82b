// Package httpserver wraps the standard http.Server with listen address
// validation and graceful shutdown for the status server.
package httpserver
