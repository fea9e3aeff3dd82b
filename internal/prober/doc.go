// Package prober implements the keepalive probe loop. Each cycle walks an
// ordered endpoint fallback list and succeeds on the first 200 response.
// The loop adapts its pacing: once three consecutive cycles fail fully,
// the sleep interval is halved until the next success.
package prober
