// Package handler implements the status server routes: service identity
// on /, a static liveness marker on /health, the statistics snapshot on
// /stats, and a WebSocket snapshot stream on /stats/live.
package handler
