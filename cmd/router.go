package main

import (
	"net/http"

	"github.com/randomplaygames97-coder/helperbot-pinger/internal/handler"
)

func setupRouter(statusHandler *handler.StatusHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", statusHandler.Root)
	mux.HandleFunc("/health", statusHandler.Health)
	mux.HandleFunc("/stats", statusHandler.Stats)
	mux.HandleFunc("/stats/live", statusHandler.Live)

	return mux
}
