// README: API server; wraps the router in an http.Server with timeouts.
package http

import (
	"net/http"
	"time"
)

func NewServer(addr string, deps RouterDeps) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
