package main

import (
	"net/http"
	"time"
)

func setupServer(cfg *Config, services *Services) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           services.Handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
