package main

import (
	"fmt"
	"log"
	"net/http"

	handler "goalspace-backend/api"
	"goalspace-backend/pkg/config"
)

// Long-running entry point for local development and container
// deployments. The serverless path goes through api.Handler directly.
func main() {
	cfg := config.GetCached()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("listening on %s (%s)", addr, cfg.Environment)
	if err := http.ListenAndServe(addr, http.HandlerFunc(handler.Handler)); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
