package main

import (
	"log"
	"net/http"
	"os"

	"github.com/advayc/visits/api"
)

// Dev server to exercise the serverless handler locally. It defaults to
// the in-memory store so no Azure resources are needed.
// Usage:
//
//	STORE_BACKEND=memory ENVIRONMENT=development go run ./dev
//
// Then in another terminal run curl commands:
//
//	curl "http://localhost:${PORT:-8080}/visitor"
//	curl -X POST "http://localhost:${PORT:-8080}/visitor"
//	curl "http://localhost:${PORT:-8080}/health"
func main() {
	if os.Getenv("STORE_BACKEND") == "" {
		os.Setenv("STORE_BACKEND", "memory")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", api.Handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("dev visitor counter listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
