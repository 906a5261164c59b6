package main

import (
	"encoding/json"
	"log"
	"net/http"

	"katamini/internal/relay"
)

// stats is the body of the /stats endpoint.
type stats struct {
	Connections int `json:"connections"`
}

func newMux(cfg Config, hub *relay.Hub) *http.ServeMux {
	mux := http.NewServeMux()

	// Peers join rooms over websocket; the relay only routes frames
	mux.Handle(cfg.WSPath, hub)

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats{Connections: hub.Connections()})
	})

	// Serve static client files (level tables, models, music)
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	return mux
}

func main() {
	cfg := loadConfig()
	hub := relay.NewHub(cfg.Relay)

	log.Printf("relay listening on %s (ws %s, %d peers per room, static %s)",
		cfg.Addr, cfg.WSPath, cfg.Relay.MaxPeers, cfg.StaticDir)
	if err := http.ListenAndServe(cfg.Addr, newMux(cfg, hub)); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
