package main

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"katamini/internal/relay"
)

// Relay server defaults. Every value can be overridden from the
// environment or a .env file next to the binary.
const (
	// Server
	ServerAddr    = ":8080"
	StaticDir     = "./client"
	WebSocketPath = "/ws"

	// Relay limits
	MaxPeersPerRoom = 16
	MaxConnections  = 500
	IPCooldownSec   = 2
	MaxFrameBytes   = 64 << 10 // a player-state frame is well under 1KB
)

// Config is the resolved server configuration.
type Config struct {
	Addr      string
	WSPath    string
	StaticDir string
	Relay     relay.Config
}

// loadConfig reads .env if present, then applies KATAMINI_* overrides to
// the defaults.
func loadConfig() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: .env: %v", err)
	}
	return Config{
		Addr:      envString("KATAMINI_ADDR", ServerAddr),
		WSPath:    envString("KATAMINI_WS_PATH", WebSocketPath),
		StaticDir: envString("KATAMINI_STATIC_DIR", StaticDir),
		Relay: relay.Config{
			MaxPeers:       envInt("KATAMINI_MAX_PEERS", MaxPeersPerRoom),
			MaxConnections: envInt("KATAMINI_MAX_CONNECTIONS", MaxConnections),
			IPCooldown:     time.Duration(envInt("KATAMINI_IP_COOLDOWN_SEC", IPCooldownSec)) * time.Second,
			ReadLimit:      int64(envInt("KATAMINI_MAX_FRAME_BYTES", MaxFrameBytes)),
		},
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("config: %s=%q is not a non-negative integer, using %d", key, v, def)
		return def
	}
	return n
}
