package main

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Config holds every runtime knob of auctiond, loaded from the environment.
type Config struct {
	// ListenNet selects the transport: plain TCP, or vsock when the engine
	// runs inside an isolated VM.
	ListenNet  string `validate:"oneof=tcp vsock"`
	ListenAddr string `validate:"required_if=ListenNet tcp"`
	VsockPort  uint32

	MaxWorkers  int           `validate:"gte=1"`
	ReadTimeout time.Duration `validate:"gt=0"`

	Owner       string        `validate:"required,uuid"`
	Mode        string        `validate:"oneof=manual temporal"`
	MinBid      string        `validate:"required"`
	MaxProducts int           `validate:"gte=1"`
	MinDuration time.Duration `validate:"gt=0"`

	// SnapshotPath, when set, is loaded on boot if present and written on
	// shutdown.
	SnapshotPath string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// LoadConfig collects configuration from the environment with defaults and
// validates it. AUCTION_OWNER has no default: the owner identity must be
// provided explicitly.
func LoadConfig() (Config, error) {
	cfg := Config{
		ListenNet:    getenv("AUCTIOND_LISTEN_NET", "tcp"),
		ListenAddr:   getenv("AUCTIOND_LISTEN_ADDR", ":7700"),
		VsockPort:    uint32(atoienv("AUCTIOND_VSOCK_PORT", 5000)),
		MaxWorkers:   atoienv("AUCTIOND_MAX_WORKERS", 16),
		ReadTimeout:  time.Duration(atoienv("AUCTIOND_READ_TIMEOUT_SECONDS", 30)) * time.Second,
		Owner:        os.Getenv("AUCTION_OWNER"),
		Mode:         getenv("AUCTION_MODE", "manual"),
		MinBid:       getenv("AUCTION_MIN_BID", "1"),
		MaxProducts:  atoienv("AUCTION_MAX_PRODUCTS", 64),
		MinDuration:  time.Duration(atoienv("AUCTION_MIN_DURATION_MINUTES", 30)) * time.Minute,
		SnapshotPath: os.Getenv("AUCTIOND_SNAPSHOT_PATH"),
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid auctiond configuration")
	}
	return cfg, nil
}
