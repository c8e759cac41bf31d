// Package config loads the executor configuration: TOML file, then PQMSG_* env overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"dev.c0redev.pqmsg/internal/proto"
)

const (
	EnvNetwork    = "PQMSG_NETWORK"
	EnvAddr       = "PQMSG_ADDR"
	EnvJournal    = "PQMSG_JOURNAL"
	EnvMaxPayload = "PQMSG_MAX_PAYLOAD"
	EnvLogLevel   = "PQMSG_LOG_LEVEL"
	EnvTLSCert    = "PQMSG_TLS_CERT"
	EnvTLSKey     = "PQMSG_TLS_KEY"
	EnvStatusAddr = "PQMSG_STATUS_ADDR"
	EnvStatusHash = "PQMSG_STATUS_TOKEN_HASH"
)

type Config struct {
	Network    string `toml:"network"`
	Addr       string `toml:"addr"`
	Journal    string `toml:"journal"`
	MaxPayload int    `toml:"max_payload"`
	LogLevel   string `toml:"log_level"`
	TLSCert    string `toml:"tls_cert"`
	TLSKey     string `toml:"tls_key"`

	// StatusAddr: HTTP status listener (empty = off). StatusTokenHash: bcrypt hash of
	// the bearer token for /api (empty = open).
	StatusAddr      string `toml:"status_addr"`
	StatusTokenHash string `toml:"status_token_hash"`
}

// Default: unix socket in the working dir, no journal.
func Default() Config {
	return Config{
		Network:    "unix",
		Addr:       "pqexec.sock",
		MaxPayload: proto.MaxPayloadSize,
		LogLevel:   "info",
	}
}

// Load reads path (empty = defaults only), applies env overrides and validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		EnvNetwork:    &cfg.Network,
		EnvAddr:       &cfg.Addr,
		EnvJournal:    &cfg.Journal,
		EnvLogLevel:   &cfg.LogLevel,
		EnvTLSCert:    &cfg.TLSCert,
		EnvTLSKey:     &cfg.TLSKey,
		EnvStatusAddr: &cfg.StatusAddr,
		EnvStatusHash: &cfg.StatusTokenHash,
	}
	for env, dst := range str {
		if v, ok := os.LookupEnv(env); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	if v := os.Getenv(EnvMaxPayload); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxPayload, err)
		}
		cfg.MaxPayload = n
	}
	return nil
}

// Validate checks cfg is usable.
func Validate(cfg Config) error {
	switch cfg.Network {
	case "unix", "tcp", "quic":
	default:
		return fmt.Errorf("config: unknown network %q", cfg.Network)
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("config: addr is required")
	}
	if cfg.MaxPayload <= 0 || cfg.MaxPayload > proto.MaxPayloadSize {
		return fmt.Errorf("config: max_payload must be in 1..%d", proto.MaxPayloadSize)
	}
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return fmt.Errorf("config: tls_cert and tls_key go together")
	}
	if cfg.StatusTokenHash != "" && !strings.HasPrefix(cfg.StatusTokenHash, "$2") {
		return fmt.Errorf("config: status_token_hash must be a bcrypt hash")
	}
	return nil
}
