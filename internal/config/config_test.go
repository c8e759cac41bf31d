package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.c0redev.pqmsg/internal/proto"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "unix", cfg.Network)
	assert.Equal(t, "pqexec.sock", cfg.Addr)
	assert.Equal(t, proto.MaxPayloadSize, cfg.MaxPayload)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, Validate(cfg))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pqexec.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
network = "quic"
addr = "127.0.0.1:7443"
journal = "/var/lib/pqexec/journal.db"
max_payload = 65536
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "quic", cfg.Network)
	assert.Equal(t, "127.0.0.1:7443", cfg.Addr)
	assert.Equal(t, "/var/lib/pqexec/journal.db", cfg.Journal)
	assert.Equal(t, 65536, cfg.MaxPayload)
	assert.Equal(t, "info", cfg.LogLevel, "unset keys keep defaults")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvNetwork, "tcp")
	t.Setenv(EnvAddr, "127.0.0.1:9000")
	t.Setenv(EnvMaxPayload, "1024")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvStatusAddr, "127.0.0.1:9100")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tcp", cfg.Network)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 1024, cfg.MaxPayload)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9100", cfg.StatusAddr)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("network = "), 0600))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv(EnvMaxPayload, "lots")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"network":      func(c *Config) { c.Network = "sctp" },
		"addr":         func(c *Config) { c.Addr = " " },
		"payload zero": func(c *Config) { c.MaxPayload = 0 },
		"payload huge": func(c *Config) { c.MaxPayload = proto.MaxPayloadSize + 1 },
		"tls half":     func(c *Config) { c.TLSCert = "cert.pem" },
		"status hash":  func(c *Config) { c.StatusTokenHash = "plaintext" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
