package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "test-secret-key-that-is-at-least-32-chars"

// ============================================
// Load Tests
// ============================================

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StoreMemory, cfg.CartStore)
	assert.Equal(t, SyncLocal, cfg.SyncBackend)
	assert.Equal(t, PromoFile, cfg.PromoSource)
	assert.Equal(t, 2*time.Second, cfg.CheckoutDelay)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CART_STORE", "Redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CHECKOUT_DELAY", "500ms")
	t.Setenv("CART_TTL", "3600")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, StoreRedis, cfg.CartStore)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 500*time.Millisecond, cfg.CheckoutDelay)
	assert.Equal(t, time.Hour, cfg.CartTTL)
	assert.Equal(t, 2525, cfg.SMTPPort)
}

func TestLoad_InvalidNumbersKeepDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SMTP_PORT", "smtp")
	t.Setenv("CHECKOUT_DELAY", "soon")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 1025, cfg.SMTPPort)
	assert.Equal(t, 2*time.Second, cfg.CheckoutDelay)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":7070"
sync_backend: kafka
checkout_delay: 5s
kafka_brokers: [broker-a:9092]
catalog_file: /etc/storefront/catalog.yaml
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":6060")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.HTTPAddr)
	assert.Equal(t, SyncKafka, cfg.SyncBackend)
	assert.Equal(t, 5*time.Second, cfg.CheckoutDelay)
	assert.Equal(t, []string{"broker-a:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "/etc/storefront/catalog.yaml", cfg.CatalogFile)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PROMO_SOURCE=postgres\nBOLT_PATH=/tmp/carts.db\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("PROMO_SOURCE")
		os.Unsetenv("BOLT_PATH")
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, PromoPostgres, cfg.PromoSource)
	assert.Equal(t, "/tmp/carts.db", cfg.BoltPath)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "does-not-exist.yaml")

	_, err := Load()

	assert.Error(t, err)
}

// ============================================
// Validate Tests
// ============================================

func TestConfig_Validate(t *testing.T) {
	valid := Defaults()
	valid.JWTSecret = validSecret

	tests := []struct {
		name   string
		mutate func(c *Config)
		errIs  error
	}{
		{"valid", func(c *Config) {}, nil},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, ErrSecretTooShort},
		{"unknown store", func(c *Config) { c.CartStore = "mongo" }, ErrUnknownBackend},
		{"unknown sync", func(c *Config) { c.SyncBackend = "nats" }, ErrUnknownBackend},
		{"unknown promo source", func(c *Config) { c.PromoSource = "api" }, ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errIs == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.errIs)
		})
	}
}

func TestConfig_Validate_SessionCacheSize(t *testing.T) {
	cfg := Defaults()
	cfg.JWTSecret = validSecret
	cfg.SessionCacheSize = 0

	assert.Error(t, cfg.Validate())
}

func TestConfig_SessionIdleWindow(t *testing.T) {
	tests := []struct {
		name     string
		idle     time.Duration
		cartTTL  time.Duration
		expected time.Duration
	}{
		{"idle shorter than cart ttl", 30 * time.Minute, 7 * 24 * time.Hour, 30 * time.Minute},
		{"cart ttl caps idle", 30 * time.Minute, 10 * time.Minute, 10 * time.Minute},
		{"no idle uses cart ttl", 0, time.Hour, time.Hour},
		{"no cart ttl keeps idle", 30 * time.Minute, 0, 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.SessionIdle = tt.idle
			cfg.CartTTL = tt.cartTTL
			assert.Equal(t, tt.expected, cfg.SessionIdleWindow())
		})
	}
}

func TestLoad_SessionCacheSettings(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SESSION_CACHE_SIZE", "500")
	t.Setenv("SESSION_IDLE", "5m")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 500, cfg.SessionCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdle)
}

func TestConfig_Location(t *testing.T) {
	cfg := Defaults()
	cfg.PromoLocation = "UTC"

	loc, err := cfg.Location()

	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}
