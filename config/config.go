package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Bank       BankConfig       `mapstructure:"bank"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Federation FederationConfig `mapstructure:"federation"`
	Consent    ConsentConfig    `mapstructure:"consent"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Capital    CapitalConfig    `mapstructure:"capital"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Seed       SeedConfig       `mapstructure:"seed"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// StorageConfig selects the persistence backend. The memory driver also
// replaces redis with in-process caches.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// BankConfig identifies this bank inside the federation.
type BankConfig struct {
	Code           string `mapstructure:"code"`
	Name           string `mapstructure:"name"`
	PublicURL      string `mapstructure:"public_url"`
	SigningKeyPath string `mapstructure:"signing_key_path"`
	KeyID          string `mapstructure:"key_id"`
}

// SigningKeyID returns the configured kid or the "{CODE}-2025" default.
func (b BankConfig) SigningKeyID() string {
	if b.KeyID != "" {
		return b.KeyID
	}
	return strings.ToUpper(b.Code) + "-2025"
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	Expiry          time.Duration `mapstructure:"expiry"`
	BankTokenExpiry time.Duration `mapstructure:"bank_token_expiry"`
}

// PeerConfig describes one federated bank. Exactly one of JWKSURL and
// JWKSFile is expected; when both are empty the key set is fetched from
// APIURL + /.well-known/jwks.json.
type PeerConfig struct {
	Code     string `mapstructure:"code"`
	Name     string `mapstructure:"name"`
	APIURL   string `mapstructure:"api_url"`
	JWKSURL  string `mapstructure:"jwks_url"`
	JWKSFile string `mapstructure:"jwks_file"`
}

// KeySetURL resolves where the peer publishes its keys.
func (p PeerConfig) KeySetURL() string {
	if p.JWKSURL != "" || p.JWKSFile != "" {
		return p.JWKSURL
	}
	return strings.TrimRight(p.APIURL, "/") + "/.well-known/jwks.json"
}

type FederationConfig struct {
	Peers              []PeerConfig  `mapstructure:"peers"`
	TrustTTL           time.Duration `mapstructure:"trust_ttl"`
	MinRefreshInterval time.Duration `mapstructure:"min_refresh_interval"`
	RemoteTimeout      time.Duration `mapstructure:"remote_timeout"`
	RetryDelay         time.Duration `mapstructure:"retry_delay"`
}

// SettlementWindow is the longest a live interbank delivery can run: two
// attempts bounded by the remote timeout plus the pause between them.
func (f FederationConfig) SettlementWindow() time.Duration {
	return 2*f.RemoteTimeout + f.RetryDelay
}

type ConsentConfig struct {
	Horizon     time.Duration `mapstructure:"horizon"`
	AutoApprove bool          `mapstructure:"auto_approve"`
}

type AggregatorConfig struct {
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	PeerTimeout    time.Duration `mapstructure:"peer_timeout"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

type CapitalConfig struct {
	InitialBalance string `mapstructure:"initial_balance"`
}

// Initial parses the configured opening capital per peer.
func (c CapitalConfig) Initial() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.InitialBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("capital.initial_balance: %w", err)
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("capital.initial_balance must not be negative")
	}
	return d, nil
}

type ReconcilerConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Interval   time.Duration `mapstructure:"interval"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AuthConfig tunes client password hashing.
type AuthConfig struct {
	Argon2 Argon2Config `mapstructure:"argon2"`
}

type Argon2Config struct {
	Time    uint32 `mapstructure:"time"`
	Memory  uint32 `mapstructure:"memory"` // KiB
	Threads uint8  `mapstructure:"threads"`
}

// SeedConfig lists clients and accounts created at startup when absent.
// Client onboarding is not offered over HTTP.
type SeedConfig struct {
	Clients []SeedClient `mapstructure:"clients"`
}

type SeedClient struct {
	ID       string        `mapstructure:"id"`
	Name     string        `mapstructure:"name"`
	Password string        `mapstructure:"password"`
	Accounts []SeedAccount `mapstructure:"accounts"`
}

type SeedAccount struct {
	Number   string `mapstructure:"number"`
	Name     string `mapstructure:"name"`
	Balance  string `mapstructure:"balance"`
	Currency string `mapstructure:"currency"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Bank.Code == "" {
		return errors.New("bank.code is required")
	}
	if strings.EqualFold(c.Bank.Code, "self") {
		return errors.New(`bank.code "self" is reserved`)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	seen := make(map[string]bool, len(c.Federation.Peers))
	for _, p := range c.Federation.Peers {
		if p.Code == "" || p.APIURL == "" {
			return errors.New("federation.peers entries need code and api_url")
		}
		if p.Code == c.Bank.Code {
			return fmt.Errorf("peer %q has this bank's own code", p.Code)
		}
		if seen[p.Code] {
			return fmt.Errorf("peer %q listed twice", p.Code)
		}
		seen[p.Code] = true
	}
	if _, err := c.Capital.Initial(); err != nil {
		return err
	}
	if c.Reconciler.Enabled && c.Reconciler.StaleAfter <= c.Federation.SettlementWindow() {
		return fmt.Errorf("reconciler.stale_after %s must exceed the settlement window %s (2*federation.remote_timeout + federation.retry_delay)",
			c.Reconciler.StaleAfter, c.Federation.SettlementWindow())
	}
	for _, sc := range c.Seed.Clients {
		if sc.ID == "" {
			return errors.New("seed.clients entries need an id")
		}
		for _, a := range sc.Accounts {
			if a.Number == "" {
				return fmt.Errorf("seed client %q has an account without number", sc.ID)
			}
			if _, err := decimal.NewFromString(a.Balance); err != nil {
				return fmt.Errorf("seed account %q balance: %w", a.Number, err)
			}
		}
	}
	return nil
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: OBK_.
// Nested keys use underscore: OBK_BANK_CODE, OBK_JWT_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "openbanking")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("bank.code", "")
	v.SetDefault("bank.name", "")
	v.SetDefault("bank.public_url", "")
	v.SetDefault("bank.signing_key_path", "")
	v.SetDefault("bank.key_id", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.bank_token_expiry", "1h")
	v.SetDefault("federation.trust_ttl", "1h")
	v.SetDefault("federation.min_refresh_interval", "30s")
	v.SetDefault("federation.remote_timeout", "5s")
	v.SetDefault("federation.retry_delay", "500ms")
	v.SetDefault("consent.horizon", "2160h")
	v.SetDefault("consent.auto_approve", false)
	v.SetDefault("aggregator.cache_ttl", "5m")
	v.SetDefault("aggregator.peer_timeout", "3s")
	v.SetDefault("aggregator.max_concurrency", 8)
	v.SetDefault("capital.initial_balance", "3500000.00")
	v.SetDefault("reconciler.enabled", true)
	v.SetDefault("reconciler.interval", "1m")
	v.SetDefault("reconciler.stale_after", "2m")
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("auth.argon2.time", 1)
	v.SetDefault("auth.argon2.memory", 64*1024)
	v.SetDefault("auth.argon2.threads", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: OBK_BANK_CODE -> bank.code
	v.SetEnvPrefix("OBK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
