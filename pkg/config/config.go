package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Reconcile ReconcileConfig
	Vendors   VendorsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"REMITROUTE_APP_ENV" required:"true"`
	Port         string `envconfig:"REMITROUTE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REMITROUTE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REMITROUTE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"REMITROUTE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"REMITROUTE_DB_DSN"`
	Driver string `envconfig:"REMITROUTE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"REMITROUTE_DB_HOST"`
	LegacyPort     int    `envconfig:"REMITROUTE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REMITROUTE_DB_USER"`
	LegacyPassword string `envconfig:"REMITROUTE_DB_PASSWORD"`
	LegacyName     string `envconfig:"REMITROUTE_DB_NAME"`
	LegacySSLMode  string `envconfig:"REMITROUTE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REMITROUTE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REMITROUTE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REMITROUTE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REMITROUTE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"REMITROUTE_AUTO_MIGRATE" default:"false"`
}

// RedisConfig accepts either a full URL or a bare host:port address.
type RedisConfig struct {
	URL          string        `envconfig:"REMITROUTE_REDIS_URL"`
	Address      string        `envconfig:"REMITROUTE_REDIS_ADDRESS"`
	Password     string        `envconfig:"REMITROUTE_REDIS_PASSWORD"`
	DB           int           `envconfig:"REMITROUTE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REMITROUTE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REMITROUTE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REMITROUTE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REMITROUTE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REMITROUTE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"REMITROUTE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"REMITROUTE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"REMITROUTE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// ReconcileConfig tunes the status reconciliation worker.
type ReconcileConfig struct {
	PollInterval time.Duration `envconfig:"REMITROUTE_RECONCILE_POLL_INTERVAL" default:"1m"`
	BatchSize    int           `envconfig:"REMITROUTE_RECONCILE_BATCH_SIZE" default:"25"`
	LockTTL      time.Duration `envconfig:"REMITROUTE_RECONCILE_LOCK_TTL" default:"5m"`
}

// VendorsConfig carries one registration block per remittance vendor.
// Registrations are read once at process start and stay immutable after that.
type VendorsConfig struct {
	IslamiBank IslamiBankConfig
	TransFast  TransFastConfig
}

type IslamiBankConfig struct {
	Enabled            bool          `envconfig:"REMITROUTE_ISLAMIBANK_ENABLED" default:"false"`
	Mode               string        `envconfig:"REMITROUTE_ISLAMIBANK_MODE" default:"sandbox"`
	WalletVerification bool          `envconfig:"REMITROUTE_ISLAMIBANK_WALLET_VERIFICATION" default:"true"`
	Countries          []string      `envconfig:"REMITROUTE_ISLAMIBANK_COUNTRIES" default:"BD"`
	Timeout            time.Duration `envconfig:"REMITROUTE_ISLAMIBANK_TIMEOUT" default:"30s"`

	LiveEndpoint string `envconfig:"REMITROUTE_ISLAMIBANK_LIVE_ENDPOINT"`
	LiveUsername string `envconfig:"REMITROUTE_ISLAMIBANK_LIVE_USERNAME"`
	LivePassword string `envconfig:"REMITROUTE_ISLAMIBANK_LIVE_PASSWORD"`

	SandboxEndpoint string `envconfig:"REMITROUTE_ISLAMIBANK_SANDBOX_ENDPOINT"`
	SandboxUsername string `envconfig:"REMITROUTE_ISLAMIBANK_SANDBOX_USERNAME"`
	SandboxPassword string `envconfig:"REMITROUTE_ISLAMIBANK_SANDBOX_PASSWORD"`
}

// Endpoint returns the endpoint for the configured mode.
func (c IslamiBankConfig) Endpoint() string {
	if strings.EqualFold(c.Mode, "live") {
		return c.LiveEndpoint
	}
	return c.SandboxEndpoint
}

// Credentials returns the username/password pair for the configured mode.
func (c IslamiBankConfig) Credentials() (string, string) {
	if strings.EqualFold(c.Mode, "live") {
		return c.LiveUsername, c.LivePassword
	}
	return c.SandboxUsername, c.SandboxPassword
}

type TransFastConfig struct {
	Enabled            bool          `envconfig:"REMITROUTE_TRANSFAST_ENABLED" default:"false"`
	Mode               string        `envconfig:"REMITROUTE_TRANSFAST_MODE" default:"sandbox"`
	WalletVerification bool          `envconfig:"REMITROUTE_TRANSFAST_WALLET_VERIFICATION" default:"false"`
	Countries          []string      `envconfig:"REMITROUTE_TRANSFAST_COUNTRIES"`
	Timeout            time.Duration `envconfig:"REMITROUTE_TRANSFAST_TIMEOUT" default:"30s"`

	LiveEndpoint string `envconfig:"REMITROUTE_TRANSFAST_LIVE_ENDPOINT"`
	LiveToken    string `envconfig:"REMITROUTE_TRANSFAST_LIVE_TOKEN"`

	SandboxEndpoint string `envconfig:"REMITROUTE_TRANSFAST_SANDBOX_ENDPOINT"`
	SandboxToken    string `envconfig:"REMITROUTE_TRANSFAST_SANDBOX_TOKEN"`
}

// Endpoint returns the endpoint for the configured mode.
func (c TransFastConfig) Endpoint() string {
	if strings.EqualFold(c.Mode, "live") {
		return c.LiveEndpoint
	}
	return c.SandboxEndpoint
}

// Token returns the API token for the configured mode.
func (c TransFastConfig) Token() string {
	if strings.EqualFold(c.Mode, "live") {
		return c.LiveToken
	}
	return c.SandboxToken
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
