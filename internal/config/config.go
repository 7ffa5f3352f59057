package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Sync     SyncConfig     `yaml:"sync"`
	API      APIConfig      `yaml:"api"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	// ApplicationName is reported in pg_stat_activity unless the DSN sets one.
	ApplicationName string `yaml:"application_name" env:"DATABASE_APPLICATION_NAME" env-default:"streamlog"`
}

// AuthConfig holds identity token settings. Tokens are issued by the
// upstream identity provider and only verified here.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"      env:"AUTH_JWT_SECRET"      env-required:"true"`
	JWTIssuer     string        `yaml:"jwt_issuer"      env:"AUTH_JWT_ISSUER"      env-default:"streamlog"`
	DevTokenTTL   time.Duration `yaml:"dev_token_ttl"   env:"AUTH_DEV_TOKEN_TTL"   env-default:"24h"`
	SessionCookie string        `yaml:"session_cookie"  env:"AUTH_SESSION_COOKIE"  env-default:"streamlog_session"`
}

// SyncConfig holds engine and connection tunables.
type SyncConfig struct {
	IdleTimeout     time.Duration `yaml:"idle_timeout"        env:"SYNC_IDLE_TIMEOUT"        env-default:"5m"`
	HaltCooldown    time.Duration `yaml:"halt_cooldown"       env:"SYNC_HALT_COOLDOWN"       env-default:"30s"`
	MaxCreateCount  int           `yaml:"max_create_count"    env:"SYNC_MAX_CREATE_COUNT"    env-default:"50"`
	OutboundQueue   int           `yaml:"outbound_queue"      env:"SYNC_OUTBOUND_QUEUE"      env-default:"256"`
	PingInterval    time.Duration `yaml:"ping_interval"       env:"SYNC_PING_INTERVAL"       env-default:"20s"`
	PongTimeout     time.Duration `yaml:"pong_timeout"        env:"SYNC_PONG_TIMEOUT"        env-default:"60s"`
	AuthTimeout     time.Duration `yaml:"auth_timeout"        env:"SYNC_AUTH_TIMEOUT"        env-default:"10s"`
	MaxFrameBytes   int           `yaml:"max_frame_bytes"     env:"SYNC_MAX_FRAME_BYTES"     env-default:"1048576"`
	RetryAttempts   int           `yaml:"retry_attempts"      env:"SYNC_RETRY_ATTEMPTS"      env-default:"3"`
	RetryBaseDelay  time.Duration `yaml:"retry_base_delay"    env:"SYNC_RETRY_BASE_DELAY"    env-default:"50ms"`
	RetryMaxDelay   time.Duration `yaml:"retry_max_delay"     env:"SYNC_RETRY_MAX_DELAY"     env-default:"1s"`
	AllowedOrigins  string        `yaml:"allowed_origins"     env:"SYNC_ALLOWED_ORIGINS"`
	NotifyReconnect time.Duration `yaml:"notify_reconnect"    env:"SYNC_NOTIFY_RECONNECT"    env-default:"2s"`
}

// APIConfig holds integration API settings.
type APIConfig struct {
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute" env:"API_RATE_LIMIT_PER_MINUTE" env-default:"600"`
	RateLimitCleanup   time.Duration `yaml:"rate_limit_cleanup"    env:"API_RATE_LIMIT_CLEANUP"    env-default:"5m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// TracingConfig holds OpenTelemetry export settings. An empty endpoint
// disables export.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"     env:"TRACING_ENDPOINT"`
	Insecure    bool    `yaml:"insecure"     env:"TRACING_INSECURE"     env-default:"false"`
	ServiceName string  `yaml:"service_name" env:"TRACING_SERVICE_NAME" env-default:"streamlog-backend"`
	SampleRatio float64 `yaml:"sample_ratio" env:"TRACING_SAMPLE_RATIO" env-default:"1.0"`
}

// Enabled reports whether spans should be exported.
func (c TracingConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Origins returns the configured WebSocket origins. An empty list allows
// any origin.
func (c SyncConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
