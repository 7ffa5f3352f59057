package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	// The permission listener holds one connection for the process lifetime.
	if c.Database.MaxConns < 2 {
		return fmt.Errorf("database.max_conns must be >= 2 (got %d)", c.Database.MaxConns)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	if err := c.Sync.validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if c.API.RateLimitPerMinute <= 0 {
		return fmt.Errorf("api.rate_limit_per_minute must be > 0 (got %d)", c.API.RateLimitPerMinute)
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0, 1] (got %v)", c.Tracing.SampleRatio)
	}

	return nil
}

func (s *SyncConfig) validate() error {
	if s.OutboundQueue <= 0 {
		return fmt.Errorf("outbound_queue must be > 0 (got %d)", s.OutboundQueue)
	}
	if s.PingInterval <= 0 {
		return fmt.Errorf("ping_interval must be > 0 (got %v)", s.PingInterval)
	}
	if s.PingInterval >= s.PongTimeout {
		return fmt.Errorf("ping_interval (%v) must be shorter than pong_timeout (%v)", s.PingInterval, s.PongTimeout)
	}
	if s.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be >= 1 (got %d)", s.RetryAttempts)
	}
	if s.MaxCreateCount < 1 {
		return fmt.Errorf("max_create_count must be >= 1 (got %d)", s.MaxCreateCount)
	}
	if s.IdleTimeout <= 0 {
		return fmt.Errorf("idle_timeout must be > 0 (got %v)", s.IdleTimeout)
	}
	if s.MaxFrameBytes <= 0 {
		return fmt.Errorf("max_frame_bytes must be > 0 (got %d)", s.MaxFrameBytes)
	}
	return nil
}
