package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Magic-link invites are single use and short lived
const MagicLinkTTL = 15 * time.Minute

// Portal sessions are long lived and refreshable
const SessionTTL = 30 * 24 * time.Hour

// Password lockout policy
const (
	MaxFailedLoginAttempts = 5
	LockoutDuration        = 15 * time.Minute
)

// Per-IP rate limits on the portal auth endpoint
const (
	MagicLinkIssueLimit  = 5
	MagicLinkIssueWindow = 5 * time.Minute
	LoginAttemptLimit    = 10
	LoginAttemptWindow   = time.Minute
	PortalAPILimit       = 100
	PortalAPIWindow      = time.Minute
)
