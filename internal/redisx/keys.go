package redisx

import "time"

const (
	// Dedup change-feed events: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Revoked session tokens: session:revoked:{jti}
	KeySessionRevoked = "session:revoked:%s"

	// Dashboard stats cache: stats:dashboard
	KeyDashboardStats = "stats:dashboard"
)

var (
	TTLDedup          = 48 * time.Hour
	TTLDashboardStats = time.Minute
)
