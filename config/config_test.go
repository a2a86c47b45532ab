package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t,
		"MUTUAL_MIN_MEMBERS",
		"MUTUAL_SINGLE_MEMBERSHIP",
		"MUTUAL_STALL_ON_DECLINE",
		"MUTUAL_NOTIFICATION_CACHE_TTL",
		"MUTUAL_LOW_USAGE_DEFAULT_MINUTES",
		"REDIS_URL",
		"CORS_ALLOWED_ORIGINS",
		"JWT_EXPIRY",
	)

	cfg := Load()

	assert.Equal(t, 2, cfg.Mutual.MinMembers)
	assert.False(t, cfg.Mutual.SingleMembership)
	assert.False(t, cfg.Mutual.StallOnDecline)
	assert.Equal(t, 30*time.Second, cfg.Mutual.NotificationCacheTTL)
	assert.Equal(t, 60, cfg.Mutual.LowUsageDefaultMinutes)
	assert.Equal(t, 12*time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MUTUAL_MIN_MEMBERS", "3")
	t.Setenv("MUTUAL_REQUIRE_MESSAGE", "true")
	t.Setenv("MUTUAL_SINGLE_MEMBERSHIP", "1")
	t.Setenv("MUTUAL_STALL_ON_DECLINE", "true")
	t.Setenv("MUTUAL_NOTIFICATION_CACHE_TTL", "0s")
	t.Setenv("PLAN_PRICES", "Mobile=149,Standard=499")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ADMIN_EMAIL", "ops@streamshare.test")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 3, cfg.Mutual.MinMembers)
	assert.True(t, cfg.Mutual.RequireAdminMessage)
	assert.True(t, cfg.Mutual.SingleMembership)
	assert.True(t, cfg.Mutual.StallOnDecline)
	assert.Zero(t, cfg.Mutual.NotificationCacheTTL)
	assert.Equal(t, "Mobile=149,Standard=499", cfg.Mutual.PlanPrices)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "ops@streamshare.test", cfg.Admin.Email)
	assert.Equal(t, 8080, cfg.Server.Port)
}

// unsetEnv removes keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}
