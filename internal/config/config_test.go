package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RISK_SERVICE_SECURITY_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8086, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 2*time.Second, cfg.Risk.AssessorTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Risk.MaxAssessLatency)
	assert.Equal(t, 50, cfg.Risk.HistoryLimit)
	assert.Equal(t, []int64{1, 56, 137}, cfg.Risk.SupportedChains)
	assert.Len(t, cfg.Risk.BlacklistedAddrs, 2)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, uint32(5), cfg.Breaker.ConsecutiveFailures)
	assert.Equal(t, "withdrawal-risk-service", cfg.Telemetry.ServiceName)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
	assert.Equal(t, "fintech-auth", cfg.Security.JWTIssuer)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("RISK_SERVICE_SECURITY_JWT_SECRET", "")

	cfg, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
	assert.Nil(t, cfg)
}

func TestSecurityConfigValidate(t *testing.T) {
	assert.Error(t, SecurityConfig{}.Validate())
	assert.Error(t, SecurityConfig{JWTSecret: "   "}.Validate())
	assert.NoError(t, SecurityConfig{JWTSecret: "s3cret"}.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RISK_SERVICE_SERVER_PORT", "9100")
	t.Setenv("RISK_SERVICE_RISK_ASSESSOR_TIMEOUT", "750ms")
	t.Setenv("RISK_SERVICE_KAFKA_ENABLED", "true")
	t.Setenv("RISK_SERVICE_SECURITY_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Risk.AssessorTimeout)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "s3cret", cfg.Security.JWTSecret)
}

func TestConnectionStrings(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "risk",
		Password: "pw",
		Database: "fintech",
		SSLMode:  "require",
	}
	assert.Equal(t, "postgres://risk:pw@db.internal:5433/fintech?sslmode=require", db.DSN())

	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
