package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "DATABASE_URL", "AI_TIMEOUT", "SIMULATOR_CHANCE", "STATUS_SOURCE", "SEED_DEMO_ORDERS", "DEMO_OTP"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 8*time.Second, cfg.AITimeout)
	assert.Equal(t, 5*time.Second, cfg.SimulatorInterval)
	assert.Equal(t, 0.3, cfg.SimulatorChance)
	assert.Equal(t, "simulator", cfg.StatusSource)
	assert.Equal(t, "1234", cfg.DemoOTP)
	assert.True(t, cfg.SeedDemoOrders)
	assert.Equal(t, time.Hour, cfg.SessionTTL())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AI_TIMEOUT", "3")
	t.Setenv("SIMULATOR_INTERVAL", "250ms")
	t.Setenv("SIMULATOR_CHANCE", "1")
	t.Setenv("SESSION_TIMEOUT", "60")
	t.Setenv("SEED_DEMO_ORDERS", "false")
	t.Setenv("STATUS_SOURCE", "amqp")

	cfg := Load()
	assert.Equal(t, 3*time.Second, cfg.AITimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.SimulatorInterval)
	assert.Equal(t, 1.0, cfg.SimulatorChance)
	assert.Equal(t, time.Minute, cfg.SessionTTL())
	assert.False(t, cfg.SeedDemoOrders)
	assert.Equal(t, "amqp", cfg.StatusSource)
}

func TestGetEnvAsDuration_Invalid(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, time.Second, getEnvAsDuration("SOME_TIMEOUT", time.Second))
}
