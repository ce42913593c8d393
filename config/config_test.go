package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSessionSecret(t *testing.T) {
	assert.NoError(t, ValidateSessionSecret("secret", "development"))
	assert.Error(t, ValidateSessionSecret("secret", "production"))
	assert.Error(t, ValidateSessionSecret("short-but-custom", "production"))
	assert.NoError(t, ValidateSessionSecret(GenerateSecureSecret(), "production"))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("LEGALCRM_TEST_BOOL", "yes")
	t.Setenv("LEGALCRM_TEST_INT", "14")
	t.Setenv("LEGALCRM_TEST_BAD_INT", "-3")

	assert.True(t, getEnvBool("LEGALCRM_TEST_BOOL", false))
	assert.False(t, getEnvBool("LEGALCRM_TEST_MISSING", false))
	assert.Equal(t, 14, getEnvInt("LEGALCRM_TEST_INT", 7))
	assert.Equal(t, 7, getEnvInt("LEGALCRM_TEST_BAD_INT", 7))
	assert.Equal(t, "fallback", getEnv("LEGALCRM_TEST_MISSING", "fallback"))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("REMINDER_CRON", "")

	cfg := Load()
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "*/5 * * * *", cfg.ReminderCron)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.False(t, cfg.R2Configured())
}
