package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadToolSettings_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	settings, err := LoadToolSettings()
	require.NoError(t, err)

	assert.Equal(t, 587, settings.SMTPPort)
	assert.Equal(t, "CPUAlert-", settings.AlertPrefix)
}

func TestLoadToolSettings_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPSATLAS_SMTP_HOST", "mail.example.com")
	t.Setenv("OPSATLAS_SMTP_PORT", "2525")
	t.Setenv("OPSATLAS_ALERT_PREFIX", "MemAlert-")

	settings, err := LoadToolSettings()
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com", settings.SMTPHost)
	assert.Equal(t, 2525, settings.SMTPPort)
	assert.Equal(t, "MemAlert-", settings.AlertPrefix)
}
