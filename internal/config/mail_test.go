package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/mailbatch/internal/config"
	"github.com/shaharia-lab/mailbatch/internal/notification"
)

const sampleConfig = `
smtp:
  host: mail.example.com
  port: 2525
  username: mailer
  password: from-file
  encryption: none
  timeout: 5s
dispatch:
  from_address: noreply@example.com
  from_name: Example
  delay: 250ms
recipients:
  - email: ann@example.com
    name: Ann
    attributes:
      Plan: pro
  - email: bob@example.com
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestUserOverridePath(t *testing.T) {
	assert.Equal(t, "conf/mailbatch.user.yaml", config.UserOverridePath("conf/mailbatch.yaml"))
	assert.Equal(t, "settings.user", config.UserOverridePath("settings"))
}

func TestLoadMailConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailbatch.yaml")
	writeFile(t, path, sampleConfig)

	cfg, resolved, err := config.LoadMailConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)

	assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, notification.EncryptionNone, cfg.SMTP.Encryption)
	assert.Equal(t, 5*time.Second, cfg.SMTP.Timeout)
	assert.Equal(t, "noreply@example.com", cfg.Dispatch.FromAddress)
	assert.Equal(t, 250*time.Millisecond, cfg.Dispatch.Delay)

	require.Len(t, cfg.Recipients, 2)
	assert.Equal(t, "ann@example.com", cfg.Recipients[0].Email)
	assert.Equal(t, "pro", cfg.Recipients[0].Attributes["Plan"])
}

func TestLoadMailConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailbatch.yaml")
	writeFile(t, path, "dispatch:\n  from_address: noreply@example.com\n")

	cfg, _, err := config.LoadMailConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, notification.EncryptionSTARTTLS, cfg.SMTP.Encryption)
	assert.Equal(t, 10*time.Second, cfg.SMTP.Timeout)
	assert.Equal(t, time.Second, cfg.Dispatch.Delay)
}

func TestLoadMailConfig_PrefersUserOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailbatch.yaml")
	writeFile(t, path, sampleConfig)
	writeFile(t, filepath.Join(dir, "mailbatch.user.yaml"),
		"smtp:\n  host: personal.example.com\ndispatch:\n  from_address: me@example.com\n")

	cfg, resolved, err := config.LoadMailConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mailbatch.user.yaml"), resolved)
	assert.Equal(t, "personal.example.com", cfg.SMTP.Host)
	assert.Equal(t, "me@example.com", cfg.Dispatch.FromAddress)
}

func TestLoadMailConfig_OverrideWithoutDefaultFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailbatch.yaml")
	writeFile(t, filepath.Join(dir, "mailbatch.user.yaml"), "dispatch:\n  from_address: me@example.com\n")

	_, resolved, err := config.LoadMailConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mailbatch.user.yaml"), resolved)
}

func TestLoadMailConfig_Missing(t *testing.T) {
	_, _, err := config.LoadMailConfig(filepath.Join(t.TempDir(), "mailbatch.yaml"))
	assert.ErrorIs(t, err, config.ErrNoMailConfig)
}

func TestLoadMailConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailbatch.yaml")
	writeFile(t, path, sampleConfig)
	t.Setenv("MAILBATCH_SMTP_PASSWORD", "from-env")
	t.Setenv("MAILBATCH_SMTP_PORT", "465")
	t.Setenv("MAILBATCH_DISPATCH_FROM_NAME", "Env Sender")

	cfg, _, err := config.LoadMailConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.SMTP.Password)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, "Env Sender", cfg.Dispatch.FromName)
	assert.Equal(t, "mailer", cfg.SMTP.Username, "unset variables keep file values")
}

func TestLoadMailConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailbatch.yaml")

	writeFile(t, path, "smtp: [not, a, map]\n")
	_, _, err := config.LoadMailConfig(path)
	assert.ErrorContains(t, err, "parsing mail config")

	writeFile(t, path, "smtp:\n  host: mail.example.com\n")
	_, _, err = config.LoadMailConfig(path)
	assert.ErrorContains(t, err, "from address is required")
}
