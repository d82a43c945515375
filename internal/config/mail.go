package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/shaharia-lab/mailbatch/internal/notification"
)

// ErrNoMailConfig is returned when neither the mail config file nor its
// personal override exists.
var ErrNoMailConfig = errors.New("could not find mail configuration file")

// MailConfig is the on-disk mail configuration.
type MailConfig struct {
	SMTP       notification.SMTPConfig     `yaml:"smtp"`
	Dispatch   notification.DispatchConfig `yaml:"dispatch"`
	Recipients []*notification.Contact     `yaml:"recipients"`
}

// UserOverridePath returns the personal override path for a config file:
// "mailbatch.yaml" becomes "mailbatch.user.yaml".
func UserOverridePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".user" + ext
}

// ResolveMailConfigPath picks the personal override when it exists and falls
// back to path otherwise.
func ResolveMailConfigPath(path string) (string, error) {
	override := UserOverridePath(path)
	if fileExists(override) {
		return override, nil
	}
	if fileExists(path) {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoMailConfig, path)
}

// LoadMailConfig reads the mail configuration, applies defaults for omitted
// fields and then MAILBATCH_SMTP_* / MAILBATCH_DISPATCH_* environment
// overrides. The result is validated.
func LoadMailConfig(path string) (*MailConfig, string, error) {
	resolved, err := ResolveMailConfigPath(path)
	if err != nil {
		return nil, "", err
	}

	//nolint:gosec // path comes from the operator's own configuration
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return nil, "", fmt.Errorf("reading mail config %q: %w", resolved, err)
	}

	cfg := &MailConfig{
		SMTP:     notification.DefaultSMTPConfig(),
		Dispatch: notification.DefaultDispatchConfig(),
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, "", fmt.Errorf("parsing mail config %q: %w", resolved, err)
	}

	if err := envconfig.Process("MAILBATCH_SMTP", &cfg.SMTP); err != nil {
		return nil, "", fmt.Errorf("applying smtp environment overrides: %w", err)
	}
	if err := envconfig.Process("MAILBATCH_DISPATCH", &cfg.Dispatch); err != nil {
		return nil, "", fmt.Errorf("applying dispatch environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid mail config %q: %w", resolved, err)
	}
	return cfg, resolved, nil
}

// Validate checks both the SMTP and the dispatch sections.
func (c *MailConfig) Validate() error {
	return errors.Join(c.SMTP.Validate(), c.Dispatch.Validate())
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
