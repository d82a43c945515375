package notification

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Encryption modes accepted by SMTPConfig.Encryption.
const (
	EncryptionNone     = "none"
	EncryptionSTARTTLS = "starttls"
	EncryptionSSLTLS   = "ssl_tls"
)

// SMTPConfig holds connection parameters for the SMTP transport. Struct tags
// serve both the YAML config file and envconfig overrides.
type SMTPConfig struct {
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	Encryption string        `yaml:"encryption"` // "none", "starttls", "ssl_tls"
	Timeout    time.Duration `yaml:"timeout"`
}

// DispatchConfig holds the sender identity and pacing for a batch.
// It is treated as read-only while a batch runs.
type DispatchConfig struct {
	FromAddress string        `yaml:"from_address" split_words:"true"`
	FromName    string        `yaml:"from_name" split_words:"true"`
	Delay       time.Duration `yaml:"delay"`
}

// DefaultSMTPConfig returns the settings used when a config file omits them.
func DefaultSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:       "smtp.gmail.com",
		Port:       587,
		Encryption: EncryptionSTARTTLS,
		Timeout:    10 * time.Second,
	}
}

// DefaultDispatchConfig returns the default pacing: one second between messages.
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{Delay: time.Second}
}

// Validate reports every missing or malformed SMTP field at once.
func (c SMTPConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Host) == "" {
		errs = append(errs, errors.New("smtp host is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("smtp port %d is out of range", c.Port))
	}
	switch c.Encryption {
	case "", EncryptionNone, EncryptionSTARTTLS, EncryptionSSLTLS:
	default:
		errs = append(errs, fmt.Errorf("unknown smtp encryption %q", c.Encryption))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("smtp timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// Validate checks that the sender identity is present and the delay is sane.
func (c DispatchConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.FromAddress) == "" {
		errs = append(errs, errors.New("from address is required"))
	}
	if c.Delay < 0 {
		errs = append(errs, errors.New("delay must not be negative"))
	}
	return errors.Join(errs...)
}
