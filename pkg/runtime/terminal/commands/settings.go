package commands

import (
	"fmt"
	"strings"

	"github.com/de-tools/ops-atlas/pkg/services/notify"
	"github.com/spf13/viper"
)

// ToolSettings holds tool-level defaults that don't belong on the Azure
// profile: SMTP delivery and naming conventions. Sourced from an
// optional opsatlas.yaml in $HOME or the working directory, overridable
// through OPSATLAS_* environment variables.
type ToolSettings struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AlertPrefix  string
}

// LoadToolSettings reads the optional tool config. A missing file is
// fine; defaults and environment variables still apply.
func LoadToolSettings() (*ToolSettings, error) {
	v := viper.New()
	v.SetConfigName("opsatlas")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")
	v.SetEnvPrefix("OPSATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("smtp.port", 587)
	v.SetDefault("alert.prefix", "CPUAlert-")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read tool config: %w", err)
		}
	}

	return &ToolSettings{
		SMTPHost:     v.GetString("smtp.host"),
		SMTPPort:     v.GetInt("smtp.port"),
		SMTPUsername: v.GetString("smtp.username"),
		SMTPPassword: v.GetString("smtp.password"),
		SMTPFrom:     v.GetString("smtp.from"),
		AlertPrefix:  v.GetString("alert.prefix"),
	}, nil
}

// Mailer builds an SMTP mailer from the settings, or reports what is
// missing.
func (s *ToolSettings) Mailer() (notify.Mailer, error) {
	if s.SMTPHost == "" || s.SMTPFrom == "" {
		return nil, fmt.Errorf("smtp.host and smtp.from must be configured to send mail")
	}
	return notify.NewSMTPMailer(notify.SMTPOptions{
		Host:     s.SMTPHost,
		Port:     s.SMTPPort,
		Username: s.SMTPUsername,
		Password: s.SMTPPassword,
		From:     s.SMTPFrom,
	})
}
