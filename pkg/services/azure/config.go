package azure

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	opserrors "github.com/de-tools/ops-atlas/pkg/errors"
	"gopkg.in/ini.v1"
)

const (
	DefaultProfile = "default"
	DefaultRegion  = "eastus"
)

// Config carries the subscription identity and credential for one run.
// It is constructed once in the entrypoint and passed down explicitly;
// services never reach for ambient authentication state.
type Config struct {
	SubscriptionID string
	TenantID       string
	Region         string
	Credentials    *azidentity.AzureCLICredential
}

// LoadConfig reads the named profile from ~/.azure/config and builds an
// Azure CLI credential for it.
func LoadConfig(profile string) (*Config, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, opserrors.NewSetupError("config", fmt.Errorf("unable to get home directory: %w", err))
	}

	cfg, err := LoadConfigFile(filepath.Join(homeDir, ".azure", "config"), profile)
	if err != nil {
		return nil, err
	}

	credentials, err := azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{
		TenantID: cfg.TenantID,
	})
	if err != nil {
		return nil, opserrors.NewSetupError("credentials", fmt.Errorf("failed to create Azure CLI credential: %w", err))
	}
	cfg.Credentials = credentials

	return cfg, nil
}

// LoadConfigFile parses an Azure CLI style config file without building
// a credential. Split out so the parsing is testable against a fixture.
func LoadConfigFile(path, profile string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, opserrors.NewSetupError("config", fmt.Errorf("unable to load Azure config file: %w", err))
	}

	section, err := file.GetSection(profile)
	if err != nil {
		return nil, opserrors.NewSetupError("config", fmt.Errorf("profile %s not found in Azure config: %w", profile, err))
	}

	cfg := &Config{
		SubscriptionID: section.Key("subscription").String(),
		TenantID:       section.Key("tenant").String(),
		Region:         section.Key("region").MustString(DefaultRegion),
	}

	if cfg.SubscriptionID == "" {
		return nil, opserrors.NewValidationError("subscription", fmt.Sprintf("subscription ID not set in profile %s", profile), nil)
	}

	return cfg, nil
}
