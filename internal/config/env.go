package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig       = "MSGRAPH_CONFIG"
	EnvClientID     = "MSGRAPH_CLIENT_ID"
	EnvTenantID     = "MSGRAPH_TENANT_ID"
	EnvClientSecret = "MSGRAPH_CLIENT_SECRET"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath   string // MSGRAPH_CONFIG: override config file path
	ClientID     string // MSGRAPH_CLIENT_ID
	TenantID     string // MSGRAPH_TENANT_ID
	ClientSecret string // MSGRAPH_CLIENT_SECRET
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify the Config; Resolve applies the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:   os.Getenv(EnvConfig),
		ClientID:     os.Getenv(EnvClientID),
		TenantID:     os.Getenv(EnvTenantID),
		ClientSecret: os.Getenv(EnvClientSecret),
	}
}
