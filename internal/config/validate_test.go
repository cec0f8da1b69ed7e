package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"bad authority", func(c *Config) { c.Auth.AuthorityHost = "not a url" }, "auth.authority_host"},
		{"empty base url", func(c *Config) { c.Graph.BaseURL = "" }, "graph.base_url"},
		{"log level", func(c *Config) { c.Logging.LogLevel = "trace" }, "logging.log_level"},
		{"log format", func(c *Config) { c.Logging.LogFormat = "xml" }, "logging.log_format"},
		{"timeout too short", func(c *Config) { c.Network.Timeout = "10ms" }, "network.timeout"},
		{"timeout unparsable", func(c *Config) { c.Network.Timeout = "forever" }, "network.timeout"},
		{"sender", func(c *Config) { c.Mail.DefaultSender = "not-an-address" }, "mail.default_sender"},
		{"importance", func(c *Config) { c.Mail.DefaultImportance = "urgent" }, "mail.default_importance"},
		{"upload size", func(c *Config) { c.SharePoint.MaxUploadSize = "lots" }, "sharepoint.max_upload_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidate_OptionalFieldsMayBeEmpty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network.Timeout = ""
	cfg.Mail.DefaultSender = ""
	cfg.SharePoint.MaxUploadSize = ""

	assert.NoError(t, Validate(cfg))
}

func TestRequireCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.ClientID = "id"

	err := RequireCredentials(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.tenant_id")
	assert.Contains(t, err.Error(), "auth.client_secret")
	assert.NotContains(t, err.Error(), "auth.client_id:")
	assert.Contains(t, err.Error(), EnvClientSecret)

	cfg.Auth.TenantID = "t"
	cfg.Auth.ClientSecret = "s"
	assert.NoError(t, RequireCredentials(cfg))
}
