package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadEnvOverrides_AllSet(t *testing.T) {
	t.Setenv(EnvConfig, "/custom/config.toml")
	t.Setenv(EnvClientID, "cid")
	t.Setenv(EnvTenantID, "tid")
	t.Setenv(EnvClientSecret, "sec")

	o := ReadEnvOverrides()
	assert.Equal(t, "/custom/config.toml", o.ConfigPath)
	assert.Equal(t, "cid", o.ClientID)
	assert.Equal(t, "tid", o.TenantID)
	assert.Equal(t, "sec", o.ClientSecret)
}

func TestReadEnvOverrides_NoneSet(t *testing.T) {
	clearEnv(t)

	assert.Equal(t, EnvOverrides{}, ReadEnvOverrides())
}

func TestEnvVarConstants(t *testing.T) {
	assert.Equal(t, "MSGRAPH_CONFIG", EnvConfig)
	assert.Equal(t, "MSGRAPH_CLIENT_SECRET", EnvClientSecret)
}
