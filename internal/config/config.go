// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for ms-graph. Values resolve through a
// four-layer override chain: defaults -> config file -> environment -> CLI
// flags.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Auth       AuthConfig       `toml:"auth" json:"auth"`
	Graph      GraphConfig      `toml:"graph" json:"graph"`
	Logging    LoggingConfig    `toml:"logging" json:"logging"`
	Network    NetworkConfig    `toml:"network" json:"network"`
	Mail       MailConfig       `toml:"mail" json:"mail"`
	SharePoint SharePointConfig `toml:"sharepoint" json:"sharepoint"`

	// Path is the file the config was loaded from, empty when only
	// defaults apply.
	Path string `toml:"-" json:"path,omitempty"`
}

// AuthConfig identifies the confidential client application. The secret is
// usually supplied through MSGRAPH_CLIENT_SECRET rather than written to disk.
type AuthConfig struct {
	ClientID      string `toml:"client_id" json:"client_id"`
	TenantID      string `toml:"tenant_id" json:"tenant_id"`
	ClientSecret  string `toml:"client_secret" json:"-"`
	AuthorityHost string `toml:"authority_host" json:"authority_host"`
}

// GraphConfig selects the Graph endpoint. base_url changes only for national
// clouds.
type GraphConfig struct {
	BaseURL string `toml:"base_url" json:"base_url"`
}

// LoggingConfig controls log output: level and format.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level" json:"log_level"`
	LogFormat string `toml:"log_format" json:"log_format"`
}

// NetworkConfig controls HTTP client behavior.
type NetworkConfig struct {
	Timeout   string `toml:"timeout" json:"timeout"`
	UserAgent string `toml:"user_agent" json:"user_agent"`
}

// MailConfig holds defaults for the mail command.
type MailConfig struct {
	DefaultSender     string `toml:"default_sender" json:"default_sender"`
	DefaultImportance string `toml:"default_importance" json:"default_importance"`
}

// SharePointConfig holds defaults for the document library commands.
type SharePointConfig struct {
	DefaultLibrary string `toml:"default_library" json:"default_library"`
	MaxUploadSize  string `toml:"max_upload_size" json:"max_upload_size"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Empty strings mean "not specified".
type CLIOverrides struct {
	ConfigPath   string // --config
	ClientID     string // --client-id
	TenantID     string // --tenant-id
	ClientSecret string // --client-secret
}
