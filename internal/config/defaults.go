package config

// Default values for configuration options. These are layer 0 of the
// override chain and need no config file.
const (
	defaultAuthorityHost = "https://login.microsoftonline.com"
	defaultBaseURL       = "https://graph.microsoft.com/v1.0"
	defaultLogLevel      = "info"
	defaultLogFormat     = "auto"
	defaultTimeout       = "60s"
	defaultImportance    = "Normal"
	defaultLibrary       = "Documents"
	defaultMaxUploadSize = "250MiB" // Graph simple-upload ceiling
)

// DefaultConfig returns a Config populated with all default values.
// It is the starting point for TOML decoding, so unset fields keep defaults,
// and the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Auth:       AuthConfig{AuthorityHost: defaultAuthorityHost},
		Graph:      GraphConfig{BaseURL: defaultBaseURL},
		Logging:    LoggingConfig{LogLevel: defaultLogLevel, LogFormat: defaultLogFormat},
		Network:    NetworkConfig{Timeout: defaultTimeout},
		Mail:       MailConfig{DefaultImportance: defaultImportance},
		SharePoint: SharePointConfig{DefaultLibrary: defaultLibrary, MaxUploadSize: defaultMaxUploadSize},
	}
}
