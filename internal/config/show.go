package config

import (
	"fmt"
	"io"
)

// redacted replaces secret values in rendered output.
const redacted = "********"

// RenderEffective writes the resolved configuration as a human-readable
// annotated summary to w. This powers the "config show" command. The client
// secret is never printed.
func RenderEffective(cfg *Config, w io.Writer) error {
	ew := &errWriter{w: w}

	if cfg.Path != "" {
		ew.printf("# Effective configuration (file: %s)\n\n", cfg.Path)
	} else {
		ew.printf("# Effective configuration (defaults, no config file)\n\n")
	}

	renderAuthSection(ew, &cfg.Auth)

	ew.printf("[graph]\n")
	ew.printf("  base_url = %q\n\n", cfg.Graph.BaseURL)

	ew.printf("[logging]\n")
	ew.printf("  log_level  = %q\n", cfg.Logging.LogLevel)
	ew.printf("  log_format = %q\n\n", cfg.Logging.LogFormat)

	ew.printf("[network]\n")
	ew.printf("  timeout    = %q\n", cfg.Network.Timeout)

	if cfg.Network.UserAgent != "" {
		ew.printf("  user_agent = %q\n", cfg.Network.UserAgent)
	}

	ew.printf("\n[mail]\n")

	if cfg.Mail.DefaultSender != "" {
		ew.printf("  default_sender     = %q\n", cfg.Mail.DefaultSender)
	}

	ew.printf("  default_importance = %q\n\n", cfg.Mail.DefaultImportance)

	ew.printf("[sharepoint]\n")
	ew.printf("  default_library = %q\n", cfg.SharePoint.DefaultLibrary)
	ew.printf("  max_upload_size = %q\n", cfg.SharePoint.MaxUploadSize)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func renderAuthSection(ew *errWriter, a *AuthConfig) {
	secret := "(not set)"
	if a.ClientSecret != "" {
		secret = redacted
	}

	ew.printf("[auth]\n")
	ew.printf("  client_id      = %q\n", a.ClientID)
	ew.printf("  tenant_id      = %q\n", a.TenantID)
	ew.printf("  client_secret  = %s\n", secret)
	ew.printf("  authority_host = %q\n\n", a.AuthorityHost)
}
