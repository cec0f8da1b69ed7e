package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/runway28r/ms-graph-go/internal/config"
	"github.com/runway28r/ms-graph-go/internal/graph"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Acquire an app-only access token and report the result",
		Long: `Request an access token with the client credentials grant. Nothing is
cached: every command acquires a fresh token. Use --print to write the raw
bearer token to stdout for use with other tools.`,
		RunE: runToken,
	}

	cmd.Flags().Bool("print", false, "print the access token to stdout")

	return cmd
}

// tokenJSON is the JSON output schema for the token command. The token
// itself is only included with --print.
type tokenJSON struct {
	Authenticated bool   `json:"authenticated"`
	TenantID      string `json:"tenant_id"`
	ClientID      string `json:"client_id"`
	AccessToken   string `json:"access_token,omitempty"`
	Error         string `json:"error,omitempty"`
}

func runToken(cmd *cobra.Command, _ []string) error {
	printToken, err := cmd.Flags().GetBool("print")
	if err != nil {
		return err
	}

	if err := config.RequireCredentials(resolvedCfg); err != nil {
		return err
	}

	logger := buildLogger()
	start := time.Now()

	sess, authErr := authenticate(cmd.Context(), defaultHTTPClient(), logger)

	logger.Debug("token request finished",
		"state", sessionState(sess),
		"duration", time.Since(start),
	)

	out := tokenJSON{
		Authenticated: sess.Authenticated(),
		TenantID:      resolvedCfg.Auth.TenantID,
		ClientID:      resolvedCfg.Auth.ClientID,
	}

	if authErr != nil {
		out.Error = authErr.Error()
	}

	if printToken {
		out.AccessToken, _ = sess.Token() //nolint:errcheck // empty when unauthenticated
	}

	if flagJSON {
		if err := printJSON(out); err != nil {
			return err
		}
	} else {
		printTokenText(out, printToken)
	}

	if authErr != nil {
		return fmt.Errorf("authentication failed: %w", authErr)
	}

	return nil
}

func printTokenText(out tokenJSON, printToken bool) {
	if !out.Authenticated {
		statusf(flagQuiet, "Could not obtain a token for tenant %s.\n", out.TenantID)

		return
	}

	statusf(flagQuiet, "Authenticated as application %s in tenant %s.\n", out.ClientID, out.TenantID)

	if printToken {
		fmt.Println(out.AccessToken)
	}
}

// sessionState is a short label used in debug output.
func sessionState(sess *graph.Session) string {
	if sess.Authenticated() {
		return "authenticated"
	}

	return "unauthenticated"
}
