// Package testutil provides shared test environment helpers for E2E tests
// against a live tenant. It depends only on stdlib so that E2E tests (which
// cannot import internal/) can use it.
package testutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AllowedTenantsEnv lists the tenant IDs that E2E tests may touch.
const AllowedTenantsEnv = "MSGRAPH_ALLOWED_TEST_TENANTS"

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path.
// Missing file is not an error (CI sets env vars directly).
// Existing env vars take precedence over .env values.
func LoadDotEnv(envPath string) {
	f, err := os.Open(envPath)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// ValidateAllowlist crashes the process unless the tenant named by
// tenantEnvVar appears in MSGRAPH_ALLOWED_TEST_TENANTS. E2E tests send mail
// and upload files, so they must never run against an arbitrary tenant.
func ValidateAllowlist(tenantEnvVar string) {
	allowlist := os.Getenv(AllowedTenantsEnv)
	if allowlist == "" {
		fmt.Fprintf(os.Stderr, "FATAL: %s not set\n", AllowedTenantsEnv)
		fmt.Fprintln(os.Stderr, "Set it in .env or as an environment variable.")
		os.Exit(1)
	}

	tenant := os.Getenv(tenantEnvVar)
	if tenant == "" {
		fmt.Fprintf(os.Stderr, "FATAL: %s not set\n", tenantEnvVar)
		os.Exit(1)
	}

	for _, a := range strings.Split(allowlist, ",") {
		if strings.EqualFold(strings.TrimSpace(a), tenant) {
			return
		}
	}

	fmt.Fprintf(os.Stderr, "FATAL: %s=%q is not in %s=%q\n",
		tenantEnvVar, tenant, AllowedTenantsEnv, allowlist)
	os.Exit(1)
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}

// Lookup returns the value of an optional test variable, or "" when unset.
func Lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
