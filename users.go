package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runway28r/ms-graph-go/internal/graph"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Search directory users",
		Long: `Search users in the tenant directory. --name, --title and --email match by
prefix, --alias matches the UPN or mail nickname by prefix or an exact smtp
proxy address, and --company matches case-insensitively anywhere in the
company name. Without criteria every user is listed.`,
		Args: cobra.NoArgs,
		RunE: runUsers,
	}

	cmd.Flags().String("select", "", "comma-separated properties to return")
	cmd.Flags().String("name", "", "display name prefix")
	cmd.Flags().String("title", "", "job title prefix")
	cmd.Flags().String("email", "", "mail address prefix")
	cmd.Flags().String("alias", "", "UPN or mail nickname prefix")
	cmd.Flags().String("company", "", "company name substring")

	return cmd
}

func runUsers(cmd *cobra.Command, _ []string) error {
	q, err := userQueryFromFlags(cmd)
	if err != nil {
		return err
	}

	client, _, err := newSessionClient(cmd.Context())
	if err != nil {
		return err
	}

	users, err := client.SearchUsers(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("searching users: %w", err)
	}

	if flagJSON {
		return printUsersJSON(users)
	}

	printUsersTable(users)
	statusf(flagQuiet, "Found %d user(s)\n", len(users))

	return nil
}

func userQueryFromFlags(cmd *cobra.Command) (graph.UserQuery, error) {
	var q graph.UserQuery

	fields := []struct {
		flag string
		dst  *string
	}{
		{"name", &q.Name},
		{"title", &q.Title},
		{"email", &q.Email},
		{"alias", &q.Alias},
		{"company", &q.Company},
	}

	for _, f := range fields {
		v, err := cmd.Flags().GetString(f.flag)
		if err != nil {
			return q, err
		}

		*f.dst = v
	}

	sel, err := cmd.Flags().GetString("select")
	if err != nil {
		return q, err
	}

	q.Select = splitList(sel)

	return q, nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

// printUsersJSON writes the raw Graph objects so $select properties survive.
func printUsersJSON(users []graph.User) error {
	raw := make([]json.RawMessage, 0, len(users))
	for i := range users {
		raw = append(raw, users[i].Raw)
	}

	return printJSON(raw)
}

func printUsersTable(users []graph.User) {
	if len(users) == 0 {
		return
	}

	headers := []string{"DISPLAY NAME", "MAIL", "UPN", "JOB TITLE", "COMPANY"}
	rows := make([][]string, 0, len(users))

	for i := range users {
		u := &users[i]
		rows = append(rows, []string{u.DisplayName, u.Mail, u.UserPrincipalName, u.JobTitle, u.CompanyName})
	}

	printTable(os.Stdout, headers, rows)
}
