package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
)

// UserQuery holds the optional criteria for SearchUsers. Empty fields are
// ignored. Name, Title and Email match by prefix on the server. Alias matches
// userPrincipalName or mailNickname by prefix, or an exact smtp proxy address.
// Company is matched client-side, case-insensitively, as a substring.
type UserQuery struct {
	Select  []string
	Name    string
	Title   string
	Email   string
	Alias   string
	Company string
}

func (q UserQuery) empty() bool {
	return q.Name == "" && q.Title == "" && q.Email == "" && q.Alias == "" && q.Company == ""
}

// userResponse mirrors the Graph user JSON for the fields we surface.
type userResponse struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
	MailNickname      string `json:"mailNickname"`
	JobTitle          string `json:"jobTitle"`
	CompanyName       string `json:"companyName"`
}

type usersPage struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"` //nolint:tagliatelle // OData annotation key
}

// EscapeODataString doubles single quotes, as required for string literals
// in an OData $filter expression.
func EscapeODataString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// BuildUserFilter returns the server-side $filter for q, or "" when q has no
// server-side criteria. companyName is never sent: it is not filterable on
// every tenant, so SearchUsers applies it after retrieval.
func BuildUserFilter(q UserQuery) string {
	var preds []string

	if q.Name != "" {
		preds = append(preds, fmt.Sprintf("startswith(displayName,'%s')", EscapeODataString(q.Name)))
	}

	if q.Title != "" {
		preds = append(preds, fmt.Sprintf("startswith(jobTitle,'%s')", EscapeODataString(q.Title)))
	}

	if q.Email != "" {
		preds = append(preds, fmt.Sprintf("startswith(mail,'%s')", EscapeODataString(q.Email)))
	}

	if q.Alias != "" {
		a := EscapeODataString(q.Alias)
		preds = append(preds, fmt.Sprintf(
			"(startswith(userPrincipalName,'%[1]s') or startswith(mailNickname,'%[1]s') "+
				"or proxyAddresses/any(x:x eq 'smtp:%[1]s') or proxyAddresses/any(x:x eq 'SMTP:%[1]s'))", a))
	}

	return strings.Join(preds, " and ")
}

// SearchUsers queries /users with the server-side filter built from q,
// follows @odata.nextLink until the collection is exhausted, then applies
// the company filter. Any failed page aborts the search with no partial
// result. The ConsistencyLevel header is sent on every page because the
// alias filter and $count are advanced queries.
func (c *Client) SearchUsers(ctx context.Context, q UserQuery) ([]User, error) {
	if q.empty() {
		c.logger.Warn("no filters provided; retrieving all users may be slow in large organizations")
	}

	params := url.Values{}
	if f := BuildUserFilter(q); f != "" {
		params.Set("$filter", f)
	}

	if len(q.Select) > 0 {
		params.Set("$select", strings.Join(q.Select, ","))
	}

	params.Set("$count", "true")

	header := http.Header{}
	header.Set("ConsistencyLevel", "eventual")

	c.logger.Info("searching users",
		slog.String("filter", params.Get("$filter")),
		slog.String("select", params.Get("$select")),
	)

	var users []User

	page := 1

	// The nextLink already embeds the query, so it is used verbatim.
	for next := c.baseURL + "/users?" + params.Encode(); next != ""; page++ {
		pageUsers, nextLink, err := c.usersPage(ctx, next, header)
		if err != nil {
			c.logger.Error("failed to retrieve users",
				slog.Int("page", page),
				slog.String("error", err.Error()),
			)

			return nil, err
		}

		users = append(users, pageUsers...)
		next = nextLink
	}

	if q.Company != "" {
		users = filterByCompany(users, q.Company)
	}

	c.logger.Debug("retrieved users", slog.Int("count", len(users)))

	return users, nil
}

func (c *Client) usersPage(ctx context.Context, pageURL string, header http.Header) ([]User, string, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, url: pageURL, header: header})
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &GraphError{
			StatusCode: resp.StatusCode,
			RequestID:  resp.Header.Get("request-id"),
			Message:    "expected 200 from /users",
			Err:        ErrUnexpectedStatus,
		}
	}

	var p usersPage
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, "", fmt.Errorf("graph: decoding users response: %w", err)
	}

	users := make([]User, 0, len(p.Value))
	for _, raw := range p.Value {
		var ur userResponse
		if err := json.Unmarshal(raw, &ur); err != nil {
			return nil, "", fmt.Errorf("graph: decoding user: %w", err)
		}

		users = append(users, User{
			ID:                ur.ID,
			DisplayName:       ur.DisplayName,
			Mail:              ur.Mail,
			UserPrincipalName: ur.UserPrincipalName,
			MailNickname:      ur.MailNickname,
			JobTitle:          ur.JobTitle,
			CompanyName:       ur.CompanyName,
			Raw:               raw,
		})
	}

	return users, p.NextLink, nil
}

// filterByCompany keeps users whose companyName contains company, compared
// under Unicode case folding. Users without a companyName never match.
func filterByCompany(users []User, company string) []User {
	fold := cases.Fold()
	needle := fold.String(company)

	kept := users[:0]
	for _, u := range users {
		if strings.Contains(fold.String(u.CompanyName), needle) {
			kept = append(kept, u)
		}
	}

	return kept
}
