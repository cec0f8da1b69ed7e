package graph

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeODataString(t *testing.T) {
	assert.Equal(t, "O''Brien", EscapeODataString("O'Brien"))
	assert.Equal(t, "plain", EscapeODataString("plain"))
	assert.Equal(t, "''''", EscapeODataString("''"))
}

func TestBuildUserFilter(t *testing.T) {
	tests := []struct {
		name  string
		query UserQuery
		want  string
	}{
		{"empty", UserQuery{}, ""},
		{"company only stays client-side", UserQuery{Company: "Acme"}, ""},
		{"name", UserQuery{Name: "Ann"}, "startswith(displayName,'Ann')"},
		{"escaped name", UserQuery{Name: "O'Brien"}, "startswith(displayName,'O''Brien')"},
		{
			"name title email",
			UserQuery{Name: "Ann", Title: "Eng", Email: "ann@"},
			"startswith(displayName,'Ann') and startswith(jobTitle,'Eng') and startswith(mail,'ann@')",
		},
		{
			"alias",
			UserQuery{Alias: "jdoe"},
			"(startswith(userPrincipalName,'jdoe') or startswith(mailNickname,'jdoe') " +
				"or proxyAddresses/any(x:x eq 'smtp:jdoe') or proxyAddresses/any(x:x eq 'SMTP:jdoe'))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildUserFilter(tt.query))
		})
	}
}

func TestSearchUsers_FollowsNextLink(t *testing.T) {
	var srvURL string

	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eventual", r.Header.Get("ConsistencyLevel"))
		assert.Equal(t, "/users", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("page") {
		case "":
			assert.Equal(t, "true", r.URL.Query().Get("$count"))
			assert.Equal(t, "startswith(displayName,'A')", r.URL.Query().Get("$filter"))
			assert.Equal(t, "id,displayName", r.URL.Query().Get("$select"))
			fmt.Fprintf(w, `{"value":[{"id":"1","displayName":"A1"},{"id":"2","displayName":"A2"}],"@odata.nextLink":"%s/users?page=2"}`, srvURL)
		case "2":
			fmt.Fprintf(w, `{"value":[{"id":"3","displayName":"A3"}],"@odata.nextLink":"%s/users?page=3"}`, srvURL)
		case "3":
			fmt.Fprint(w, `{"value":[{"id":"4","displayName":"A4","companyName":"x"}]}`)
		}
	})
	srvURL = srv.URL

	client := newTestClient(t, srv.URL)
	users, err := client.SearchUsers(context.Background(), UserQuery{
		Name:   "A",
		Select: []string{"id", "displayName"},
	})
	require.NoError(t, err)
	require.Len(t, users, 4)

	for i, u := range users {
		assert.Equal(t, fmt.Sprint(i+1), u.ID)
		assert.Equal(t, fmt.Sprintf("A%d", i+1), u.DisplayName)
	}

	assert.JSONEq(t, `{"id":"4","displayName":"A4","companyName":"x"}`, string(users[3].Raw))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchUsers_CompanyFilterClientSide(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("$filter"))
		fmt.Fprint(w, `{"value":[
			{"id":"1","companyName":"Acme Corp"},
			{"id":"2","companyName":"acme corp ltd"},
			{"id":"3","companyName":"Other"},
			{"id":"4"}
		]}`)
	})

	client := newTestClient(t, srv.URL)
	users, err := client.SearchUsers(context.Background(), UserQuery{Company: "ACME corp"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "1", users[0].ID)
	assert.Equal(t, "2", users[1].ID)
}

func TestSearchUsers_NoFiltersStillQueries(t *testing.T) {
	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("$filter"))
		assert.Equal(t, "true", r.URL.Query().Get("$count"))
		fmt.Fprint(w, `{"value":[]}`)
	})

	client := newTestClient(t, srv.URL)
	users, err := client.SearchUsers(context.Background(), UserQuery{})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchUsers_PageFailureDiscardsResults(t *testing.T) {
	var srvURL string

	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":{"code":"Authorization_RequestDenied"}}`)

			return
		}

		fmt.Fprintf(w, `{"value":[{"id":"1"}],"@odata.nextLink":"%s/users?page=2"}`, srvURL)
	})
	srvURL = srv.URL

	client := newTestClient(t, srv.URL)
	users, err := client.SearchUsers(context.Background(), UserQuery{Name: "A"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, users)
}

func TestSearchUsers_Non200SuccessIsError(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	client := newTestClient(t, srv.URL)
	_, err := client.SearchUsers(context.Background(), UserQuery{Name: "A"})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestFilterByCompany_UnicodeFold(t *testing.T) {
	users := []User{
		{ID: "1", CompanyName: "STRASSE GmbH"},
		{ID: "2", CompanyName: "Nordwind"},
	}

	kept := filterByCompany(users, "strasse")
	require.Len(t, kept, 1)
	assert.Equal(t, "1", kept[0].ID)
	assert.True(t, strings.HasPrefix(kept[0].CompanyName, "STRASSE"))
}
