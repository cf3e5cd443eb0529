package forge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "forge-admin"
	testPassword = "hunter2"
	testToken    = "2b9078f936307b1d44b85f8ad19d30838a7f2d0e"
)

func newTestClient(t *testing.T, handler http.Handler) (Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(server.Client(), server.URL, testUser, testPassword)
	require.NoError(t, err, "Error creating forge client")
	return c, server
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil, "http://forge", testUser, testPassword)
	assert.Error(t, err, "Expected error for nil http client")

	_, err = NewClient(http.DefaultClient, "", testUser, testPassword)
	assert.Error(t, err, "Expected error for empty base URL")

	c, err := NewClient(http.DefaultClient, "http://forge/", "", "")
	assert.NoError(t, err, "Error creating client without account")
	_, err = c.ListTokens(t.Context())
	assert.Error(t, err, "Expected error for account operation without account")
}

func TestValidTokenValue(t *testing.T) {
	testCases := []struct {
		desc  string
		value string
		valid bool
	}{
		{desc: "valid 40 hex chars", value: testToken, valid: true},
		{desc: "empty", value: "", valid: false},
		{desc: "too short", value: "abc123", valid: false},
		{desc: "too long", value: testToken + "0", valid: false},
		{desc: "uppercase hex", value: "2B9078F936307B1D44B85F8AD19D30838A7F2D0E", valid: false},
		{desc: "non hex characters", value: "zz9078f936307b1d44b85f8ad19d30838a7f2d0e", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.valid, ValidTokenValue(tc.value), "Unexpected structural check result")
		})
	}
}

func TestReady(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/version", r.URL.Path, "Unexpected path")
		w.WriteHeader(http.StatusOK)
	}))

	assert.True(t, c.Ready(t.Context()), "Expected forge to be ready")
}

func TestReadyNotUp(t *testing.T) {
	c, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	assert.False(t, c.Ready(t.Context()), "Expected forge to be unready on 503")

	server.Close()
	assert.False(t, c.Ready(t.Context()), "Expected forge to be unready when unreachable")
}

func TestListTokens(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/forge-admin/tokens", r.URL.Path, "Unexpected path")
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "Expected basic auth")
		assert.Equal(t, testUser, user, "Unexpected basic auth user")
		assert.Equal(t, testPassword, pass, "Unexpected basic auth password")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Token{
			{ID: 3, Name: "automation"},
			{ID: 7, Name: "leftover"},
		})
	}))

	tokens, err := c.ListTokens(t.Context())
	require.NoError(t, err, "Error listing tokens")
	assert.Len(t, tokens, 2, "Unexpected token count")
	assert.Equal(t, int64(3), tokens[0].ID, "Unexpected token id")
	assert.Equal(t, "leftover", tokens[1].Name, "Unexpected token name")
}

func TestListTokensAuthFailed(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.ListTokens(t.Context())
	assert.ErrorIs(t, err, ErrAuthFailed, "Expected auth failure")
}

func TestListTokensUnreachable(t *testing.T) {
	c, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := c.ListTokens(t.Context())
	assert.ErrorIs(t, err, ErrUnavailable, "Expected unavailable error")
}

func TestDeleteToken(t *testing.T) {
	testCases := []struct {
		desc    string
		status  int
		wantErr bool
	}{
		{desc: "deleted", status: http.StatusNoContent, wantErr: false},
		{desc: "already gone", status: http.StatusNotFound, wantErr: false},
		{desc: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method, "Unexpected method")
				assert.Equal(t, "/users/forge-admin/tokens/42", r.URL.Path, "Unexpected path")
				w.WriteHeader(tc.status)
			}))

			err := c.DeleteToken(t.Context(), 42)
			if tc.wantErr {
				assert.Error(t, err, "Expected delete error")
			} else {
				assert.NoError(t, err, "Error deleting token")
			}
		})
	}
}

func TestCreateToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method, "Unexpected method")
		assert.Equal(t, "/users/forge-admin/tokens", r.URL.Path, "Unexpected path")

		var body struct {
			Name   string   `json:"name"`
			Scopes []string `json:"scopes"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body), "Error decoding request body")
		assert.Equal(t, "automation", body.Name, "Unexpected token name")
		assert.Equal(t, []string{"all"}, body.Scopes, "Unexpected token scopes")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"sha1": testToken})
	}))

	value, err := c.CreateToken(t.Context(), "automation", []string{"all"})
	require.NoError(t, err, "Error creating token")
	assert.Equal(t, testToken, value, "Unexpected token value")
}

func TestCreateTokenMalformed(t *testing.T) {
	testCases := []struct {
		desc string
		sha1 string
	}{
		{desc: "empty value", sha1: ""},
		{desc: "short value", sha1: "abc"},
		{desc: "non hex value", sha1: "xx9078f936307b1d44b85f8ad19d30838a7f2d0e"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				_ = json.NewEncoder(w).Encode(map[string]string{"sha1": tc.sha1})
			}))

			_, err := c.CreateToken(t.Context(), "automation", []string{"all"})
			assert.ErrorIs(t, err, ErrMalformedToken, "Expected malformed token error")
		})
	}
}

func TestCreateTokenAuthFailed(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.CreateToken(t.Context(), "automation", []string{"all"})
	assert.ErrorIs(t, err, ErrAuthFailed, "Expected auth failure")
}

func TestProbeToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path, "Unexpected path")
		if r.Header.Get("Authorization") == "token "+testToken {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))

	assert.True(t, c.ProbeToken(t.Context(), testToken), "Expected valid token to probe successfully")
	assert.False(t, c.ProbeToken(t.Context(), "0000000000000000000000000000000000000000"), "Expected invalid token to fail probe")
}

func TestProbeTokenUnreachable(t *testing.T) {
	c, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	assert.False(t, c.ProbeToken(t.Context(), testToken), "Expected probe to fail when forge is unreachable")
}

func TestRegistrationToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/runners/registration-token", r.URL.Path, "Unexpected path")
		assert.Equal(t, "token "+testToken, r.Header.Get("Authorization"), "Unexpected authorization header")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "REG123456"})
	}))

	token, err := c.RegistrationToken(t.Context(), testToken)
	require.NoError(t, err, "Error requesting registration token")
	assert.Equal(t, "REG123456", token, "Unexpected registration token")
}

func TestRegistrationTokenEmpty(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": ""})
	}))

	_, err := c.RegistrationToken(t.Context(), testToken)
	assert.ErrorIs(t, err, ErrMalformedToken, "Expected malformed token error for empty registration token")
}

func TestRegistrationTokenAuthFailed(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.RegistrationToken(t.Context(), testToken)
	assert.ErrorIs(t, err, ErrAuthFailed, "Expected auth failure")
}
