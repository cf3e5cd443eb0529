package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

var (
	// ErrUnavailable indicates that the forge API could not be reached.
	ErrUnavailable = errors.New("forge API is unreachable")
	// ErrAuthFailed indicates that the forge rejected the bootstrap account credentials.
	ErrAuthFailed = errors.New("forge rejected the account credentials")
	// ErrMalformedToken indicates that the forge returned a token value of an
	// unexpected shape.
	ErrMalformedToken = errors.New("forge returned a malformed token value")
)

// tokenPattern is the expected shape of a forge access token: the hex encoding
// of a SHA-1 digest. This is a structural sanity check, not a cryptographic one.
var tokenPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// ValidTokenValue reports whether value has the structural shape of a forge access token.
func ValidTokenValue(value string) bool {
	return tokenPattern.MatchString(value)
}

// Token describes an access token as listed by the forge. The secret value is
// only returned at creation time and is not part of the listing.
type Token struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Client talks to the credential endpoints of a self-hosted forge.
type Client interface {
	// Ready reports whether the forge answers its version endpoint.
	Ready(ctx context.Context) bool
	// ListTokens returns all access tokens of the bootstrap account.
	ListTokens(ctx context.Context) ([]Token, error)
	// DeleteToken revokes a single access token of the bootstrap account.
	DeleteToken(ctx context.Context, id int64) error
	// CreateToken issues a new access token and returns its secret value.
	CreateToken(ctx context.Context, name string, scopes []string) (string, error)
	// ProbeToken reports whether value authorizes a call as some account. Any
	// transport or auth failure counts as "not confirmed valid".
	ProbeToken(ctx context.Context, value string) bool
	// RegistrationToken mints a single-use runner registration token, authorized
	// by a previously issued access token.
	RegistrationToken(ctx context.Context, value string) (string, error)
}

type client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
}

var _ Client = (*client)(nil)

// NewClient returns a Client for the forge at baseURL. The username/password
// pair is the bootstrap account used for the token management endpoints; it may
// be empty for callers that only use token-authorized endpoints.
func NewClient(httpClient *http.Client, baseURL, username, password string) (Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient must not be nil")
	}
	if len(baseURL) == 0 {
		return nil, fmt.Errorf("baseURL must not be empty")
	}

	return &client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		username:   username,
		password:   password,
	}, nil
}

func (c *client) Ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/version", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer drainAndClose(resp.Body)

	return resp.StatusCode == http.StatusOK
}

func (c *client) ListTokens(ctx context.Context) ([]Token, error) {
	req, err := c.newAccountRequest(ctx, http.MethodGet, c.tokensURL(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tokens: %v", ErrUnavailable, err)
	}
	defer drainAndClose(resp.Body)

	if err := checkAccountStatus(resp, http.StatusOK, "listing tokens"); err != nil {
		return nil, err
	}

	var tokens []Token
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("error decoding token list: %w", err)
	}
	return tokens, nil
}

func (c *client) DeleteToken(ctx context.Context, id int64) error {
	url := fmt.Sprintf("%s/%d", c.tokensURL(), id)
	req, err := c.newAccountRequest(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: deleting token %d: %v", ErrUnavailable, id, err)
	}
	defer drainAndClose(resp.Body)

	// The forge answers 204 on success; 404 means the token is already gone,
	// which is the state we want.
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return checkAccountStatus(resp, http.StatusNoContent, fmt.Sprintf("deleting token %d", id))
}

func (c *client) CreateToken(ctx context.Context, name string, scopes []string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"name":   name,
		"scopes": scopes,
	})
	if err != nil {
		return "", fmt.Errorf("error encoding token request: %w", err)
	}

	req, err := c.newAccountRequest(ctx, http.MethodPost, c.tokensURL(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: creating token: %v", ErrUnavailable, err)
	}
	defer drainAndClose(resp.Body)

	if err := checkAccountStatus(resp, http.StatusCreated, "creating token"); err != nil {
		return "", err
	}

	var created struct {
		SHA1 string `json:"sha1"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("error decoding token response: %w", err)
	}

	if !ValidTokenValue(created.SHA1) {
		return "", fmt.Errorf("%w: expected 40 hex characters", ErrMalformedToken)
	}
	return created.SHA1, nil
}

func (c *client) ProbeToken(ctx context.Context, value string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return false
	}
	setTokenAuth(req, value)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer drainAndClose(resp.Body)

	return resp.StatusCode == http.StatusOK
}

func (c *client) RegistrationToken(ctx context.Context, value string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/runners/registration-token", nil)
	if err != nil {
		return "", fmt.Errorf("error building registration token request: %w", err)
	}
	setTokenAuth(req, value)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: requesting registration token: %v", ErrUnavailable, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: requesting registration token: status %d", ErrAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d requesting registration token", resp.StatusCode)
	}

	var registration struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&registration); err != nil {
		return "", fmt.Errorf("error decoding registration token response: %w", err)
	}

	if len(registration.Token) == 0 {
		return "", fmt.Errorf("%w: registration token is empty", ErrMalformedToken)
	}
	return registration.Token, nil
}

func (c *client) tokensURL() string {
	return fmt.Sprintf("%s/users/%s/tokens", c.baseURL, c.username)
}

func (c *client) newAccountRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	if len(c.username) == 0 {
		return nil, fmt.Errorf("no bootstrap account configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error building %s request for %s: %w", method, url, err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func checkAccountStatus(resp *http.Response, want int, action string) error {
	switch resp.StatusCode {
	case want:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s: status %d", ErrAuthFailed, action, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected status %d %s", resp.StatusCode, action)
	}
}

func setTokenAuth(req *http.Request, value string) {
	req.Header.Set("Authorization", "token "+value)
	req.Header.Set("Accept", "application/json")
}

// drainAndClose reads the remainder of a response body so the underlying
// connection can be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
