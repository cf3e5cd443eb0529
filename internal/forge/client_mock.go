package forge

import (
	"context"
	"fmt"
)

// MockClient is a mock implementation of the Client interface for testing purposes.
// Tokens maps token ids to their secret values; ValidValues holds the values the
// probe endpoint accepts.
type MockClient struct {
	Up          bool
	Tokens      map[int64]Token
	ValidValues map[string]bool

	// NextValue is returned by the next CreateToken call.
	NextValue string
	// RegistrationValue is returned by RegistrationToken when the presented
	// value is valid.
	RegistrationValue string

	// FailDeleteIDs lists token ids whose deletion fails.
	FailDeleteIDs map[int64]bool
	// VerifyFails makes freshly created tokens fail the probe.
	VerifyFails bool
	// CreateErr, when set, is returned by CreateToken.
	CreateErr error
	// ListErr, when set, is returned by ListTokens.
	ListErr error

	ReadyCalls        int
	ListCalls         int
	DeleteCalls       int
	CreateCalls       int
	ProbeCalls        int
	RegistrationCalls int

	nextID int64
}

var _ Client = (*MockClient)(nil)

func NewMockClient() *MockClient {
	return &MockClient{
		Up:            true,
		Tokens:        map[int64]Token{},
		ValidValues:   map[string]bool{},
		FailDeleteIDs: map[int64]bool{},
	}
}

// AddToken registers an existing remote token and returns its id.
func (m *MockClient) AddToken(name, value string, valid bool) int64 {
	m.nextID++
	m.Tokens[m.nextID] = Token{ID: m.nextID, Name: name}
	if valid {
		m.ValidValues[value] = true
	}
	return m.nextID
}

func (m *MockClient) Ready(_ context.Context) bool {
	m.ReadyCalls++
	return m.Up
}

func (m *MockClient) ListTokens(_ context.Context) ([]Token, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	tokens := make([]Token, 0, len(m.Tokens))
	for _, t := range m.Tokens {
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func (m *MockClient) DeleteToken(_ context.Context, id int64) error {
	m.DeleteCalls++
	if m.FailDeleteIDs[id] {
		return fmt.Errorf("unexpected status 500 deleting token %d", id)
	}
	delete(m.Tokens, id)
	return nil
}

func (m *MockClient) CreateToken(_ context.Context, name string, _ []string) (string, error) {
	m.CreateCalls++
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	if !ValidTokenValue(m.NextValue) {
		return "", fmt.Errorf("%w: expected 40 hex characters", ErrMalformedToken)
	}
	m.nextID++
	m.Tokens[m.nextID] = Token{ID: m.nextID, Name: name}
	if !m.VerifyFails {
		m.ValidValues[m.NextValue] = true
	}
	return m.NextValue, nil
}

func (m *MockClient) ProbeToken(_ context.Context, value string) bool {
	m.ProbeCalls++
	if !m.Up {
		return false
	}
	return m.ValidValues[value]
}

func (m *MockClient) RegistrationToken(_ context.Context, value string) (string, error) {
	m.RegistrationCalls++
	if !m.ValidValues[value] {
		return "", fmt.Errorf("%w: requesting registration token: status 401", ErrAuthFailed)
	}
	return m.RegistrationValue, nil
}
