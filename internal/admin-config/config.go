package adminconfig

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Config holds the bootstrap account of the forge. The account is provisioned
// externally and is only used before a machine token exists; the reconcilers
// never modify it.
type Config struct {
	Account Account `json:"account"`
}

// Account is the name/password pair of the forge administrator account.
type Account struct {
	// Username is the name of the administrator account.
	Username string `json:"username,omitempty"`
	// Password is the password of the administrator account.
	Password string `json:"password,omitempty"`
}

// ParseConfig reads a YAML configuration file and returns a Config object.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read admin config file: %w", err)
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Account.Username == "" {
		return fmt.Errorf("admin account username is required")
	}
	if c.Account.Password == "" {
		return fmt.Errorf("admin account password is required")
	}
	return nil
}
