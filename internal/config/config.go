package config

import (
	"os"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"sigs.k8s.io/yaml"
)

type BootstrapperConfig struct {
	Forge        Forge        `json:"forge"`
	Token        Token        `json:"token"`
	Secret       Secret       `json:"secret"`
	RunnerSecret RunnerSecret `json:"runnerSecret"`
}

type Forge struct {
	// URL is the API base URL of the forge, e.g. https://forge.example.com/api/v1.
	URL string `json:"url"`
	// ReadyInterval is the delay between liveness probes while waiting for the forge.
	ReadyInterval metav1.Duration `json:"readyInterval"`
	// ReadyAttempts bounds the liveness probes. Zero means wait until the
	// surrounding job deadline cancels the run.
	ReadyAttempts int `json:"readyAttempts"`
}

type Token struct {
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
}

type Secret struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Key       string `json:"key"`
}

type RunnerSecret struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

func (c *BootstrapperConfig) ReadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

func (c *BootstrapperConfig) SetDefaults() {
	if c.Forge.ReadyInterval.Duration == 0 {
		c.Forge.ReadyInterval = metav1.Duration{Duration: 5 * time.Second}
	}

	if len(c.Token.Name) == 0 {
		c.Token.Name = "automation"
	}

	if len(c.Token.Scopes) == 0 {
		c.Token.Scopes = []string{"all"}
	}

	if len(c.Secret.Name) == 0 {
		c.Secret.Name = "forge-api-token"
	}

	if len(c.Secret.Key) == 0 {
		c.Secret.Key = "token"
	}

	if len(c.RunnerSecret.Name) == 0 {
		c.RunnerSecret.Name = "forge-runner-token"
	}

	if len(c.RunnerSecret.Key) == 0 {
		c.RunnerSecret.Key = "token"
	}
}

func (c *BootstrapperConfig) Validate() error {
	errs := field.ErrorList{}

	if len(c.Forge.URL) == 0 {
		errs = append(errs, field.Required(field.NewPath("forge.url"), "forge url is required"))
	}

	if c.Forge.ReadyInterval.Duration < 0 {
		errs = append(errs, field.Invalid(field.NewPath("forge.readyInterval"), c.Forge.ReadyInterval.Duration.String(), "ready interval must not be negative"))
	}

	if c.Forge.ReadyAttempts < 0 {
		errs = append(errs, field.Invalid(field.NewPath("forge.readyAttempts"), c.Forge.ReadyAttempts, "ready attempts must not be negative"))
	}

	if len(c.Secret.Namespace) == 0 {
		errs = append(errs, field.Required(field.NewPath("secret.namespace"), "secret namespace is required"))
	}

	if c.RunnerSecret.Name == c.Secret.Name {
		errs = append(errs, field.Invalid(field.NewPath("runnerSecret.name"), c.RunnerSecret.Name, "runner secret name must differ from the token secret name"))
	}

	return errs.ToAggregate()
}
