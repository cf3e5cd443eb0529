package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	cfg "github.com/julesintime/forge-bootstrapper/internal/config"
	"github.com/julesintime/forge-bootstrapper/internal/forge"
	"github.com/julesintime/forge-bootstrapper/internal/readiness"
	"github.com/julesintime/forge-bootstrapper/internal/secrets"
)

// ErrDependencyMissing indicates that the primary token secret does not exist.
// The issuer never falls back to the bootstrap account; running sync-token
// first is the fix.
var ErrDependencyMissing = errors.New("primary token secret is missing")

// RunnerTokenIssuer mints a runner registration token using the primary token
// and republishes it. Registration tokens are single-use, so every run replaces
// the previous one unconditionally; there is no validity fast path.
type RunnerTokenIssuer struct {
	Config *cfg.BootstrapperConfig

	forge forge.Client
	store *secrets.Store
	log   *logrus.Logger
}

func NewRunnerTokenIssuer(config *cfg.BootstrapperConfig, forgeClient forge.Client, store *secrets.Store, log *logrus.Logger) *RunnerTokenIssuer {
	return &RunnerTokenIssuer{
		Config: config,
		forge:  forgeClient,
		store:  store,
		log:    log,
	}
}

func (i *RunnerTokenIssuer) Issue(ctx context.Context) error {
	primary, found, err := i.store.Get(ctx, i.Config.Secret.Name, i.Config.Secret.Key)
	if err != nil {
		return fmt.Errorf("error reading primary token: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: secret %s/%s", ErrDependencyMissing, i.Config.Secret.Namespace, i.Config.Secret.Name)
	}

	i.log.Info("Waiting for forge to become ready")
	err = readiness.Wait(ctx, i.log, i.forge.Ready, i.Config.Forge.ReadyInterval.Duration, i.Config.Forge.ReadyAttempts)
	if err != nil {
		return err
	}

	i.log.Info("Requesting runner registration token")
	token, err := i.forge.RegistrationToken(ctx, primary)
	if err != nil {
		return fmt.Errorf("error requesting registration token: %w", err)
	}

	// Delete before create so consumers never observe a stale value under the
	// same name while the replacement propagates.
	if err := i.store.Delete(ctx, i.Config.RunnerSecret.Name); err != nil {
		return fmt.Errorf("error removing previous registration token: %w", err)
	}

	i.log.Infof("Persisting registration token in secret %s/%s", i.Config.Secret.Namespace, i.Config.RunnerSecret.Name)
	if err := i.store.Upsert(ctx, i.Config.RunnerSecret.Name, i.Config.RunnerSecret.Key, token); err != nil {
		return fmt.Errorf("error persisting registration token: %w", err)
	}

	i.log.Info("Done.")
	return nil
}
