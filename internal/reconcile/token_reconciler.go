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

// ErrVerificationFailed indicates that a freshly issued token did not authorize
// a probe call. Such a value is never persisted.
var ErrVerificationFailed = errors.New("freshly issued token failed verification")

// TokenReconciler guarantees that the forge holds exactly one machine token for
// the bootstrap account and that the token secret references it. It is safe to
// run repeatedly and concurrently: every remote mutation is a delete-then-create
// and every store mutation is a full overwrite.
type TokenReconciler struct {
	Config *cfg.BootstrapperConfig

	forge forge.Client
	store *secrets.Store
	log   *logrus.Logger
}

func NewTokenReconciler(config *cfg.BootstrapperConfig, forgeClient forge.Client, store *secrets.Store, log *logrus.Logger) *TokenReconciler {
	return &TokenReconciler{
		Config: config,
		forge:  forgeClient,
		store:  store,
		log:    log,
	}
}

// Reconcile runs one pass of the token lifecycle. It returns nil either when the
// stored token is still valid (no remote mutation at all) or when a freshly
// issued and verified token has been persisted.
func (r *TokenReconciler) Reconcile(ctx context.Context) error {
	r.log.Info("Waiting for forge to become ready")
	err := readiness.Wait(ctx, r.log, r.forge.Ready, r.Config.Forge.ReadyInterval.Duration, r.Config.Forge.ReadyAttempts)
	if err != nil {
		return err
	}

	valid, err := r.storedTokenValid(ctx)
	if err != nil {
		return err
	}
	if valid {
		r.log.Info("Stored token is still valid, nothing to do")
		return nil
	}

	if err := r.revokeAllTokens(ctx); err != nil {
		return err
	}

	r.log.Infof("Issuing new token %q", r.Config.Token.Name)
	value, err := r.forge.CreateToken(ctx, r.Config.Token.Name, r.Config.Token.Scopes)
	if err != nil {
		return fmt.Errorf("error issuing token: %w", err)
	}

	// Never persist a value the forge does not accept back.
	if !r.forge.ProbeToken(ctx, value) {
		return ErrVerificationFailed
	}

	r.log.Infof("Persisting token in secret %s/%s", r.Config.Secret.Namespace, r.Config.Secret.Name)
	if err := r.store.Upsert(ctx, r.Config.Secret.Name, r.Config.Secret.Key, value); err != nil {
		return fmt.Errorf("error persisting token: %w", err)
	}

	r.log.Info("Done.")
	return nil
}

// storedTokenValid implements the no-op fast path: a stored value that has the
// expected shape and still authorizes a call means the run must not touch the
// forge at all.
func (r *TokenReconciler) storedTokenValid(ctx context.Context) (bool, error) {
	value, found, err := r.store.Get(ctx, r.Config.Secret.Name, r.Config.Secret.Key)
	if err != nil {
		return false, fmt.Errorf("error reading stored token: %w", err)
	}
	if !found {
		r.log.Info("No stored token found, regenerating")
		return false, nil
	}
	if !forge.ValidTokenValue(value) {
		r.log.Info("Stored token has unexpected shape, regenerating")
		return false, nil
	}
	if !r.forge.ProbeToken(ctx, value) {
		r.log.Info("Stored token no longer validates, regenerating")
		return false, nil
	}
	return true, nil
}

// revokeAllTokens deletes every remote token of the bootstrap account before a
// new one is minted. The forge has no marker for "the token automation uses",
// so clearing all of them is the only way to keep the at-most-one invariant and
// avoid accumulating abandoned tokens. Individual deletion failures are logged
// and skipped; the invariant is restored as long as the new token lands in the
// secret store.
func (r *TokenReconciler) revokeAllTokens(ctx context.Context) error {
	tokens, err := r.forge.ListTokens(ctx)
	if err != nil {
		return fmt.Errorf("error listing tokens: %w", err)
	}

	r.log.Infof("Revoking %d existing token(s)", len(tokens))
	for _, token := range tokens {
		if err := r.forge.DeleteToken(ctx, token.ID); err != nil {
			r.log.Warnf("Failed to revoke token %d (%s), leaving it behind: %v", token.ID, token.Name, err)
		}
	}
	return nil
}
