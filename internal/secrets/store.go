package secrets

import (
	"context"
	"fmt"

	"github.com/openmcp-project/controller-utils/pkg/resources"
	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Store reads and writes opaque credential secrets in a single namespace.
// Absence of a secret is a normal state, not an error.
type Store struct {
	client    client.Client
	namespace string
	log       *logrus.Logger
}

func NewStore(c client.Client, namespace string, log *logrus.Logger) *Store {
	return &Store{
		client:    c,
		namespace: namespace,
		log:       log,
	}
}

// Get returns the value stored under key in the named secret. The second
// return value is false when the secret or the key does not exist.
func (s *Store) Get(ctx context.Context, name, key string) (string, bool, error) {
	secret := &corev1.Secret{}
	err := s.client.Get(ctx, client.ObjectKey{Name: name, Namespace: s.namespace}, secret)
	if err != nil {
		if apierrors.IsNotFound(err) {
			s.log.Debugf("Secret %s/%s not found", s.namespace, name)
			return "", false, nil
		}
		return "", false, fmt.Errorf("error reading secret %s/%s: %w", s.namespace, name, err)
	}

	value, ok := secret.Data[key]
	if !ok {
		s.log.Debugf("Secret %s/%s has no key %s", s.namespace, name, key)
		return "", false, nil
	}
	return string(value), true, nil
}

// Upsert creates or fully replaces the named secret with a single data key.
// The overwrite semantics make concurrent runs converge on the last write.
func (s *Store) Upsert(ctx context.Context, name, key, value string) error {
	data := map[string][]byte{
		key: []byte(value),
	}

	secretMutator := resources.NewSecretMutator(name, s.namespace, data, corev1.SecretTypeOpaque)
	s.log.Debugf("Storing credential in secret %s", secretMutator.String())
	if err := resources.CreateOrUpdateResource(ctx, s.client, secretMutator); err != nil {
		return fmt.Errorf("error creating or updating secret %s/%s: %w", s.namespace, name, err)
	}
	return nil
}

// Delete removes the named secret. A secret that is already gone is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	secret := &corev1.Secret{}
	secret.Name = name
	secret.Namespace = s.namespace

	if err := s.client.Delete(ctx, secret); err != nil {
		if apierrors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("error deleting secret %s/%s: %w", s.namespace, name, err)
	}
	return nil
}
