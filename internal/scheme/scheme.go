package scheme

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
)

func NewSecretScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()

	// Register core types; the bootstrapper only touches Secrets
	utilruntime.Must(corev1.AddToScheme(scheme))

	return scheme
}
