package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	controllerruntime "sigs.k8s.io/controller-runtime"

	adminconfig "github.com/julesintime/forge-bootstrapper/internal/admin-config"
	cfg "github.com/julesintime/forge-bootstrapper/internal/config"
	"github.com/julesintime/forge-bootstrapper/internal/forge"
	logging "github.com/julesintime/forge-bootstrapper/internal/log"
	"github.com/julesintime/forge-bootstrapper/internal/reconcile"
	"github.com/julesintime/forge-bootstrapper/internal/scheme"
	"github.com/julesintime/forge-bootstrapper/internal/secrets"
	"github.com/julesintime/forge-bootstrapper/internal/util"
)

// syncTokenCmd represents the sync-token command
var syncTokenCmd = &cobra.Command{
	Use:   "sync-token",
	Short: "Reconciles the forge machine token into the cluster secret store",
	Long: `Reconciles the forge machine token into the cluster secret store.
A stored token that still validates is left untouched; otherwise all remote
tokens of the bootstrap account are revoked and a fresh one is issued,
verified and persisted.`,
	Args: cobra.ExactArgs(1),
	ArgAliases: []string{
		"configFile",
	},
	Example: `  forge-bootstrapper sync-token "./config.yaml"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFilePath := args[0]

		log := logging.GetLogger()
		log.Infof("Starting token reconciliation with config file: %s.", configFilePath)

		// disable controller-runtime logging
		controllerruntime.SetLogger(logr.Discard())

		// Configuration
		config := &cfg.BootstrapperConfig{}
		err := config.ReadFromFile(configFilePath)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		config.SetDefaults()
		err = config.Validate()
		if err != nil {
			return fmt.Errorf("invalid config file: %w", err)
		}

		admin, err := adminconfig.ParseConfig(cmd.Flag(FlagAdminConfig).Value.String())
		if err != nil {
			return fmt.Errorf("failed to read admin config file: %w", err)
		}
		if err = admin.Validate(); err != nil {
			return fmt.Errorf("invalid admin config file: %w", err)
		}

		// Platform cluster
		platformCluster, err := util.GetCluster(cmd.Flag(FlagKubeConfig).Value.String(), "platform", scheme.NewSecretScheme())
		if err != nil {
			return fmt.Errorf("failed to get platform cluster: %w", err)
		}

		forgeClient, err := forge.NewClient(&http.Client{Timeout: 30 * time.Second}, config.Forge.URL, admin.Account.Username, admin.Account.Password)
		if err != nil {
			return fmt.Errorf("failed to create forge client: %w", err)
		}

		store := secrets.NewStore(platformCluster.Client(), config.Secret.Namespace, log)

		r := reconcile.NewTokenReconciler(config, forgeClient, store, log)
		if err = r.Reconcile(cmd.Context()); err != nil {
			log.Errorf("Token reconciliation failed: %v", err)
			return err
		}

		log.Info("Token reconciliation completed")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncTokenCmd)
	syncTokenCmd.Flags().SortFlags = false
	syncTokenCmd.Flags().String(FlagAdminConfig, "", "Bootstrap account credentials file with the forge admin username and password")
	syncTokenCmd.Flags().String(FlagKubeConfig, "", "Kubernetes configuration file")

	if err := syncTokenCmd.MarkFlagRequired(FlagAdminConfig); err != nil {
		panic(err)
	}
}
