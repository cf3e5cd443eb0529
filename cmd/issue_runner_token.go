package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	controllerruntime "sigs.k8s.io/controller-runtime"

	cfg "github.com/julesintime/forge-bootstrapper/internal/config"
	"github.com/julesintime/forge-bootstrapper/internal/forge"
	logging "github.com/julesintime/forge-bootstrapper/internal/log"
	"github.com/julesintime/forge-bootstrapper/internal/reconcile"
	"github.com/julesintime/forge-bootstrapper/internal/scheme"
	"github.com/julesintime/forge-bootstrapper/internal/secrets"
	"github.com/julesintime/forge-bootstrapper/internal/util"
)

// issueRunnerTokenCmd represents the issue-runner-token command
var issueRunnerTokenCmd = &cobra.Command{
	Use:   "issue-runner-token",
	Short: "Issues a fresh runner registration token and publishes it to the cluster secret store",
	Long: `Issues a fresh runner registration token and publishes it to the cluster secret store.
Registration tokens are single-use, so every run replaces the previous one.
Requires a primary token synced by "sync-token"; the bootstrap account is not used.`,
	Args: cobra.ExactArgs(1),
	ArgAliases: []string{
		"configFile",
	},
	Example: `  forge-bootstrapper issue-runner-token "./config.yaml"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFilePath := args[0]

		log := logging.GetLogger()
		log.Infof("Starting runner token issuance with config file: %s.", configFilePath)

		// disable controller-runtime logging
		controllerruntime.SetLogger(logr.Discard())

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

		platformCluster, err := util.GetCluster(cmd.Flag(FlagKubeConfig).Value.String(), "platform", scheme.NewSecretScheme())
		if err != nil {
			return fmt.Errorf("failed to get platform cluster: %w", err)
		}

		forgeClient, err := forge.NewClient(&http.Client{Timeout: 30 * time.Second}, config.Forge.URL, "", "")
		if err != nil {
			return fmt.Errorf("failed to create forge client: %w", err)
		}

		store := secrets.NewStore(platformCluster.Client(), config.Secret.Namespace, log)

		issuer := reconcile.NewRunnerTokenIssuer(config, forgeClient, store, log)
		if err = issuer.Issue(cmd.Context()); err != nil {
			log.Errorf("Runner token issuance failed: %v", err)
			return err
		}

		log.Info("Runner token issuance completed")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(issueRunnerTokenCmd)
	issueRunnerTokenCmd.Flags().SortFlags = false
	issueRunnerTokenCmd.Flags().String(FlagKubeConfig, "", "Kubernetes configuration file")
}
