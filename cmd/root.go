package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/julesintime/forge-bootstrapper/internal/log"
)

const (
	FlagAdminConfig = "admin-config"
	FlagKubeConfig  = "kubeconfig"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "forge-bootstrapper",
	Short: "The forge bootstrapper CLI",
	Long: `The forge bootstrapper CLI reconciles machine credentials for a
self-hosted code forge into cluster secrets consumed by dependent automation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringP("verbosity", "v", "info", "Set the verbosity level (panic, fatal, error, warn, info, debug, trace)")
	cobra.OnInitialize(func() {
		verbosity, err := RootCmd.PersistentFlags().GetString("verbosity")
		if err != nil {
			log.InitLogger("info")
			return
		}
		log.InitLogger(verbosity)
	})
}
