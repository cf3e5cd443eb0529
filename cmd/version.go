package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	apimachineryversion "k8s.io/apimachinery/pkg/version"

	"github.com/julesintime/forge-bootstrapper/internal/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long: `Print the version information of the forge bootstrapper CLI.

This command displays detailed version information including the build version,
Git commit, build date, Go version, and platform information.`,
	Run: func(cmd *cobra.Command, args []string) {
		ownVersion := version.GetVersion()

		if ownVersion == nil {
			fmt.Println("Version information not available")
			return
		}

		printVersion(ownVersion, "Forge Bootstrapper CLI")
	},
}

func printVersion(v *apimachineryversion.Info, header string) {
	fmt.Printf("\n%s\n", header)
	fmt.Printf("========================\n")
	fmt.Printf("Version:      %s\n", v.GitVersion)
	if v.GitCommit != "" {
		fmt.Printf("Git Commit:   %s\n", v.GitCommit)
	}
	if v.GitTreeState != "" {
		fmt.Printf("Git State:    %s\n", v.GitTreeState)
	}
	if v.BuildDate != "" {
		fmt.Printf("Build Date:   %s\n", v.BuildDate)
	}
	fmt.Printf("Go Version:   %s\n", v.GoVersion)
	fmt.Printf("Compiler:     %s\n", v.Compiler)
	fmt.Printf("Platform:     %s\n", v.Platform)
	fmt.Printf("===================\n")
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
