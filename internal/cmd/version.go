package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/server/handlers"
)

var extended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for full details including Crucible and Go versions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		build := handlers.CurrentBuildInfo()
		w := cmd.OutOrStdout()

		_, _ = fmt.Fprintf(w, "%s %s\n", build.Name, build.Version)
		if !extended {
			return nil
		}

		_, _ = fmt.Fprintf(w, "Commit: %s\n", build.Commit)
		_, _ = fmt.Fprintf(w, "Built: %s\n", build.BuildDate)
		_, _ = fmt.Fprintf(w, "Go: %s\n\n", runtime.Version())

		version := crucible.GetVersion()
		_, _ = fmt.Fprintf(w, "Gofulmen: %s\n", version.Gofulmen)
		_, _ = fmt.Fprintf(w, "Crucible: %s\n", version.Crucible)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
}
