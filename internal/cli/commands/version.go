package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/shadercat/internal/prefs"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display shadercat version and preference key scheme information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "shadercat v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Shader catalog for emulator video filters (key scheme v%d)\n", prefs.KeySchemeVersion)
		},
	}
}
