package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewUseCommand creates the use command.
func NewUseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <name>",
		Short: "Select a shader",
		Long: `Store a shader as the global default or as the selection for one system.

The shader must exist in the catalog. Only the name is stored, so a custom
shader that is later removed stops applying.`,
		Example: `  # Global default
  shadercat use CRT-Lottes

  # Only for one system
  shadercat use xBR --system snes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := contextFromFlag(cmd)
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			e, ok := cmdCtx.Catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("shader not found: %s\nHint: run 'shadercat list' to see available shaders", args[0])
			}

			if ctx.IsGlobal() {
				err = cmdCtx.Resolver.SetDefaultShader(e)
			} else {
				err = cmdCtx.Resolver.SetSystemShader(ctx.SystemID(), e)
			}
			if err != nil {
				return err
			}

			cmdCtx.Renderer.Success(fmt.Sprintf("%s now uses %s", ctx, e.Name))
			return nil
		},
	}

	cmd.Flags().String("system", "", "Emulated system ID (default: global)")

	return cmd
}

// NewUnsetCommand creates the unset command.
func NewUnsetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset",
		Short: "Clear a system's shader selection",
		Long: `Remove the shader selection of one system so that it follows the global
default again.`,
		Example: `  shadercat unset --system snes`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := contextFromFlag(cmd)
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cmdCtx.Resolver.ClearSystemShader(ctx.SystemID()); err != nil {
				return err
			}

			cmdCtx.Renderer.Success(fmt.Sprintf("%s now follows the global default", ctx))
			return nil
		},
	}

	cmd.Flags().String("system", "", "Emulated system ID")
	_ = cmd.MarkFlagRequired("system")

	return cmd
}
