package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/shadercat/internal/cli/output"
	"github.com/leapstack-labs/shadercat/internal/params"
	"github.com/leapstack-labs/shadercat/internal/prefs"
)

// ParamsOutput is the structured result of the params commands.
type ParamsOutput struct {
	Shader  string     `json:"shader" yaml:"shader"`
	Context string     `json:"context" yaml:"context"`
	Key     string     `json:"key" yaml:"key"`
	Stored  bool       `json:"stored" yaml:"stored"`
	Params  params.Map `json:"params" yaml:"params"`
}

// NewParamsCommand creates the params command group.
func NewParamsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Manage shader parameter overrides",
		Long: `Read, replace, or clear the parameter overrides stored for a shader.

Overrides are stored per shader, either globally or for one system. A
system never inherits the global overrides.`,
	}

	cmd.PersistentFlags().String("system", "", "Emulated system ID (default: global)")

	cmd.AddCommand(newParamsGetCommand())
	cmd.AddCommand(newParamsSetCommand())
	cmd.AddCommand(newParamsClearCommand())

	return cmd
}

func newParamsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "get <shader>",
		Short:   "Show parameter overrides",
		Example: `  shadercat params get CRT-Lottes --system nes`,
		Args:    cobra.ExactArgs(1),
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

			m, ok, err := cmdCtx.Resolver.Parameters(args[0], ctx)
			if err != nil {
				return err
			}
			if m == nil {
				m = params.Map{}
			}

			return renderParams(cmdCtx.Renderer, ParamsOutput{
				Shader:  args[0],
				Context: ctx.String(),
				Key:     prefs.ParamsKey(args[0], ctx),
				Stored:  ok,
				Params:  m,
			})
		},
	}
}

func newParamsSetCommand() *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:   "set <shader> <name=value>...",
		Short: "Store parameter overrides",
		Long: `Store parameter overrides for a shader. Values are decimal numbers.

By default the given assignments replace everything stored before; use
--merge to update individual parameters.`,
		Example: `  shadercat params set CRT-Lottes gamma=2.2 scanline_strength=0.35
  shadercat params set CRT-Lottes gamma=1.8 --system nes --merge`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := contextFromFlag(cmd)
			if err != nil {
				return err
			}

			assigned, err := params.ParseAssignments(args[1:])
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			name := args[0]
			if _, ok := cmdCtx.Catalog.Lookup(name); !ok {
				cmdCtx.Renderer.Warning(fmt.Sprintf("shader %s is not installed; storing overrides anyway", name))
			}

			m := params.Map{}
			if merge {
				existing, _, err := cmdCtx.Resolver.Parameters(name, ctx)
				if err != nil {
					return err
				}
				for k, v := range existing {
					m[k] = v
				}
			}
			for k, v := range assigned {
				m[k] = v
			}

			if err := cmdCtx.Resolver.SetParameters(name, ctx, m); err != nil {
				return err
			}

			cmdCtx.Renderer.Success(fmt.Sprintf("stored %d parameter(s) for %s in %s", len(m), name, ctx))
			return nil
		},
	}

	cmd.Flags().BoolVar(&merge, "merge", false, "Keep stored parameters that are not assigned")

	return cmd
}

func newParamsClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "clear <shader>",
		Short:   "Remove parameter overrides",
		Example: `  shadercat params clear CRT-Lottes --system nes`,
		Args:    cobra.ExactArgs(1),
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

			if err := cmdCtx.Resolver.ClearParameters(args[0], ctx); err != nil {
				return err
			}

			cmdCtx.Renderer.Success(fmt.Sprintf("cleared parameters for %s in %s", args[0], ctx))
			return nil
		},
	}
}

func renderParams(r *output.Renderer, out ParamsOutput) error {
	if ok, err := r.Structured(out); ok {
		return err
	}

	r.Header(1, fmt.Sprintf("Parameters: %s (%s)", out.Shader, out.Context))
	r.KeyValue("Key", out.Key)
	if !out.Stored {
		r.Println(r.Muted("No overrides stored."))
		return nil
	}

	names := out.Params.Names()
	if len(names) == 0 {
		r.Println(r.Muted("Stored value has no valid entries."))
		return nil
	}

	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{n, strconv.FormatFloat(out.Params[n], 'g', -1, 64)})
	}
	r.Table([]string{"Parameter", "Value"}, rows)
	return nil
}
