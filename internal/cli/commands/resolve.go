package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/shadercat/internal/cli/output"
	"github.com/leapstack-labs/shadercat/internal/params"
	"github.com/leapstack-labs/shadercat/internal/prefs"
)

// ResolveOutput is the structured result of the resolve command.
type ResolveOutput struct {
	Context   string     `json:"context" yaml:"context"`
	Key       string     `json:"key" yaml:"key"`
	Stored    *string    `json:"stored,omitempty" yaml:"stored,omitempty"`
	Found     bool       `json:"found" yaml:"found"`
	Shader    string     `json:"shader,omitempty" yaml:"shader,omitempty"`
	Path      string     `json:"path,omitempty" yaml:"path,omitempty"`
	Inherited bool       `json:"inherited" yaml:"inherited"`
	Fallback  bool       `json:"fallback" yaml:"fallback"`
	Params    params.Map `json:"params,omitempty" yaml:"params,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	var withParams bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show which shader applies",
		Long: `Resolve the active shader for the global defaults or for one system.

Without a stored selection the global context uses the bundled fallback
shader and a system context uses the global selection. A system whose
stored shader no longer exists resolves to no shader.`,
		Example: `  # Global default
  shadercat resolve

  # Shader and parameter overrides for one system
  shadercat resolve --system snes --params`,
		Args: cobra.NoArgs,
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

			out, err := buildResolve(cmdCtx, ctx, withParams)
			if err != nil {
				return err
			}
			return renderResolve(cmdCtx.Renderer, out)
		},
	}

	cmd.Flags().String("system", "", "Emulated system ID (default: global)")
	cmd.Flags().BoolVar(&withParams, "params", false, "Include parameter overrides for the resolved shader")

	return cmd
}

func buildResolve(cmdCtx *CommandContext, ctx prefs.Context, withParams bool) (ResolveOutput, error) {
	key := cmdCtx.Resolver.ShaderKey(ctx)
	out := ResolveOutput{Context: ctx.String(), Key: key}

	stored, ok, err := cmdCtx.Store.GetString(key)
	if err != nil {
		return out, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if ok {
		out.Stored = &stored
	}

	e, found, err := cmdCtx.Resolver.ActiveShader(ctx)
	if err != nil {
		return out, err
	}
	out.Found = found
	if !found {
		return out, nil
	}

	out.Shader = e.Name
	out.Path = e.Path

	// A system with nothing stored inherits the global selection.
	if !ctx.IsGlobal() && !ok {
		out.Inherited = true
	}
	if ctx.IsGlobal() || out.Inherited {
		out.Fallback, err = globalUsesFallback(cmdCtx)
		if err != nil {
			return out, err
		}
	}

	if withParams {
		m, _, err := cmdCtx.Resolver.Parameters(e.Name, ctx)
		if err != nil {
			return out, err
		}
		if m == nil {
			m = params.Map{}
		}
		out.Params = m
	}

	return out, nil
}

// globalUsesFallback reports whether the global selection is missing or
// names a shader that is not installed.
func globalUsesFallback(cmdCtx *CommandContext) (bool, error) {
	stored, ok, err := cmdCtx.Store.GetString(prefs.ShaderKey(prefs.Global()))
	if err != nil {
		return false, fmt.Errorf("failed to read global selection: %w", err)
	}
	if !ok {
		return true, nil
	}
	_, exists := cmdCtx.Catalog.Lookup(stored)
	return !exists, nil
}

func renderResolve(r *output.Renderer, out ResolveOutput) error {
	if ok, err := r.Structured(out); ok {
		return err
	}

	r.Header(1, "Active shader ("+out.Context+")")
	r.KeyValue("Key", out.Key)
	if out.Stored != nil {
		r.KeyValue("Stored", strconv.Quote(*out.Stored))
	} else {
		r.KeyValue("Stored", r.Muted("(none)"))
	}

	if !out.Found {
		r.KeyValue("Shader", r.Muted("(none)"))
		r.Warning(fmt.Sprintf("stored shader %q is not installed; no shader applies", deref(out.Stored)))
		return nil
	}

	shaderName := out.Shader
	if out.Inherited {
		shaderName += " " + r.Muted("(from global)")
	}
	if out.Fallback {
		shaderName += " " + r.Muted("(fallback)")
	}
	r.KeyValue("Shader", shaderName)
	r.KeyValue("Preset", out.Path)

	if out.Params != nil {
		names := out.Params.Names()
		if len(names) == 0 {
			r.KeyValue("Parameters", r.Muted("(none)"))
			return nil
		}
		rows := make([][]string, 0, len(names))
		for _, n := range names {
			rows = append(rows, []string{n, strconv.FormatFloat(out.Params[n], 'g', -1, 64)})
		}
		r.Table([]string{"Parameter", "Value"}, rows)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
