package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/shadercat/internal/cli/output"
	"github.com/leapstack-labs/shadercat/internal/shader"
)

// ShaderInfo describes one catalog entry for display.
type ShaderInfo struct {
	Name      string `json:"name" yaml:"name"`
	Path      string `json:"path" yaml:"path"`
	Partition string `json:"partition" yaml:"partition"`
	Shadowed  bool   `json:"shadowed,omitempty" yaml:"shadowed,omitempty"`
}

// ListOutput is the structured result of the list command.
type ListOutput struct {
	Shaders []ShaderInfo `json:"shaders" yaml:"shaders"`
	System  int          `json:"system" yaml:"system"`
	Custom  int          `json:"custom" yaml:"custom"`
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var systemOnly, customOnly, sorted bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available shaders",
		Long: `List the bundled (system) shaders followed by the custom shaders found in
the user shader directories.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # List all shaders
  shadercat list

  # Only user-installed shaders, alphabetically
  shadercat list --custom-only --sorted

  # List shaders as JSON
  shadercat list --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContextWithoutStore(cmd)
			if err != nil {
				return err
			}

			out := buildList(cmdCtx.Catalog, !customOnly, !systemOnly)
			if sorted {
				sortShaders(out.Shaders)
			}
			return renderList(cmdCtx.Renderer, out)
		},
	}

	cmd.Flags().BoolVar(&systemOnly, "system-only", false, "Only list bundled shaders")
	cmd.Flags().BoolVar(&customOnly, "custom-only", false, "Only list custom shaders")
	cmd.Flags().BoolVar(&sorted, "sorted", false, "Sort by name instead of catalog order")
	cmd.MarkFlagsMutuallyExclusive("system-only", "custom-only")

	return cmd
}

func buildList(cat *shader.Catalog, withSystem, withCustom bool) ListOutput {
	system := cat.SystemShaders()
	custom := cat.CustomShaders()

	out := ListOutput{System: len(system), Custom: len(custom)}
	if withSystem {
		for _, e := range system {
			out.Shaders = append(out.Shaders, ShaderInfo{Name: e.Name, Path: e.Path, Partition: "system"})
		}
	}
	if withCustom {
		for _, e := range custom {
			_, shadowed := lookupIn(system, e.Name)
			out.Shaders = append(out.Shaders, ShaderInfo{Name: e.Name, Path: e.Path, Partition: "custom", Shadowed: shadowed})
		}
	}
	return out
}

// sortShaders orders entries by name using language-aware collation.
func sortShaders(list []ShaderInfo) {
	c := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
	sort.SliceStable(list, func(i, j int) bool {
		return c.CompareString(list[i].Name, list[j].Name) < 0
	})
}

func lookupIn(entries []shader.Entry, name string) (shader.Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return shader.Entry{}, false
}

func renderList(r *output.Renderer, out ListOutput) error {
	if ok, err := r.Structured(out); ok {
		return err
	}

	r.Header(1, fmt.Sprintf("Shaders (%d system, %d custom)", out.System, out.Custom))
	if len(out.Shaders) == 0 {
		r.Println("No shaders found.")
		return nil
	}

	rows := make([][]string, 0, len(out.Shaders))
	for _, s := range out.Shaders {
		part := s.Partition
		if s.Shadowed {
			part += " (shadowed)"
		}
		rows = append(rows, []string{s.Name, part, s.Path})
	}
	r.Table([]string{"Name", "Partition", "Path"}, rows)
	return nil
}
