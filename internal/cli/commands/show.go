package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/shadercat/internal/cli/output"
	"github.com/leapstack-labs/shadercat/internal/shader"
)

// ShowOutput is the structured result of the show command.
type ShowOutput struct {
	Name      string   `json:"name" yaml:"name"`
	Path      string   `json:"path" yaml:"path"`
	Bundle    string   `json:"bundle" yaml:"bundle"`
	Partition string   `json:"partition" yaml:"partition"`
	Fallback  bool     `json:"fallback" yaml:"fallback"`
	Presets   []string `json:"presets" yaml:"presets"`
	Shadows   []string `json:"shadows,omitempty" yaml:"shadows,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show details of one shader",
		Long: `Show where a shader lives, which partition it belongs to, and whether a
custom shader with the same name is hidden behind it.

Names are matched exactly and case-sensitively.`,
		Example: `  shadercat show Pixellate
  shadercat show "CRT Royale" --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContextWithoutStore(cmd)
			if err != nil {
				return err
			}

			out, err := buildShow(cmdCtx.Catalog, args[0])
			if err != nil {
				return err
			}
			return renderShow(cmdCtx.Renderer, out)
		},
	}
}

func buildShow(cat *shader.Catalog, name string) (ShowOutput, error) {
	e, ok := cat.Lookup(name)
	if !ok {
		return ShowOutput{}, fmt.Errorf("shader not found: %s\nHint: run 'shadercat list' to see available shaders", name)
	}

	out := ShowOutput{
		Name:      e.Name,
		Path:      e.Path,
		Bundle:    filepath.Dir(e.Path),
		Partition: partition(cat, e),
		Fallback:  e.Name == shader.FallbackName && partition(cat, e) == "system",
		Presets:   presetsIn(filepath.Dir(e.Path)),
	}

	if out.Partition == "system" {
		for _, c := range cat.CustomShaders() {
			if c.Name == e.Name {
				out.Shadows = append(out.Shadows, c.Path)
			}
		}
	}

	return out, nil
}

// presetsIn lists every definition file in a bundle, including the ones
// the catalog ignored.
func presetsIn(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && !strings.HasPrefix(e.Name(), ".") && filepath.Ext(e.Name()) == shader.DefinitionExt {
			out = append(out, e.Name())
		}
	}
	return out
}

func renderShow(r *output.Renderer, out ShowOutput) error {
	if ok, err := r.Structured(out); ok {
		return err
	}

	r.Header(1, out.Name)
	r.KeyValue("Partition", out.Partition)
	r.KeyValue("Preset", out.Path)
	r.KeyValue("Bundle", out.Bundle)
	if out.Fallback {
		r.KeyValue("Fallback", "yes")
	}
	if len(out.Presets) > 1 {
		r.KeyValue("Ignored presets", strings.Join(ignored(out.Presets, filepath.Base(out.Path)), ", "))
	}
	for _, p := range out.Shadows {
		r.Warning(fmt.Sprintf("custom shader %s is hidden by this system shader", p))
	}
	return nil
}

func ignored(presets []string, used string) []string {
	var out []string
	for _, p := range presets {
		if p != used {
			out = append(out, p)
		}
	}
	return out
}
