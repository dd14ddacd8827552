package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// PathsOutput is the structured result of the paths command.
type PathsOutput struct {
	System     string   `json:"system" yaml:"system"`
	User       []string `json:"user" yaml:"user"`
	Primary    string   `json:"primary" yaml:"primary"`
	State      string   `json:"state" yaml:"state"`
	ConfigFile string   `json:"config_file,omitempty" yaml:"config_file,omitempty"`
}

// NewPathsCommand creates the paths command.
func NewPathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show shader and state locations",
		Long: `Show the bundled shader directory, the user shader directories in search
order, the directory new shaders should be installed into, and the
preference database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := newBaseContext(cmd)
			if err != nil {
				return err
			}

			out := PathsOutput{
				System:     cmdCtx.Roots.System,
				User:       cmdCtx.Roots.User,
				Primary:    cmdCtx.Roots.Primary(),
				State:      cmdCtx.Cfg.StatePath,
				ConfigFile: cmdCtx.Cfg.ConfigFile,
			}

			r := cmdCtx.Renderer
			if ok, err := r.Structured(out); ok {
				return err
			}

			r.Header(1, "Paths")
			r.KeyValue("System shaders", out.System)
			r.KeyValue("User shaders", strings.Join(out.User, ", "))
			r.KeyValue("Install into", out.Primary)
			r.KeyValue("Preferences", out.State)
			if out.ConfigFile != "" {
				r.KeyValue("Config file", out.ConfigFile)
			}
			return nil
		},
	}
}
