package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zachkp/folio/internal/config"
)

// defaultConfigFile is read when present and --config is not given.
const defaultConfigFile = "folio.yaml"

type rootOptions struct {
	configPath string
}

// loadConfig reads --config, falling back to folio.yaml in the working
// directory and then to the built-in defaults.
func (o *rootOptions) loadConfig() (config.Config, error) {
	path := o.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		} else if !errors.Is(err, os.ErrNotExist) {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "folio",
		Short: "Portfolio and CV site with an interactive project viewer",
		Long: `Folio serves a bilingual portfolio: about, experience, education, a filterable
works gallery with a fullscreen project viewer, and a contact form.

Run "folio serve" to start the site, or use the other commands to inspect the
project catalog and render the CV offline.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default ./folio.yaml when present)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newProjectsCmd())
	cmd.AddCommand(newCVCmd())

	return cmd
}
