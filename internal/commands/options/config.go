package options

import (
	"github.com/spf13/cobra"

	"github.com/nhle/qtplanner/internal/model"
)

// ConfigOptions locates the configuration file.
type ConfigOptions struct {
	Path string
}

// AddConfigArgs registers --config on cmd and every subcommand.
func AddConfigArgs(cmd *cobra.Command, o *ConfigOptions) {
	cmd.PersistentFlags().StringVarP(&o.Path, "config", "c", model.DefaultConfigPath(),
		"Path to the YAML config file.")
}

// Load reads the configuration at o.Path.
func (o *ConfigOptions) Load() (*model.AppConfig, error) {
	return model.LoadConfig(o.Path)
}
