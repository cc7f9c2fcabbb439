package options

import (
	"github.com/spf13/cobra"

	"github.com/nhle/qtplanner/internal/ui"
)

// UIOptions
type UIOptions struct {
	Route string
}

func AddUIArgs(cmd *cobra.Command, o *UIOptions) {
	cmd.Flags().StringVarP(&o.Route, "route", "r", ui.RouteHome,
		"Page to open first, e.g. /qtcheck-view.")
}
