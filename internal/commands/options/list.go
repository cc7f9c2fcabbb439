package options

import (
	"github.com/spf13/cobra"
)

// ListOptions
type ListOptions struct {
	Mine      bool
	Ascending bool
	Limit     int
}

func AddListArgs(cmd *cobra.Command, o *ListOptions) {
	cmd.Flags().BoolVarP(&o.Mine, "mine", "m", false,
		"Only show entries you own.")
	cmd.Flags().BoolVar(&o.Ascending, "asc", false,
		"Oldest first.")
	cmd.Flags().IntVarP(&o.Limit, "limit", "n", 0,
		"Show at most this many entries (0 for all).")
}
