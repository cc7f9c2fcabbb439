package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/nhle/qtplanner/internal/backend"
	"github.com/nhle/qtplanner/internal/commands/options"
	"github.com/nhle/qtplanner/internal/logging"
	"github.com/nhle/qtplanner/internal/model"
)

const (
	listSchedules = "schedules"
	listQtCheck   = "qtcheck"
)

func addList(topLevel *cobra.Command) {
	lo := &options.ListOptions{}

	cmd := &cobra.Command{
		Use:       "list schedules|qtcheck",
		Short:     "Print entries as a table.",
		ValidArgs: []string{listSchedules, listQtCheck},
		Example: `
qtplanner list schedules
qtplanner list qtcheck --mine
`,
		Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := co.Load()
			if err != nil {
				return err
			}
			logger, closer, err := logging.OpenFile(cfg.Log)
			if err != nil {
				return err
			}
			defer closer.Close()

			client, err := openClient(cfg, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			return list(cmd.Context(), client, args[0], lo, color.Output, cfg.Location())
		},
	}
	options.AddListArgs(cmd, lo)

	topLevel.AddCommand(cmd)
}

func list(ctx context.Context, c backend.Client, what string, lo *options.ListOptions, w io.Writer, loc *time.Location) error {
	if lo.Limit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", lo.Limit)
	}
	opts := backend.ListOptions{Ascending: lo.Ascending, Limit: lo.Limit}
	if lo.Mine {
		u, err := c.GetUser(ctx)
		if err != nil {
			return err
		}
		if u == nil {
			return errors.New("--mine needs a signed-in session; log in from the UI first")
		}
		opts.OwnerID = u.ID
	}

	var tbl *uitable.Table
	switch what {
	case listSchedules:
		rows, err := c.ListSchedules(ctx, opts)
		if err != nil {
			return err
		}
		tbl = scheduleTable(rows, loc)
	case listQtCheck:
		rows, err := c.ListQtChecks(ctx, opts)
		if err != nil {
			return err
		}
		tbl = qtCheckTable(rows, loc)
	default:
		return fmt.Errorf("unknown list %q", what)
	}

	_, _ = fmt.Fprintln(w, tbl)
	return nil
}

var bold = color.New(color.Bold).SprintFunc()

func newTable(headers ...interface{}) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	for i := range headers {
		headers[i] = bold(headers[i])
	}
	tbl.AddRow(headers...)
	return tbl
}

func scheduleTable(rows []model.Schedule, loc *time.Location) *uitable.Table {
	tbl := newTable("Date", "Title", "Description")
	for _, s := range rows {
		tbl.AddRow(formatDate(s.Date, loc), s.Title, s.Description)
	}
	return tbl
}

func qtCheckTable(rows []model.QtCheck, loc *time.Location) *uitable.Table {
	tbl := newTable("Date", "Title", "Words", "QT", "Description")
	for _, q := range rows {
		tbl.AddRow(formatDate(q.Date, loc), q.Title, strconv.Itoa(q.WordCount), strconv.Itoa(q.QtCount), q.Description)
	}
	return tbl
}

func formatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(model.DateTimeLayout)
}
