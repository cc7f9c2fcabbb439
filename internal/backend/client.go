// Package backend is the single handle views use for identity, entry
// storage, and the change feed. Local runs everything in-process; Remote
// talks to a `qtplanner serve` instance over HTTP.
package backend

import (
	"context"

	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/realtime"
	"github.com/nhle/qtplanner/internal/store"
)

// ListOptions filters and orders a list query. The zero value lists every
// owner's rows, newest first.
type ListOptions struct {
	OwnerID   string
	Ascending bool
	// Limit caps the number of rows; zero means no cap.
	Limit int
}

func (o ListOptions) filter() store.EntryFilter {
	f := store.EntryFilter{SortDesc: !o.Ascending, Limit: o.Limit}
	if o.OwnerID != "" {
		owner := o.OwnerID
		f.OwnerID = &owner
	}
	return f
}

// Client is the backend contract shared by every view.
type Client interface {
	// GetUser returns the signed-in account, or nil when signed out.
	GetUser(ctx context.Context) (*model.User, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	SignOut(ctx context.Context) error

	ListSchedules(ctx context.Context, opts ListOptions) ([]model.Schedule, error)
	InsertSchedule(ctx context.Context, s model.Schedule) (*model.Schedule, error)
	UpdateSchedule(ctx context.Context, s model.Schedule) (*model.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error

	ListQtChecks(ctx context.Context, opts ListOptions) ([]model.QtCheck, error)
	InsertQtCheck(ctx context.Context, q model.QtCheck) (*model.QtCheck, error)
	UpdateQtCheck(ctx context.Context, q model.QtCheck) (*model.QtCheck, error)
	DeleteQtCheck(ctx context.Context, id string) error

	// Subscribe opens a change feed for table under the channel name. The
	// subscription ends when closed, when ctx is done, or on transport
	// failure.
	Subscribe(ctx context.Context, channel string, table model.Table) (*realtime.Subscription, error)

	Close() error
}
