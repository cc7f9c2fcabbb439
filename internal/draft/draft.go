// Package draft holds the editable state behind the entry forms and turns
// it into rows ready to insert.
package draft

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/model"
)

// DefaultOffset is the storage offset applied when none is configured.
const DefaultOffset = Offset(9 * time.Hour)

// Offset is a fixed duration added to both the chosen date-time and the
// creation instant before a row is written. It is not a timezone
// conversion: the instant itself moves.
type Offset time.Duration

// Apply shifts t by the offset.
func (o Offset) Apply(t time.Time) time.Time {
	return t.Add(time.Duration(o))
}

func (o Offset) String() string {
	return time.Duration(o).String()
}

// Steps are the counter adjustments offered by the QT form.
var Steps = []int{1, -1, 5, -5}

// Counter is a non-negative tally with no upper bound.
type Counter int

// Adjust returns the counter moved by delta, clamped at zero.
func (c Counter) Adjust(delta int) Counter {
	next := int(c) + delta
	if next < 0 {
		return 0
	}
	return Counter(next)
}

// ScheduleDraft is the editable state of the schedule form.
type ScheduleDraft struct {
	Title       string
	Description string
	Date        *time.Time
}

// Validate checks that every field is filled in and someone is signed in.
func (d ScheduleDraft) Validate(user *model.User) error {
	if user == nil {
		return apperr.Validation("please log in first")
	}
	if strings.TrimSpace(d.Title) == "" {
		return apperr.Validation("please enter a title")
	}
	if strings.TrimSpace(d.Description) == "" {
		return apperr.Validation("please enter a description")
	}
	if d.Date == nil || d.Date.IsZero() {
		return apperr.Validation("please choose a date")
	}
	return nil
}

// Build returns the row to insert. The id is left for the store to
// generate.
func (d ScheduleDraft) Build(user *model.User, now time.Time, offset Offset) model.Schedule {
	return model.Schedule{
		UserID:      user.ID,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Date:        offset.Apply(*d.Date),
		CreatedAt:   offset.Apply(now),
	}
}

// QtDraft is the editable state of the QT check form.
type QtDraft struct {
	Title       string
	Description string
	Date        *time.Time
	WordCount   Counter
	QtCount     Counter
}

// Validate checks every field and requires both counters to be positive.
func (d QtDraft) Validate(user *model.User) error {
	base := ScheduleDraft{Title: d.Title, Description: d.Description, Date: d.Date}
	if err := base.Validate(user); err != nil {
		return err
	}
	if d.WordCount <= 0 {
		return apperr.Validation("word count must be greater than zero")
	}
	if d.QtCount <= 0 {
		return apperr.Validation("QT count must be greater than zero")
	}
	return nil
}

// Build returns the row to insert with a client-generated id.
func (d QtDraft) Build(user *model.User, now time.Time, offset Offset) model.QtCheck {
	return model.QtCheck{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		WordCount:   int(d.WordCount),
		QtCount:     int(d.QtCount),
		Date:        offset.Apply(*d.Date),
		CreatedAt:   offset.Apply(now),
	}
}

// ScheduleInserter is the write half of backend.Client used by the
// schedule form.
type ScheduleInserter interface {
	InsertSchedule(ctx context.Context, s model.Schedule) (*model.Schedule, error)
}

// QtCheckInserter is the write half of backend.Client used by the QT form.
type QtCheckInserter interface {
	InsertQtCheck(ctx context.Context, q model.QtCheck) (*model.QtCheck, error)
}

// SubmitSchedule validates d and issues exactly one insert. Invalid
// drafts issue no write.
func SubmitSchedule(
	ctx context.Context,
	ins ScheduleInserter,
	d ScheduleDraft,
	user *model.User,
	now time.Time,
	offset Offset,
) (*model.Schedule, error) {
	if err := d.Validate(user); err != nil {
		return nil, err
	}
	created, err := ins.InsertSchedule(ctx, d.Build(user, now, offset))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindWrite, "could not save schedule", err)
	}
	return created, nil
}

// SubmitQtCheck validates d and issues exactly one insert.
func SubmitQtCheck(
	ctx context.Context,
	ins QtCheckInserter,
	d QtDraft,
	user *model.User,
	now time.Time,
	offset Offset,
) (*model.QtCheck, error) {
	if err := d.Validate(user); err != nil {
		return nil, err
	}
	created, err := ins.InsertQtCheck(ctx, d.Build(user, now, offset))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindWrite, "could not save QT check", err)
	}
	return created, nil
}
