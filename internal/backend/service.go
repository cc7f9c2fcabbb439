package backend

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/auth"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/realtime"
	"github.com/nhle/qtplanner/internal/store"
)

// Service enforces ownership on writes and publishes a change after every
// successful one. Callers pass the session token explicitly.
type Service struct {
	store  store.Store
	auth   *auth.Service
	hub    *realtime.Hub
	logger *slog.Logger
}

// NewService wires a store, an auth service, and a hub together.
func NewService(s store.Store, a *auth.Service, hub *realtime.Hub, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, auth: a, hub: hub, logger: logger}
}

// Hub returns the change hub.
func (s *Service) Hub() *realtime.Hub { return s.hub }

// User resolves token to its account.
func (s *Service) User(ctx context.Context, token string) (*model.User, error) {
	return s.auth.Resolve(ctx, token)
}

// SignUp registers an account.
func (s *Service) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*model.User, error) {
	return s.auth.SignUp(ctx, email, password, metadata)
}

// SignIn opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.User, string, error) {
	return s.auth.SignIn(ctx, email, password)
}

// SignOut ends a session.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.auth.SignOut(ctx, token)
}

// === Schedules ===

// ListSchedules lists schedules. Reads need no session.
func (s *Service) ListSchedules(ctx context.Context, opts ListOptions) ([]model.Schedule, error) {
	rows, err := s.store.GetSchedules(ctx, opts.filter())
	if err != nil {
		return nil, s.fail(apperr.KindRead, "could not load schedules", err)
	}
	return rows, nil
}

// InsertSchedule writes a schedule owned by the session user. An empty
// UserID is filled in from the session.
func (s *Service) InsertSchedule(ctx context.Context, token string, sched model.Schedule) (*model.Schedule, error) {
	user, err := s.authorize(ctx, token, &sched.UserID)
	if err != nil {
		return nil, err
	}
	sched.UserID = user.ID

	created, err := s.store.InsertSchedule(ctx, sched)
	if err != nil {
		return nil, s.writeError("could not save schedule", err)
	}
	s.publish(model.TableSchedules, model.EventInsert, *created)
	return created, nil
}

// UpdateSchedule updates a schedule owned by the session user.
func (s *Service) UpdateSchedule(ctx context.Context, token string, sched model.Schedule) (*model.Schedule, error) {
	existing, err := s.store.GetScheduleByID(ctx, sched.ID)
	if err != nil {
		return nil, s.writeError("could not update schedule", err)
	}
	if _, err := s.authorize(ctx, token, &existing.UserID); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateSchedule(ctx, sched)
	if err != nil {
		return nil, s.writeError("could not update schedule", err)
	}
	s.publish(model.TableSchedules, model.EventUpdate, *updated)
	return updated, nil
}

// DeleteSchedule deletes a schedule owned by the session user.
func (s *Service) DeleteSchedule(ctx context.Context, token, id string) error {
	existing, err := s.store.GetScheduleByID(ctx, id)
	if err != nil {
		return s.writeError("could not delete schedule", err)
	}
	if _, err := s.authorize(ctx, token, &existing.UserID); err != nil {
		return err
	}

	deleted, err := s.store.DeleteSchedule(ctx, id)
	if err != nil {
		return s.writeError("could not delete schedule", err)
	}
	s.publish(model.TableSchedules, model.EventDelete, *deleted)
	return nil
}

// === QT checks ===

// ListQtChecks lists QT check entries. Reads need no session.
func (s *Service) ListQtChecks(ctx context.Context, opts ListOptions) ([]model.QtCheck, error) {
	rows, err := s.store.GetQtChecks(ctx, opts.filter())
	if err != nil {
		return nil, s.fail(apperr.KindRead, "could not load QT checks", err)
	}
	return rows, nil
}

// InsertQtCheck writes an entry owned by the session user.
func (s *Service) InsertQtCheck(ctx context.Context, token string, q model.QtCheck) (*model.QtCheck, error) {
	user, err := s.authorize(ctx, token, &q.UserID)
	if err != nil {
		return nil, err
	}
	q.UserID = user.ID

	created, err := s.store.InsertQtCheck(ctx, q)
	if err != nil {
		return nil, s.writeError("could not save QT check", err)
	}
	s.publish(model.TableQtCheck, model.EventInsert, *created)
	return created, nil
}

// UpdateQtCheck updates an entry owned by the session user.
func (s *Service) UpdateQtCheck(ctx context.Context, token string, q model.QtCheck) (*model.QtCheck, error) {
	existing, err := s.store.GetQtCheckByID(ctx, q.ID)
	if err != nil {
		return nil, s.writeError("could not update QT check", err)
	}
	if _, err := s.authorize(ctx, token, &existing.UserID); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateQtCheck(ctx, q)
	if err != nil {
		return nil, s.writeError("could not update QT check", err)
	}
	s.publish(model.TableQtCheck, model.EventUpdate, *updated)
	return updated, nil
}

// DeleteQtCheck deletes an entry owned by the session user.
func (s *Service) DeleteQtCheck(ctx context.Context, token, id string) error {
	existing, err := s.store.GetQtCheckByID(ctx, id)
	if err != nil {
		return s.writeError("could not delete QT check", err)
	}
	if _, err := s.authorize(ctx, token, &existing.UserID); err != nil {
		return err
	}

	deleted, err := s.store.DeleteQtCheck(ctx, id)
	if err != nil {
		return s.writeError("could not delete QT check", err)
	}
	s.publish(model.TableQtCheck, model.EventDelete, *deleted)
	return nil
}

// Subscribe opens a change feed on table.
func (s *Service) Subscribe(channel string, table model.Table) (*realtime.Subscription, error) {
	if !table.Valid() {
		return nil, apperr.New(apperr.KindRealtime, "unknown table "+string(table))
	}
	return s.hub.Subscribe(channel, table), nil
}

// authorize resolves token and checks that owner, when set, is the
// session user.
func (s *Service) authorize(ctx context.Context, token string, owner *string) (*model.User, error) {
	if token == "" {
		return nil, apperr.New(apperr.KindAuth, "please log in first")
	}
	user, err := s.auth.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if owner != nil && *owner != "" && *owner != user.ID {
		return nil, apperr.New(apperr.KindAuth, "row belongs to another user")
	}
	return user, nil
}

func (s *Service) publish(table model.Table, typ model.EventType, row model.Row) {
	change, err := model.NewChange(table, typ, row)
	if err != nil {
		s.logger.Error("encoding change", "table", table, "event", typ, "error", err)
		return
	}
	s.hub.Publish(change)
}

// writeError classifies a store failure on the write path.
func (s *Service) writeError(message string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.fail(apperr.KindNotFound, message, err)
	case errors.Is(err, store.ErrInvalid):
		return s.fail(apperr.KindValidation, message, err)
	default:
		return s.fail(apperr.KindWrite, message, err)
	}
}

func (s *Service) fail(kind apperr.Kind, message string, err error) error {
	wrapped := apperr.Wrap(kind, message, err)
	s.logger.Error(message, "kind", apperr.KindOf(wrapped), "error", err)
	return wrapped
}
