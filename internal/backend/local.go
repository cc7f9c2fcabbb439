package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/auth"
	"github.com/nhle/qtplanner/internal/credential"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/realtime"
	"github.com/nhle/qtplanner/internal/store"
)

// Local is a Client running the whole backend in-process. The session
// token survives restarts through its TokenStore.
type Local struct {
	svc    *Service
	tokens credential.TokenStore
	closer func() error
	logger *slog.Logger
}

var _ Client = (*Local)(nil)

// NewLocal wraps an existing Service.
func NewLocal(svc *Service, tokens credential.TokenStore, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{svc: svc, tokens: tokens, logger: logger}
}

// OpenLocal opens the SQLite database at dbPath and builds a Local client
// owning it.
func OpenLocal(dbPath string, tokens credential.TokenStore, logger *slog.Logger) (*Local, error) {
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening local backend: %w", err)
	}
	hub := realtime.NewHub(logger)
	svc := NewService(s, auth.NewService(s), hub, logger)

	l := NewLocal(svc, tokens, logger)
	l.closer = func() error {
		hub.Close()
		return s.Close()
	}
	return l, nil
}

func (l *Local) token() (string, error) {
	token, err := l.tokens.Load()
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuth, "could not read saved session", err)
	}
	return token, nil
}

// GetUser resolves the saved session. A saved token that no longer
// resolves is cleared and reported as signed out.
func (l *Local) GetUser(ctx context.Context) (*model.User, error) {
	token, err := l.token()
	if err != nil || token == "" {
		return nil, err
	}
	user, err := l.svc.User(ctx, token)
	if auth.IsSessionNotFound(err) {
		l.logger.Info("dropping stale session", "error", err)
		if clearErr := l.tokens.Clear(); clearErr != nil {
			l.logger.Warn("clearing session token", "error", clearErr)
		}
		return nil, nil
	}
	return user, err
}

func (l *Local) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*model.User, error) {
	return l.svc.SignUp(ctx, email, password, metadata)
}

func (l *Local) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	user, token, err := l.svc.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := l.tokens.Save(token); err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "could not save session", err)
	}
	return user, nil
}

func (l *Local) SignOut(ctx context.Context) error {
	token, err := l.token()
	if err != nil {
		return err
	}
	if err := l.svc.SignOut(ctx, token); err != nil {
		return err
	}
	if err := l.tokens.Clear(); err != nil {
		return apperr.Wrap(apperr.KindAuth, "could not clear session", err)
	}
	return nil
}

func (l *Local) ListSchedules(ctx context.Context, opts ListOptions) ([]model.Schedule, error) {
	return l.svc.ListSchedules(ctx, opts)
}

func (l *Local) InsertSchedule(ctx context.Context, s model.Schedule) (*model.Schedule, error) {
	token, err := l.token()
	if err != nil {
		return nil, err
	}
	return l.svc.InsertSchedule(ctx, token, s)
}

func (l *Local) UpdateSchedule(ctx context.Context, s model.Schedule) (*model.Schedule, error) {
	token, err := l.token()
	if err != nil {
		return nil, err
	}
	return l.svc.UpdateSchedule(ctx, token, s)
}

func (l *Local) DeleteSchedule(ctx context.Context, id string) error {
	token, err := l.token()
	if err != nil {
		return err
	}
	return l.svc.DeleteSchedule(ctx, token, id)
}

func (l *Local) ListQtChecks(ctx context.Context, opts ListOptions) ([]model.QtCheck, error) {
	return l.svc.ListQtChecks(ctx, opts)
}

func (l *Local) InsertQtCheck(ctx context.Context, q model.QtCheck) (*model.QtCheck, error) {
	token, err := l.token()
	if err != nil {
		return nil, err
	}
	return l.svc.InsertQtCheck(ctx, token, q)
}

func (l *Local) UpdateQtCheck(ctx context.Context, q model.QtCheck) (*model.QtCheck, error) {
	token, err := l.token()
	if err != nil {
		return nil, err
	}
	return l.svc.UpdateQtCheck(ctx, token, q)
}

func (l *Local) DeleteQtCheck(ctx context.Context, id string) error {
	token, err := l.token()
	if err != nil {
		return err
	}
	return l.svc.DeleteQtCheck(ctx, token, id)
}

// Subscribe opens a change feed. The subscription closes when ctx is done.
func (l *Local) Subscribe(ctx context.Context, channel string, table model.Table) (*realtime.Subscription, error) {
	sub, err := l.svc.Subscribe(channel, table)
	if err != nil {
		return nil, err
	}
	context.AfterFunc(ctx, sub.Close)
	return sub, nil
}

// Close releases the database when the client owns it.
func (l *Local) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}
