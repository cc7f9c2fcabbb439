// Package session exposes the current signed-in identity to views.
package session

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/qtplanner/internal/model"
)

// loadTimeout bounds a single current-user lookup.
const loadTimeout = 10 * time.Second

// UserSource is the slice of backend.Client the provider needs.
type UserSource interface {
	GetUser(ctx context.Context) (*model.User, error)
}

// Provider asks the backend for the current user on demand. It holds no
// cache and never retries or polls.
type Provider struct {
	src UserSource
}

// NewProvider creates a Provider over src.
func NewProvider(src UserSource) *Provider {
	return &Provider{src: src}
}

// Current returns the signed-in user, or nil when nobody is signed in.
func (p *Provider) Current(ctx context.Context) (*model.User, error) {
	return p.src.GetUser(ctx)
}

// LoadedMsg is a tea.Msg carrying the result of a current-user lookup.
type LoadedMsg struct {
	User *model.User
	Err  error
}

// Load returns a tea.Cmd that looks up the current user.
func (p *Provider) Load() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		user, err := p.Current(ctx)
		return LoadedMsg{User: user, Err: err}
	}
}
