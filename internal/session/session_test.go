package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/qtplanner/internal/model"
)

type fakeSource struct {
	user  *model.User
	err   error
	calls int
}

func (f *fakeSource) GetUser(context.Context) (*model.User, error) {
	f.calls++
	return f.user, f.err
}

func TestLoadSignedIn(t *testing.T) {
	src := &fakeSource{user: &model.User{ID: "u1", Email: "a@example.com"}}
	msg := NewProvider(src).Load()()

	loaded, ok := msg.(LoadedMsg)
	require.True(t, ok)
	assert.NoError(t, loaded.Err)
	assert.Equal(t, "u1", loaded.User.ID)
}

func TestLoadSignedOutAndErrors(t *testing.T) {
	src := &fakeSource{}
	p := NewProvider(src)

	loaded := p.Load()().(LoadedMsg)
	assert.Nil(t, loaded.User)
	assert.NoError(t, loaded.Err)

	src.err = errors.New("offline")
	loaded = p.Load()().(LoadedMsg)
	assert.EqualError(t, loaded.Err, "offline")

	// Every lookup goes to the backend; nothing is cached.
	assert.Equal(t, 2, src.calls)
}
