package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/qtplanner/internal/logging"
	"github.com/nhle/qtplanner/internal/model"
)

func TestLogOAuth(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, model.LogConfig{Level: "info"})

	logOAuth(logger, model.OAuthConfig{})
	assert.Empty(t, buf.String())

	logOAuth(logger, model.OAuthConfig{
		GoogleClientID: "client-123",
		RedirectURI:    "http://localhost:8787/callback",
	})
	assert.Contains(t, buf.String(), "client_id=client-123")
	assert.Contains(t, buf.String(), "localhost:8787/callback")
}
