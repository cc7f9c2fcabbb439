package backend

import (
	"net/http"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/model"
)

// HTTP paths served by `qtplanner serve`.
const (
	PathHealth   = "/health"
	PathSignUp   = "/auth/v1/signup"
	PathToken    = "/auth/v1/token"
	PathLogout   = "/auth/v1/logout"
	PathUser     = "/auth/v1/user"
	PathRest     = "/rest/v1/"
	PathRealtime = "/realtime/v1/"
)

// HeaderAPIKey carries the public API key on every request.
const HeaderAPIKey = "apikey"

// Credentials is the body of sign-in and sign-up requests.
type Credentials struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Data     map[string]string `json:"data,omitempty"`
}

// TokenResponse is returned by a successful sign-in.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *model.User `json:"user"`
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindWrite:
		return http.StatusConflict
	case apperr.KindRead, apperr.KindRealtime:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// kindForStatus is the reverse of StatusFor, used when an error response
// carries no body.
func kindForStatus(status int) apperr.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.KindAuth
	case http.StatusNotFound:
		return apperr.KindNotFound
	case http.StatusConflict:
		return apperr.KindWrite
	default:
		return apperr.KindInternal
	}
}
