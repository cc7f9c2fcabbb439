package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/auth"
	"github.com/nhle/qtplanner/internal/credential"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/realtime"
)

// Remote is a Client for a `qtplanner serve` backend. It sends the public
// API key in the apikey header and the session token as a Bearer token.
// Requests are never retried.
type Remote struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	streamClient *http.Client
	tokens       credential.TokenStore
	logger       *slog.Logger
}

var _ Client = (*Remote)(nil)

// NewRemote creates a client for the backend at baseURL.
func NewRemote(baseURL, apiKey string, tokens credential.TokenStore, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// Event streams stay open indefinitely.
		streamClient: &http.Client{},
		tokens:       tokens,
		logger:       logger,
	}
}

// WithHTTPClient replaces the client used for regular requests and
// streams.
func (r *Remote) WithHTTPClient(c *http.Client) *Remote {
	r.httpClient = c
	r.streamClient = c
	return r
}

func (r *Remote) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if r.apiKey != "" {
		req.Header.Set(HeaderAPIKey, r.apiKey)
	}
	token, err := r.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do builds the request, executes it once, and decodes the JSON response
// into result. Non-2xx responses become *apperr.Error values; transport
// failures are classified as failKind.
func (r *Remote) do(
	ctx context.Context,
	failKind apperr.Kind,
	method string,
	path string,
	body any,
	result any,
) error {
	req, err := r.newRequest(ctx, method, path, body)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not build request", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(failKind, "backend unreachable",
			fmt.Errorf("executing request %s %s: %w", method, path, err))
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return apperr.Wrap(failKind, "backend response interrupted",
			fmt.Errorf("reading response body: %w", readErr))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, method, path, respBody)
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return apperr.Wrap(failKind, "unexpected backend response",
			fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err))
	}
	return nil
}

func decodeError(status int, method, path string, body []byte) error {
	var eb ErrorBody
	if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
		kind := eb.Kind
		if kind == "" {
			kind = kindForStatus(status)
		}
		return &apperr.Error{
			Kind:    kind,
			Message: eb.Message,
			Err:     fmt.Errorf("status %d on %s %s", status, method, path),
		}
	}
	return &apperr.Error{
		Kind:    kindForStatus(status),
		Message: http.StatusText(status),
		Err:     fmt.Errorf("unexpected status %d on %s %s: %s", status, method, path, string(body)),
	}
}

// GetUser returns nil when no token is saved or the backend no longer
// knows the saved one. Other failures leave the token in place.
func (r *Remote) GetUser(ctx context.Context) (*model.User, error) {
	token, err := r.tokens.Load()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "could not read saved session", err)
	}
	if token == "" {
		return nil, nil
	}

	var user model.User
	err = r.do(ctx, apperr.KindRead, http.MethodGet, PathUser, nil, &user)
	if auth.IsSessionNotFound(err) {
		r.logger.Info("dropping stale session", "error", err)
		if clearErr := r.tokens.Clear(); clearErr != nil {
			r.logger.Warn("clearing session token", "error", clearErr)
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Remote) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*model.User, error) {
	var user model.User
	body := Credentials{Email: email, Password: password, Data: metadata}
	if err := r.do(ctx, apperr.KindAuth, http.MethodPost, PathSignUp, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Remote) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	var resp TokenResponse
	body := Credentials{Email: email, Password: password}
	if err := r.do(ctx, apperr.KindAuth, http.MethodPost, PathToken, body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.User == nil {
		return nil, apperr.New(apperr.KindAuth, "backend returned no session")
	}
	if err := r.tokens.Save(resp.AccessToken); err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "could not save session", err)
	}
	return resp.User, nil
}

func (r *Remote) SignOut(ctx context.Context) error {
	err := r.do(ctx, apperr.KindAuth, http.MethodPost, PathLogout, nil, nil)
	if err != nil && !apperr.Is(err, apperr.KindAuth) {
		return err
	}
	if err := r.tokens.Clear(); err != nil {
		return apperr.Wrap(apperr.KindAuth, "could not clear session", err)
	}
	return nil
}

func listPath(table model.Table, opts ListOptions) string {
	q := url.Values{}
	if opts.OwnerID != "" {
		q.Set("owner", opts.OwnerID)
	}
	if opts.Ascending {
		q.Set("order", "asc")
	} else {
		q.Set("order", "desc")
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	return PathRest + string(table) + "?" + q.Encode()
}

func rowPath(table model.Table, id string) string {
	return PathRest + string(table) + "/" + url.PathEscape(id)
}

func (r *Remote) ListSchedules(ctx context.Context, opts ListOptions) ([]model.Schedule, error) {
	rows := []model.Schedule{}
	err := r.do(ctx, apperr.KindRead, http.MethodGet, listPath(model.TableSchedules, opts), nil, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Remote) InsertSchedule(ctx context.Context, s model.Schedule) (*model.Schedule, error) {
	var created model.Schedule
	err := r.do(ctx, apperr.KindWrite, http.MethodPost, PathRest+string(model.TableSchedules), s, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Remote) UpdateSchedule(ctx context.Context, s model.Schedule) (*model.Schedule, error) {
	var updated model.Schedule
	err := r.do(ctx, apperr.KindWrite, http.MethodPatch, rowPath(model.TableSchedules, s.ID), s, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *Remote) DeleteSchedule(ctx context.Context, id string) error {
	return r.do(ctx, apperr.KindWrite, http.MethodDelete, rowPath(model.TableSchedules, id), nil, nil)
}

func (r *Remote) ListQtChecks(ctx context.Context, opts ListOptions) ([]model.QtCheck, error) {
	rows := []model.QtCheck{}
	err := r.do(ctx, apperr.KindRead, http.MethodGet, listPath(model.TableQtCheck, opts), nil, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Remote) InsertQtCheck(ctx context.Context, q model.QtCheck) (*model.QtCheck, error) {
	var created model.QtCheck
	err := r.do(ctx, apperr.KindWrite, http.MethodPost, PathRest+string(model.TableQtCheck), q, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Remote) UpdateQtCheck(ctx context.Context, q model.QtCheck) (*model.QtCheck, error) {
	var updated model.QtCheck
	err := r.do(ctx, apperr.KindWrite, http.MethodPatch, rowPath(model.TableQtCheck, q.ID), q, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *Remote) DeleteQtCheck(ctx context.Context, id string) error {
	return r.do(ctx, apperr.KindWrite, http.MethodDelete, rowPath(model.TableQtCheck, id), nil, nil)
}

// Subscribe opens the event stream for table and feeds it into a
// subscription. The stream is connected before Subscribe returns; a later
// disconnect terminates the subscription with a realtime error. There is
// no reconnect.
func (r *Remote) Subscribe(ctx context.Context, channel string, table model.Table) (*realtime.Subscription, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	path := PathRealtime + string(table) + "?" + url.Values{"channel": {channel}}.Encode()
	req, err := r.newRequest(streamCtx, http.MethodGet, path, nil)
	if err != nil {
		cancel()
		return nil, apperr.Wrap(apperr.KindRealtime, "could not open change feed", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := r.streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, apperr.Wrap(apperr.KindRealtime, "could not open change feed", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		return nil, decodeError(resp.StatusCode, http.MethodGet, path, body)
	}

	sub := realtime.NewSubscription(channel, table, realtime.DefaultBuffer, cancel)

	go func() {
		defer resp.Body.Close()
		err := readEvents(resp.Body, func(c model.Change) error {
			if !sub.Publish(c) && !sub.Closed() {
				r.logger.Warn("realtime change dropped", "channel", channel, "event", c.Type)
			}
			return nil
		})
		if sub.Closed() {
			return
		}
		if ctx.Err() != nil {
			sub.Close()
			return
		}
		r.logger.Warn("realtime stream ended", "channel", channel, "error", err)
		sub.Terminate(apperr.Wrap(apperr.KindRealtime, "live updates disconnected", err))
	}()

	return sub, nil
}

// Close is a no-op; a Remote holds no resources between requests.
func (r *Remote) Close() error { return nil }
