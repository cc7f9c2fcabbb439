package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/backend"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/realtime"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// === Auth ===

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var creds backend.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, err)
		return
	}
	user, err := s.svc.SignUp(r.Context(), creds.Email, creds.Password, creds.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var creds backend.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, err)
		return
	}
	user, token, err := s.svc.SignIn(r.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, backend.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.SignOut(r.Context(), bearerToken(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.User(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// === Rest ===

// tableVar returns the {table} path variable if it names a known table.
func tableVar(r *http.Request) (model.Table, error) {
	table := model.Table(mux.Vars(r)["table"])
	if !table.Valid() {
		return "", apperr.New(apperr.KindNotFound, fmt.Sprintf("unknown table %q", table))
	}
	return table, nil
}

func listOptions(r *http.Request) (backend.ListOptions, error) {
	q := r.URL.Query()
	opts := backend.ListOptions{OwnerID: q.Get("owner")}
	switch q.Get("order") {
	case "", "desc":
	case "asc":
		opts.Ascending = true
	default:
		return opts, apperr.Validation("order must be asc or desc")
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, apperr.Validation("limit must be a non-negative integer")
		}
		opts.Limit = n
	}
	return opts, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	table, err := tableVar(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var rows any
	switch table {
	case model.TableSchedules:
		rows, err = s.svc.ListSchedules(r.Context(), opts)
	case model.TableQtCheck:
		rows, err = s.svc.ListQtChecks(r.Context(), opts)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	table, err := tableVar(r)
	if err != nil {
		writeError(w, err)
		return
	}
	token := bearerToken(r)

	var created any
	switch table {
	case model.TableSchedules:
		var sched model.Schedule
		if err = decodeBody(r, &sched); err == nil {
			created, err = s.svc.InsertSchedule(r.Context(), token, sched)
		}
	case model.TableQtCheck:
		var q model.QtCheck
		if err = decodeBody(r, &q); err == nil {
			created, err = s.svc.InsertQtCheck(r.Context(), token, q)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	table, err := tableVar(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id := mux.Vars(r)["id"]
	token := bearerToken(r)

	var updated any
	switch table {
	case model.TableSchedules:
		var sched model.Schedule
		if err = decodeBody(r, &sched); err == nil {
			sched.ID = id
			updated, err = s.svc.UpdateSchedule(r.Context(), token, sched)
		}
	case model.TableQtCheck:
		var q model.QtCheck
		if err = decodeBody(r, &q); err == nil {
			q.ID = id
			updated, err = s.svc.UpdateQtCheck(r.Context(), token, q)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	table, err := tableVar(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id := mux.Vars(r)["id"]
	token := bearerToken(r)

	switch table {
	case model.TableSchedules:
		err = s.svc.DeleteSchedule(r.Context(), token, id)
	case model.TableQtCheck:
		err = s.svc.DeleteQtCheck(r.Context(), token, id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Realtime ===

// handleRealtime streams changes on a table as server-sent events until
// the client disconnects or the hub closes.
func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	table, err := tableVar(r)
	if err != nil {
		writeError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, apperr.New(apperr.KindRealtime, "streaming unsupported"))
		return
	}

	channel := r.URL.Query().Get("channel")
	if channel == "" {
		channel = realtime.ChannelFor(table)
	}
	sub, err := s.svc.Subscribe(channel, table)
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, ": subscribed %s\n\n", channel)
	flusher.Flush()

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case c, ok := <-sub.Changes():
			if !ok {
				return
			}
			if err := backend.WriteEvent(w, c); err != nil {
				s.logger.Warn("writing change event", "channel", channel, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
