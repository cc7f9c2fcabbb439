// Package feed keeps a view's local copy of a collection in sync with the
// initial fetch and the realtime change feed.
package feed

import (
	"encoding/json"
	"fmt"

	"github.com/nhle/qtplanner/internal/model"
)

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opDelete
)

type patch[T model.Row] struct {
	kind opKind
	row  T
	id   string
}

// Reducer is the single authority over a list's rows. The fetched
// snapshot is version 0; every patch after it bumps the version. Patches
// that arrive before the snapshot are buffered and replayed on top of it,
// so a late fetch never overwrites newer changes.
type Reducer[T model.Row] struct {
	rows    []T
	loaded  bool
	version int
	pending []patch[T]
}

// NewReducer returns an empty, not yet loaded reducer.
func NewReducer[T model.Row]() *Reducer[T] {
	return &Reducer[T]{}
}

// Snapshot replaces the rows with a fetch result and replays any patches
// buffered while the fetch was in flight. Duplicate ids in rows keep the
// first occurrence.
func (r *Reducer[T]) Snapshot(rows []T) {
	seen := make(map[string]struct{}, len(rows))
	r.rows = make([]T, 0, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.GetID()]; dup {
			continue
		}
		seen[row.GetID()] = struct{}{}
		r.rows = append(r.rows, row)
	}
	r.loaded = true
	r.version = 0

	pending := r.pending
	r.pending = nil
	for _, p := range pending {
		r.apply(p)
	}
}

// Insert prepends row unless a row with the same id is already present.
// It reports whether the list changed.
func (r *Reducer[T]) Insert(row T) bool {
	return r.submit(patch[T]{kind: opInsert, row: row, id: row.GetID()})
}

// Update replaces the row with the same id in place. Unknown ids are
// ignored.
func (r *Reducer[T]) Update(row T) bool {
	return r.submit(patch[T]{kind: opUpdate, row: row, id: row.GetID()})
}

// Delete removes the row with id.
func (r *Reducer[T]) Delete(id string) bool {
	return r.submit(patch[T]{kind: opDelete, id: id})
}

// Apply decodes a realtime change and applies it.
func (r *Reducer[T]) Apply(c model.Change) (bool, error) {
	switch c.Type {
	case model.EventInsert, model.EventUpdate:
		var row T
		if err := json.Unmarshal(c.New, &row); err != nil {
			return false, fmt.Errorf("decoding %s row: %w", c.Type, err)
		}
		if c.Type == model.EventInsert {
			return r.Insert(row), nil
		}
		return r.Update(row), nil
	case model.EventDelete:
		var key model.RowKey
		if err := json.Unmarshal(c.Old, &key); err != nil {
			return false, fmt.Errorf("decoding deleted row key: %w", err)
		}
		return r.Delete(key.ID), nil
	default:
		return false, fmt.Errorf("unknown event type %q", c.Type)
	}
}

func (r *Reducer[T]) submit(p patch[T]) bool {
	if !r.loaded {
		r.pending = append(r.pending, p)
		return false
	}
	return r.apply(p)
}

func (r *Reducer[T]) apply(p patch[T]) bool {
	idx := r.indexOf(p.id)
	switch p.kind {
	case opInsert:
		if idx >= 0 {
			return false
		}
		r.rows = append([]T{p.row}, r.rows...)
	case opUpdate:
		if idx < 0 {
			return false
		}
		r.rows[idx] = p.row
	case opDelete:
		if idx < 0 {
			return false
		}
		r.rows = append(r.rows[:idx], r.rows[idx+1:]...)
	}
	r.version++
	return true
}

func (r *Reducer[T]) indexOf(id string) int {
	for i, row := range r.rows {
		if row.GetID() == id {
			return i
		}
	}
	return -1
}

// Rows returns a copy of the current rows, newest first.
func (r *Reducer[T]) Rows() []T {
	out := make([]T, len(r.rows))
	copy(out, r.rows)
	return out
}

// Loaded reports whether a snapshot has been applied.
func (r *Reducer[T]) Loaded() bool { return r.loaded }

// Len returns the number of rows.
func (r *Reducer[T]) Len() int { return len(r.rows) }
