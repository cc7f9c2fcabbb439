package model

import (
	"encoding/json"
	"time"
)

// Table names a backend collection.
type Table string

const (
	TableSchedules Table = "schedules"
	TableQtCheck   Table = "qtcheck"
)

// Valid reports whether t is a known collection.
func (t Table) Valid() bool {
	return t == TableSchedules || t == TableQtCheck
}

// EventType is the kind of row-level change delivered by the change feed.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Change is a single row-level notification. New carries the row after an
// insert or update; Old carries at least the id of a deleted row.
type Change struct {
	Table           Table           `json:"table"`
	Type            EventType       `json:"eventType"`
	New             json.RawMessage `json:"new,omitempty"`
	Old             json.RawMessage `json:"old,omitempty"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}

// RowKey is the minimal payload carried in Change.Old for deletes.
type RowKey struct {
	ID string `json:"id"`
}

// NewChange builds a Change for row, encoding it into New (insert/update)
// or its id into Old (delete).
func NewChange(table Table, typ EventType, row Row) (Change, error) {
	c := Change{
		Table:           table,
		Type:            typ,
		CommitTimestamp: time.Now().UTC(),
	}

	if typ == EventDelete {
		old, err := json.Marshal(RowKey{ID: row.GetID()})
		if err != nil {
			return Change{}, err
		}
		c.Old = old
		return c, nil
	}

	data, err := json.Marshal(row)
	if err != nil {
		return Change{}, err
	}
	c.New = data
	return c, nil
}
