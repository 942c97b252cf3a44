// Package inmemdb keeps every table in process memory. It backs tests & the "memory" database engine.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sarvashiksha/backend/core/class"
	"github.com/sarvashiksha/backend/core/content"
	"github.com/sarvashiksha/backend/core/notification"
	"github.com/sarvashiksha/backend/core/submission"
	"github.com/sarvashiksha/backend/core/user"
)

type (
	// DB guards all tables with one lock so cross-table reads stay consistent.
	DB struct {
		sync.RWMutex
		users         map[string]*user.User
		classes       map[string]*class.Class
		assignments   map[string]*content.Assignment
		materials     map[string]*content.Material
		submissions   map[string]*submission.Submission
		notifications map[string]*notification.Notification
		seq           int64 // insertion order, used for stable listings
		order         map[string]int64
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:         make(map[string]*user.User),
		classes:       make(map[string]*class.Class),
		assignments:   make(map[string]*content.Assignment),
		materials:     make(map[string]*content.Material),
		submissions:   make(map[string]*submission.Submission),
		notifications: make(map[string]*notification.Notification),
		order:         make(map[string]int64),
	}
	return db, nil
}

// newID must be called with the write lock held.
func (db *DB) newID() string {
	id := uuid.New().String()
	db.seq++
	db.order[id] = db.seq
	return id
}

func (db *DB) before(id1, id2 string) bool {
	return db.order[id1] < db.order[id2]
}
