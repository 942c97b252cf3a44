// Package sqlxrepos implements the Postgres repositories with sqlx.
package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sarvashiksha/backend/core"
)

// isUUID guards queries on uuid columns: postgres rejects malformed ids instead of matching nothing.
func isUUID(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

// trapNoRowsErr maps "no rows" errors to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// where accumulates AND-ed conditions with their positional args.
type where struct {
	conds []string
	args  []interface{}
}

// add appends cond, where every "?" is replaced by the next positional placeholder.
func (w *where) add(cond string, args ...interface{}) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func orderBy(orderings []core.DBOrdering, columns map[string]string, dflt string) string {
	mapped := core.MapOrdering(orderings, columns)
	if len(mapped) == 0 {
		return " ORDER BY " + dflt
	}
	parts := make([]string, 0, len(mapped))
	for _, ord := range mapped {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
