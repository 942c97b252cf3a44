package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrdering(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want []DBOrdering
	}{
		{name: "empty", val: ""},
		{name: "single asc", val: "name", want: []DBOrdering{{Field: "name", Ascending: true}}},
		{
			name: "mixed", val: "is_active, -name",
			want: []DBOrdering{{Field: "is_active", Ascending: true}, {Field: "name"}},
		},
		{name: "blank fields dropped", val: ",-", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOrdering(tt.val))
		})
	}
}

func TestMapOrdering(t *testing.T) {
	cols := map[string]string{"name": "u.name", "created_at": "u.created_at"}
	got := MapOrdering(ParseOrdering("-created_at,password_hash,name"), cols)
	assert.Equal(t, []DBOrdering{{Field: "u.created_at"}, {Field: "u.name", Ascending: true}}, got)
	assert.Equal(t, "u.created_at DESC", got[0].String())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "not found", err: NewNotFoundError("lol"), want: KindNotFound},
		{name: "conflict", err: NewConflictError("lol"), want: KindConflict},
		{name: "forbidden", err: NewForbiddenError("lol"), want: KindForbidden},
		{name: "bad request", err: NewBadRequestError("lol"), want: KindBadRequest},
		{name: "validation", err: NewValidationError(nil, FieldError{Field: "grade", Error: "lol"}), want: KindBadRequest},
		{name: "plain", err: assert.AnError, want: KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
