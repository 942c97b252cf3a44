package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMakeVerifyToken(t *testing.T) {
	timeout := 3 * 24 * time.Hour
	tg := newTokenGenerator("secret", timeout)

	now := time.Now()
	usr := User{
		ID:        "8b3a54a4-5d4b-4a40-a6bd-0b6ad7e83c1b",
		Name:      "T",
		Username:  "teacher",
		Email:     "t@test.test",
		Role:      RoleTeacher,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	_ = usr.SetPassword("Pwd-1234")

	validToken := tg.makeToken(usr)

	// generate an expired token
	dayLate := timeout + (24 * time.Hour)
	tg.nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := tg.makeToken(usr)
	tg.nowFunc = time.Now

	loggedIn := usr
	loggedIn.LastLogin = now.Add(time.Minute)

	otherKey := newTokenGenerator("other", timeout)

	tests := []struct {
		name    string
		tg      *tokenGenerator
		usr     User
		token   string
		wantErr error
	}{
		{name: "no token", tg: tg, usr: usr, wantErr: ErrInvalidToken},
		{name: "invalid parts len", tg: tg, usr: usr, token: "lmaooolol", wantErr: ErrInvalidToken},
		{name: "invalid base32", tg: tg, usr: usr, token: "hahaha-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "invalid timestamp", tg: tg, usr: usr, token: "NRXWY-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "invalid token", tg: tg, usr: usr, token: "HE4TS-sigsig-sig", wantErr: ErrInvalidToken},
		{name: "expired token", tg: tg, usr: usr, token: expiredToken, wantErr: ErrTokenExpired},
		{name: "used after login", tg: tg, usr: loggedIn, token: validToken, wantErr: ErrInvalidToken},
		{name: "other secret", tg: otherKey, usr: usr, token: validToken, wantErr: ErrInvalidToken},
		{name: "valid token", tg: tg, usr: usr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, tt.tg.verifyToken(tt.usr, tt.token))
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	usr := User{ID: "8b3a54a4-5d4b-4a40-a6bd-0b6ad7e83c1b"}
	id, err := DecodeUID(EncodeUID(usr))
	assert.NoError(t, err)
	assert.Equal(t, usr.ID, id)

	_, err = DecodeUID("%%%")
	assert.Equal(t, ErrInvalidToken, err)
}
