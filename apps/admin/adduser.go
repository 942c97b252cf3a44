package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sarvashiksha/backend/core"
	"github.com/sarvashiksha/backend/core/user"
)

// addUser updates or creates an active user.User with the given role.
func (cli *commandLine) addUser(name, uname, email, role, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)

	if !isRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}

	usr, found, err := cli.findUser(ctx, uname, email)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	usr.Name = core.CleanString(name)
	if uname != "" {
		usr.Username = uname
	}
	if email != "" {
		usr.Email = email
	}
	usr.Role = role
	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if found {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
		return err
	}
	usr.CreatedAt = now
	_, err = cli.usrRepo.CreateUser(ctx, usr)
	return err
}

func (cli *commandLine) findUser(ctx context.Context, identifiers ...string) (user.User, bool, error) {
	for _, ident := range identifiers {
		if ident == "" {
			continue
		}
		usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: ident})
		switch err {
		case nil:
			return usr, true, nil
		case user.ErrNotFound:
		default:
			return user.User{}, false, err
		}
	}
	return user.User{}, false, nil
}

func isRole(role string) bool {
	for _, r := range user.AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
