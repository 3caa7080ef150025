package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool, classID string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	var exists bool
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	switch errors.Cause(err) {
	case nil:
		exists = true
	case user.ErrNotFound:
		if usr, err = cli.usrRepo.GetUserByUsernameOrEmail(ctx, email); err == nil {
			exists = true
		} else if errors.Cause(err) != user.ErrNotFound {
			return err
		}
	default:
		return err
	}

	now := time.Now().UTC()
	usr.Username = uname
	usr.Email = email
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if classID != "" {
		usr.ClassID = classID
	}
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		isActive := true
		_, err = cli.usrRepo.UpdateUser(ctx, usr, &isActive)
		return err
	}
	usr.IsActive = true
	usr.CreatedAt = now
	_, err = cli.usrRepo.CreateUser(ctx, usr)
	return err
}
