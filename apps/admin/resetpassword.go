package main

import (
	"context"
	"errors"

	"github.com/trezcool/pathways/core/catalog"
)

var errUserNotFound = errors.New("admin user not found")

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	users, err := cli.admins.List(ctx)
	if err != nil {
		return err
	}
	usr, found := catalog.FindAdminUser(users, email)
	if !found {
		return errUserNotFound
	}

	form := catalog.AdminUserForm{
		Name:            usr.Name,
		Email:           usr.Email,
		Role:            usr.Role,
		Status:          usr.Status,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err = form.Validate(cli.validate); err != nil {
		return err
	}
	_, _, err = cli.admins.Update(ctx, usr.ID, form.Record)
	return err
}
