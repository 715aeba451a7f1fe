package main

import (
	"context"
	"fmt"

	"github.com/trezcool/pathways/core/catalog"
)

// addUser updates or creates an active catalog.AdminUser
func (cli *commandLine) addUser(email, name, role, pwd string) error {
	ctx := context.Background()
	users, err := cli.admins.List(ctx)
	if err != nil {
		return err
	}
	usr, found := catalog.FindAdminUser(users, email)
	if found {
		if name == "" {
			name = usr.Name
		}
		if role == "" {
			role = usr.Role
		}
	}

	form := catalog.AdminUserForm{
		Name:            name,
		Email:           email,
		Role:            role,
		Status:          catalog.StatusActive,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err = form.Validate(cli.validate); err != nil {
		return err
	}

	if found {
		if _, _, err = cli.admins.Update(ctx, usr.ID, form.Record); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "updated %s\n", form.Email)
		return nil
	}
	if _, err = cli.admins.Create(ctx, form.Record(catalog.AdminUser{})); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s\n", form.Email)
	return nil
}
