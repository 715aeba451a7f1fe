package main

import (
	"errors"

	"github.com/trezcool/pathways/storage/database"
)

var (
	migrateFunc = database.RunMigrations // mockable

	errNoDatabase = errors.New("migrations need a sqlite or postgres storage backend")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	return migrateFunc(args[0], cli.db, args[1:]...)
}
