package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/dashboard"
	"github.com/trezcool/pathways/core/kv"
	"github.com/trezcool/pathways/core/namespace"
	"github.com/trezcool/pathways/core/session"
	logsvc "github.com/trezcool/pathways/services/logger"
	"github.com/trezcool/pathways/storage/database"
	"github.com/trezcool/pathways/storage/kvstore"
	sqlkv "github.com/trezcool/pathways/storage/kvstore/sqlstore"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	// set up storage
	db, store, err := openStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s storage: %v", conf.Storage.Backend, err), err)
	}
	defer func() { _ = store.Close() }()

	seeds, err := namespace.DefaultSeeds()
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading seeds: %v", err), err)
	}
	adapter := kv.NewAdapter(store, logger)
	reg := namespace.NewRegistry(adapter)
	boards := dashboard.NewBoards(reg, seeds, logger)
	validate, _ := core.NewValidator()

	// start CLI
	cli := commandLine{
		db:       db,
		reg:      reg,
		admins:   boards.AdminUsers,
		sessions: session.NewManager(adapter, boards.AdminUsers, conf),
		validate: validate,
		out:      os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		_ = store.Close()
		os.Exit(1)
	}
}

// openStorage does not migrate SQL databases: that is the job of "migrate up".
func openStorage(conf *core.Config) (*sqlx.DB, kv.Store, error) {
	switch conf.Storage.Backend {
	case core.StorageSQLite, core.StoragePostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		return db, sqlkv.New(db), nil
	}
	store, err := kvstore.Open(context.Background(), conf)
	return nil, store, err
}
