package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/trezcool/pathways/apps/api/echo"
	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/dashboard"
	"github.com/trezcool/pathways/core/kv"
	"github.com/trezcool/pathways/core/namespace"
	"github.com/trezcool/pathways/core/notification"
	"github.com/trezcool/pathways/core/session"
	emailsvc "github.com/trezcool/pathways/services/email"
	logsvc "github.com/trezcool/pathways/services/logger"
	"github.com/trezcool/pathways/storage/kvstore"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	storeLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "KV : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	storeLogger.Enable(!conf.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up storage
	store, err := kvstore.Open(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s storage: %v", conf.Storage.Backend, err), err)
	}
	defer func() {
		if err = store.Close(); err != nil {
			storeLogger.Error("Failed to close", err)
		}
	}()

	adapter := kv.NewAdapter(store, storeLogger)
	if watcher, ok := store.(kv.Watcher); ok {
		go func() {
			if err := watcher.Watch(ctx, adapter.Hub()); err != nil && ctx.Err() == nil {
				storeLogger.Error(fmt.Sprintf("watching remote changes: %v", err), err)
			}
		}()
	}

	seeds, err := namespace.DefaultSeeds()
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading seeds: %v", err), err)
	}
	reg := namespace.NewRegistry(adapter)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	boards := dashboard.NewBoards(reg, seeds, logger)
	if err = boards.Mount(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("mounting boards: %v", err), err)
	}
	boards.Watch(ctx, adapter.Hub())

	feed := notification.NewFeed(reg.Notifications, seeds.Notifications).
		WithMailer(emailsvc.New(conf, logger), conf.NotifyAddresses()...)

	sessions := session.NewManager(adapter, boards.AdminUsers, conf)
	validate, translator := core.NewValidator()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Storage.Backend)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Boards:     boards,
			Feed:       feed,
			Sessions:   sessions,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		sctx, scancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer scancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
