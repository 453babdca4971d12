package main

import (
	"github.com/pichat-dev/pichat-go-server/internal/api"
	"github.com/pichat-dev/pichat-go-server/internal/config"
	"github.com/pichat-dev/pichat-go-server/internal/database"
	"github.com/pichat-dev/pichat-go-server/internal/event"
	"github.com/pichat-dev/pichat-go-server/internal/logger"
	"github.com/pichat-dev/pichat-go-server/internal/registry"
	"github.com/pichat-dev/pichat-go-server/internal/server"
	"github.com/pichat-dev/pichat-go-server/internal/utils"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		logger.FatalF("Error occured while reading config %v", err)
		return
	}
	loggerCallback := logger.Init()
	logger.Debug("Application initializing...")
	cleaner := event.NewCleaner()
	cleaner.Init(loggerCallback)

	var store database.Store
	switch cfg.Storage {
	case config.StorageMongo:
		if err := database.ConnectDatabase(); err != nil {
			logger.FatalF("Error occured while initializing database, details: %v", err)
			return
		}
		store = database.NewMongoStore()
	default:
		store = database.NewFileStore(cfg.DBPath)
	}

	records, err := store.Load()
	if err != nil {
		logger.FatalF("Error occured while loading identity records, details: %v", err)
		return
	}

	reg := registry.New(utils.ParseStringTime(cfg.RateLimitInterval))
	reg.Load(records)
	logger.InfoF("Loaded %d identity records", len(records))

	syncer := database.NewSyncer(reg, store, utils.ParseStringTime(cfg.SyncInterval))
	syncer.Start()

	a := api.New(reg, cfg.AdminLogin)
	srv := server.NewServer(a, reg,
		utils.ParseStringTime(cfg.SilenceTimeout),
		utils.ParseStringTime(cfg.HaltInterval),
	)
	srv.Start(cfg.AppPort)
}
