package main

import (
	"context"
	"fmt"

	"github.com/okulik/mealsync/internal/config"
	handlerhttp "github.com/okulik/mealsync/internal/handler/http"
	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/internal/server"
	"github.com/okulik/mealsync/internal/service"
	"github.com/okulik/mealsync/internal/store"
	"github.com/okulik/mealsync/internal/workers"
	"github.com/okulik/mealsync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("mealsync-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	services := service.NewServices(storages, nil, log)

	buildInfo := models.NewBuildInfo(buildVersion, buildDate, buildCommit)
	handler := handlerhttp.NewHandler(services, buildInfo, log)

	srv, err := server.NewServer(handler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if cfg.Workers.SyncInterval > 0 {
		background := workers.NewWorkers(
			workers.NewBatchWorker(storages.BatchRepository, services.SyncService, cfg.Workers, log),
		)
		background.Run()
		defer background.Stop()
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
