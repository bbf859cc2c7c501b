package http

import (
	"github.com/okulik/mealsync/internal/logger"
	"github.com/okulik/mealsync/internal/service"
	"github.com/okulik/mealsync/models"
)

type Handler struct {
	services  *service.Services
	buildInfo models.BuildInfo

	logger *logger.Logger
}

func NewHandler(services *service.Services, buildInfo models.BuildInfo, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:  services,
		buildInfo: buildInfo,
		logger:    logger,
	}
}
