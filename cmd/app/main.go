package main

import (
	"dinebook/config"
	"dinebook/di"
	"dinebook/helper"
	"dinebook/shared/logger"
	"dinebook/shared/timezone"

	"github.com/rs/zerolog/log"
)

// @title Dinebook API
// @version 1.0
// @description Restaurant slot publishing and table reservations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	logger.InitLogger()

	cfg := config.Get()

	logger.Configure(cfg)
	timezone.Init(cfg.App.Timezone)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
