// main.go
//
// Tevor repair-shop management API
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of tevor-api.
// tevor-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// tevor-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with tevor-api.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/tevor-api/internal/config"
	"github.com/localnerve/tevor-api/internal/database"
	"github.com/localnerve/tevor-api/internal/handlers"
	"github.com/localnerve/tevor-api/internal/logging"
	"github.com/localnerve/tevor-api/internal/metrics"
	"github.com/localnerve/tevor-api/internal/middleware"
	"github.com/localnerve/tevor-api/internal/services"
	"github.com/localnerve/tevor-api/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	_ "github.com/localnerve/tevor-api/docs/api" // Swagger docs
)

// @title Tevor API
// @version 1.0.0
// @description Repair shop job, stock and part request service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/tevor-api
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CertAuth
// @in header
// @name x-tevor-cn

func main() {
	log := logging.New("info", "json")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log = logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	svc := services.New(db, cfg.CacheSize, log, metrics.New(prometheus.DefaultRegisterer))

	// A fresh database needs one administrator to create everyone else
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	admin, err := svc.Users.EnsureAdmin(startCtx, cfg.BootstrapAdminCert)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bootstrap administrator")
	}
	if admin != nil {
		log.Info().Str("userid", admin.UserID).Msg("bootstrap administrator created")
	}

	app := newApp(cfg, db, svc, log, prometheus.DefaultRegisterer)

	// Graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		log.Info().Msg("gracefully shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	log.Info().Msg("server stopped")
}

// newApp builds the fiber app with the global middleware, metrics, swagger,
// the API routes and the 404 fallback
func newApp(cfg *config.Config, db *gorm.DB, svc *services.Services, log zerolog.Logger, reg prometheus.Registerer) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          utils.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))
	app.Use(compress.New())

	// Prometheus metrics
	prom := fiberprometheus.NewWithRegistry(reg, "tevor-api", "http", "", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.RegisterRoutes(app, handlers.Deps{
		Config:   cfg,
		DB:       db,
		Services: svc,
		Log:      log,
	})

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, "Resource not found", fiber.StatusNotFound)
	})

	return app
}
