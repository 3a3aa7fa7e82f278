package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tevor-api/internal/config"
	"github.com/localnerve/tevor-api/internal/middleware"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/services"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps is what the routes are served from
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Services *services.Services
	Log      zerolog.Logger
}

// RegisterRoutes mounts /health and the authenticated /api routes on app
func RegisterRoutes(app *fiber.App, d Deps) {
	health := &HealthHandler{Config: d.Config, DB: d.DB, Log: d.Log}
	app.Get("/health", health.Health)

	// API routes under /api, all authenticated by client certificate
	api := app.Group("/api", middleware.Authenticate(d.Config.AuthHeader, d.Services.Users))

	jobHandler := &JobHandler{Jobs: d.Services.Jobs}
	prqHandler := &PartRequestHandler{Requests: d.Services.Requests}
	job := api.Group("/job")
	job.Get("/", jobHandler.ListJobs)
	job.Post("/", jobHandler.CreateJob)
	job.Get("/:id", jobHandler.GetJob)
	job.Put("/:id", jobHandler.UpdateJob)
	job.Delete("/:id", jobHandler.CancelJob)
	job.Post("/:id/problem", jobHandler.AddProblem)
	job.Put("/:id/problem/:probid", jobHandler.UpdateProblem)
	job.Delete("/:id/problem/:probid", jobHandler.DeleteProblem)
	job.Post("/:id/part", jobHandler.AddParts)
	job.Delete("/:id/part/:partid", jobHandler.RemovePart)
	job.Get("/:id/partrequests", prqHandler.ListByJob)
	job.Patch("/:id/status", jobHandler.UpdateStatus)
	job.Patch("/:id/assignee", jobHandler.UpdateAssignee)
	job.Patch("/:id/approve", jobHandler.ApproveJob)

	stockHandler := &StockHandler{Stock: d.Services.Stock}
	stockAdmin := middleware.RequireAdmin(models.ModuleStock)
	stock := api.Group("/stock")
	stock.Get("/", stockHandler.ListItems)
	stock.Post("/", stockAdmin, stockHandler.CreateItem)
	stock.Get("/:id", stockHandler.GetItem)
	stock.Put("/:id", stockAdmin, stockHandler.UpdateItem)
	stock.Delete("/:id", stockAdmin, stockHandler.DeleteItem)
	stock.Patch("/:id/balance", stockAdmin, stockHandler.AdjustBalance)
	stock.Get("/:id/audit", stockAdmin, stockHandler.ListAudits)

	api.Get("/partrequest", prqHandler.ListOpen)
	api.Get("/partrequest/:id", prqHandler.GetRequest)

	userHandler := &UserHandler{Users: d.Services.Users}
	userAdmin := middleware.RequireAdmin(models.ModuleUser)
	user := api.Group("/user")
	user.Get("/", userHandler.GetProfile)
	user.Put("/", userHandler.UpdateProfile)
	user.Get("/all", userAdmin, userHandler.ListUsers)
	user.Post("/", userAdmin, userHandler.CreateUser)
	user.Get("/:id", userAdmin, userHandler.GetUser)
	user.Put("/:id", userAdmin, userHandler.UpdateUser)
	user.Delete("/:id", userAdmin, userHandler.DeleteUser)
}
