// Package api exposes the deadline store and harvest controls over HTTP
// for administration.
package api

import (
	"context"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/nhle/deadline-harvester/internal/harvest"
	"github.com/nhle/deadline-harvester/internal/store"
)

// TriggerFunc starts a harvest and waits for it to finish.
type TriggerFunc func(ctx context.Context) (*harvest.Result, error)

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Store   store.Store
	Engine  *harvest.Engine
	Trigger TriggerFunc

	// CleanupDays is used when a cleanup request names no age.
	CleanupDays int

	// Registry receives the HTTP metrics. Nil uses the default registerer.
	Registry prometheus.Registerer

	Log logrus.FieldLogger
}

// New builds the fiber app with every route registered.
func New(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Registry == nil {
		d.Registry = prometheus.DefaultRegisterer
	}

	app := fiber.New(fiber.Config{
		AppName:               "deadline-harvester",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		ErrorHandler:          errorHandler(d.Log),
	})
	app.Use(recover.New())

	prom := fiberprometheus.NewWithRegistry(d.Registry, "deadline-harvester", "deadlines", "http", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	h := &handler{deps: d, now: time.Now}

	app.Get("/healthz", h.health)

	api := app.Group("/api")
	api.Get("/deadlines", h.listDeadlines)
	api.Get("/deadlines/search", h.searchDeadlines)
	api.Get("/deadlines/upcoming", h.upcomingDeadlines)
	api.Get("/deadlines/:id", h.getDeadline)
	api.Post("/deadlines/merge", h.merge)
	api.Post("/deadlines/cleanup", h.cleanup)
	api.Get("/duplicates", h.duplicates)
	api.Post("/harvest", h.harvest)
	api.Get("/runs", h.runs)

	return app
}

func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).WithError(err).Error("request failed")
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
