// Package main provides the workflow editor API server implementation.
package main

import (
	"crypto/subtle"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/keyauth"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/procurehub/floweditor/pkg/persistence"
	"github.com/procurehub/floweditor/pkg/services"
	"github.com/procurehub/floweditor/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	apiToken    string
	validate    *validator.Validate
}

func NewAPI(logger *slog.Logger, persistence persistence.Persistence, apiToken string) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		apiToken:    apiToken,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.persistence)
	publishingService := services.NewPublishing(a.persistence)

	handlers := web.NewAPIHandlers(workflowService, publishingService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Workflow Editor API")
	})

	w := app.Group("/workflows", a.authMiddleware()...)
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/publish", handlers.PublishWorkflow)
	w.Post("/:id/clone", handlers.CloneWorkflow)

	app.Get("/health", handlers.HealthCheck)

	return app
}

// authMiddleware guards the workflow endpoints with a bearer token when one
// is configured. Health endpoints stay open either way.
func (a *API) authMiddleware() []fiber.Handler {
	if a.apiToken == "" {
		return nil
	}

	token := []byte(a.apiToken)

	return []fiber.Handler{keyauth.New(keyauth.Config{
		Validator: func(_ fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), token) == 1 {
				return true, nil
			}

			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
	})}
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
