package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/model"
	"portfolioapi/internal/service"
)

// Deps carries everything RegisterRoutes wires into handlers.
type Deps struct {
	// Store backs /health.
	Store       Pinger
	Experiences service.ExperienceService
	Projects    service.ProjectService
	// Images is optional; image routes are only mounted when set.
	Images service.ImageService
	// Auth guards every mutating route. Nil leaves them open.
	Auth fiber.Handler
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Probes stay at the root; resources are mounted under prefix.
func RegisterRoutes(app *fiber.App, prefix string, d Deps) {
	app.Get("/health", HealthCheck(d.Store))
	app.Get("/healthz", LivenessProbe())

	api := app.Group(prefix)

	registerResource(api, "/"+model.ExperienceCollection, "Experience", d.Experiences, d.Auth)
	registerResource(api, "/"+model.ProjectCollection, "Project", d.Projects, d.Auth)

	if d.Images != nil {
		images := api.Group("/images")
		images.Post("/", protected(d.Auth, UploadImage(d.Images))...)
		images.Get("/:name/url", ImageURL(d.Images))
		images.Get("/:name", GetImage(d.Images))
		images.Delete("/:name", protected(d.Auth, DeleteImage(d.Images))...)
	}
}

func registerResource[R, C, U any](api fiber.Router, path, label string, svc service.Records[R, C, U], auth fiber.Handler) {
	g := api.Group(path)
	g.Get("/", ListRecords(svc))
	g.Post("/create/", protected(auth, CreateRecord(svc))...)
	g.Put("/update/:id/", protected(auth, ReplaceRecord(svc, label))...)
	g.Patch("/update/:id/", protected(auth, PatchRecord(svc, label))...)
	g.Delete("/delete/:id/", protected(auth, DeleteRecord(svc))...)
	g.Get("/:id/", GetRecord(svc, label))
}

func protected(auth, h fiber.Handler) []fiber.Handler {
	if auth == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{auth, h}
}
