package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"imagevault/internal/auth"
	"imagevault/internal/service"
)

const healthTimeout = 2 * time.Second

// Pinger is the slice of *sql.DB the health endpoint needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps carries everything RegisterRoutes wires into handlers.
type Deps struct {
	DB        Pinger
	Presign   service.PresignService
	Registrar service.RegistrarService
	Gallery   service.GalleryService
	Deletion  service.DeletionService
	JWTSecret []byte
	PageSize  int
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Image routes sit behind bearer authentication; probes are public.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	// Attached per route so unknown paths still resolve to 404/405.
	authn := auth.Middleware(d.JWTSecret)
	app.Post("/upload", authn, IssueUploadURL(d.Presign))
	app.Post("/upload-metadata", authn, RegisterMetadata(d.Registrar))
	app.Get("/download", authn, IssueDownloadURL(d.Presign))
	app.Get("/download-metadata", authn, ListImages(d.Gallery, d.PageSize))
	app.Post("/delete", authn, DeleteImages(d.Deletion))
}

// HealthCheck godoc
// @Summary      Readiness probe
// @Description  Checks database connectivity
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  errorPayload
// @Router       /health [get]
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 as long as the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
