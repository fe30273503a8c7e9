package main

import (
	"time"

	"lumina/cmd/server/handlers"
	"lumina/cmd/server/handlers/editor"
	"lumina/cmd/server/handlers/export"
	"lumina/cmd/server/handlers/httperr"
	notesHandlers "lumina/cmd/server/handlers/notes"
	"lumina/cmd/server/middlewares"
	"lumina/internal/config"
	"lumina/internal/logger"
	util "lumina/internal/utils"

	_ "lumina/docs" // Load swagger docs

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

const (
	RateLimitExpiration = 1 * time.Minute
	// BodyLimit leaves room for OCR uploads.
	BodyLimit = 12 * 1024 * 1024
)

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(cfg config.Config, svc *services) *fiber.App {
	v := util.NewValidator()

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
		BodyLimit:    BodyLimit,
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app, svc.registry)
	}

	// Health check endpoint, outside versioned API to appease scanners and to avoid logging
	app.Get("/healthz", handlers.Healthz(svc.backend))

	app.Get("/docs/*", swagger.HandlerDefault)

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		logger.L().Info("request logging disabled")
	}
	if !cfg.AuthEnabled() {
		logger.L().Warn("AUTH_JWT_SECRET not set, API is unauthenticated")
	}

	jwtMiddleware := middlewares.JWT(cfg.AuthJWTSecret)
	api := v1.Group("", jwtMiddleware)

	// Notes routes
	notesH := notesHandlers.NewHandlers(svc.notes, svc.editor, v)
	notesGrp := api.Group("/notes")
	notesGrp.Post("/", notesH.Create)
	notesGrp.Get("/", notesH.List)
	notesGrp.Get("/:id", notesH.Get)
	notesGrp.Put("/:id", notesH.Update)
	notesGrp.Delete("/:id", notesH.Delete)
	notesGrp.Post("/:id/favorite", notesH.Favorite)
	notesGrp.Post("/:id/pin", notesH.Pin)
	api.Get("/palette", notesHandlers.Palette)

	// Editor routes
	editorH := editor.NewHandlers(svc.editor, svc.notes, svc.ai, v)
	editorGrp := api.Group("/editor")
	editorGrp.Get("/", editorH.Get)
	editorGrp.Patch("/", editorH.Patch)
	editorGrp.Delete("/", editorH.Close)

	aiLimiter := middlewares.BuildRateLimiter(cfg.AIRatePerMin, RateLimitExpiration)
	aiGrp := editorGrp.Group("/ai", aiLimiter)
	aiGrp.Post("/ocr", editorH.OCR)
	aiGrp.Post("/:task", editorH.Assist)
	editorGrp.Post("/:id", editorH.Open)

	// Export routes
	exportH := export.NewHandlers(svc.notes, svc.uploader)
	api.Get("/export", exportH.Download)
	api.Post("/export/s3", exportH.Upload)

	// WebSocket routes
	wsHandlers := notesHandlers.NewWebSocketHandlers(svc.hub, cfg.AuthJWTSecret, cfg.WSMaxSessionSec)
	dictationH := editor.NewDictationHandlers(svc.editor, svc.dictation, svc.dictationRuns, cfg.DictationFrameSize, cfg.WSMaxSessionSec)
	app.Use("/ws", notesHandlers.WSUpgrade(cfg.AuthJWTSecret))
	app.Get("/ws/notes/stream", websocket.New(wsHandlers.WSNotesStream))
	app.Get("/ws/dictation", websocket.New(dictationH.WSDictation))

	return app
}
