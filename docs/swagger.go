// Package docs Lumina API
//
// @title  Lumina API
// @version 0.1.0
// @description Personal notes with an autosaving editor, AI assistance and dictation.
// @host      localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Only required when AUTH_JWT_SECRET is set.
package docs

import (
	_ "lumina/cmd/server/handlers/httperr"
	_ "lumina/internal/services/notes"
)
