// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// Files contains the dashboard page served at "/":
// - frontend/index.html - single page that polls /api and follows /api/events/stream
//
//go:embed frontend
var Files embed.FS
