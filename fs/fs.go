// Package appfs exposes embedded assets (goose migrations).
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
