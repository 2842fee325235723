// Package appfs embeds the static files the app ships with.
package appfs

import "embed"

//go:embed migrations all:templates assets
var FS embed.FS
