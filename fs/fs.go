// Package appfs embeds the files the binaries need at runtime:
// SQL migrations, default seed collections and email templates.
package appfs

import "embed"

//go:embed migrations seeds templates
var FS embed.FS
