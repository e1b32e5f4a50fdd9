package site

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var staticFS embed.FS

// embeddedFS returns the built-in frontend rooted at static/.
func embeddedFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return staticFS
	}
	return sub
}
