// Package site serves the browser frontend for the todo API.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/okian/todos/pkg/logger"
)

// Error constants
var (
	ErrNoIndex = errors.New("static dir has no index.html")
)

const indexFile = "index.html"

type config struct {
	dir string
}

// Option configures the site routes.
type Option func(*config)

// WithDir serves the frontend from dir instead of the embedded build.
func WithDir(dir string) Option {
	return func(c *config) {
		c.dir = dir
	}
}

// Register attaches the frontend routes to mux:
//
//	GET /          -> index.html
//	GET /static/.. -> assets
func Register(ctx context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	files := embeddedFS()
	if c.dir != "" {
		dirFS, err := openDir(c.dir)
		if err != nil {
			logger.Named("site").Warn(ctx, "falling back to embedded frontend",
				logger.String("static_dir", c.dir), logger.Error(err))
		} else {
			files = dirFS
		}
	}

	root := NewRootHandler(files)
	mux.HandleFunc("GET /{$}", root.HandleRoot)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(files)))
}

// openDir checks that dir holds a frontend build.
func openDir(dir string) (fs.FS, error) {
	fsys := os.DirFS(dir)
	if _, err := fs.Stat(fsys, indexFile); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoIndex, err)
	}
	return fsys, nil
}

// RootHandler handles root path requests
type RootHandler struct {
	files fs.FS
}

// NewRootHandler creates a new root handler
func NewRootHandler(files fs.FS) *RootHandler {
	return &RootHandler{files: files}
}

// HandleRoot handles GET / requests and serves the frontend index page
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, h.files, indexFile)
}
