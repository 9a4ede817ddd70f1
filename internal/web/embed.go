// Package web serves the bundled study UI from the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/learnable-ai/companion/internal/logger"
	"go.uber.org/zap"
)

//go:embed dist/*
var staticFiles embed.FS

// FileSystem returns the embedded UI with the dist folder as root.
func FileSystem() (fs.FS, error) {
	return fs.Sub(staticFiles, "dist")
}

// RegisterStaticRoutes serves the UI for every path outside /api. Register the
// API routes first.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := FileSystem()
	if err != nil {
		return err
	}
	return registerFS(e, staticFS)
}

func registerFS(e *echo.Echo, staticFS fs.FS) error {
	const funcName = "web.RegisterStaticRoutes"

	index, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		return err
	}
	fileServer := http.FileServer(http.FS(staticFS))

	e.GET("/*", func(c echo.Context) error {
		requestPath := path.Clean(c.Request().URL.Path)
		if strings.HasPrefix(requestPath, "/api/") || requestPath == "/api" {
			return echo.ErrNotFound
		}

		name := strings.TrimPrefix(requestPath, "/")
		if name == "" || name == "." {
			return c.HTMLBlob(http.StatusOK, index)
		}

		stat, err := fs.Stat(staticFS, name)
		if err != nil || stat.IsDir() {
			// Client-side views all live in index.html.
			logger.Debug("serving index for unknown path",
				zap.String("function", funcName),
				zap.String("path", requestPath),
			)
			return c.HTMLBlob(http.StatusOK, index)
		}

		fileServer.ServeHTTP(c.Response(), c.Request())
		return nil
	})

	logger.Info("embedded UI registered", zap.String("function", funcName))
	return nil
}

// HasEmbeddedFiles reports whether the UI was bundled.
func HasEmbeddedFiles() bool {
	_, err := fs.Stat(staticFiles, "dist/index.html")
	return err == nil
}
