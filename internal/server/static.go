package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const indexFile = "index.html"

var contentTypes = map[string]string{
	".html": "text/html",
	".js":   "text/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".wav":  "audio/wav",
	".mp4":  "video/mp4",
	".woff": "application/font-woff",
	".ttf":  "application/font-ttf",
	".eot":  "application/vnd.ms-fontobject",
	".otf":  "application/font-otf",
	".wasm": "application/wasm",
}

const defaultContentType = "application/octet-stream"

// contentType maps a file name to its content type by extension.
func contentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return defaultContentType
}

// serveStatic serves files under the document root. Anything that is not a
// regular file falls back to index.html so client-side routes work.
func (s *Server) serveStatic(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	rel := path.Clean("/" + c.Request.URL.Path)
	if rel == "/" {
		rel = "/" + indexFile
	}
	file := filepath.Join(s.cfg.DocRoot, filepath.FromSlash(rel))

	data, err := readRegular(file)
	if err != nil {
		file = filepath.Join(s.cfg.DocRoot, indexFile)
		data, err = readRegular(file)
		if err != nil {
			s.logger.Error("fallback document missing", zap.String("file", file), zap.Error(err))
			c.Data(http.StatusInternalServerError, "text/plain", []byte("Error loading "+indexFile+": "+err.Error()))
			return
		}
	}
	c.Data(http.StatusOK, contentType(file), data)
}

func readRegular(name string) ([]byte, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(name)
}
