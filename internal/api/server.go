package api

import (
	"net/http"
	"path/filepath"

	"github.com/ah-its-andy/mediaconv/internal/config"
	"github.com/ah-its-andy/mediaconv/internal/converter"
	"github.com/ah-its-andy/mediaconv/internal/format"
	"github.com/ah-its-andy/mediaconv/internal/scratch"
	"github.com/gin-gonic/gin"
)

// Server wires the HTTP endpoints to the converter dispatcher and the
// scratch directory. All state is read-only after construction; requests
// share nothing.
type Server struct {
	Router  *gin.Engine
	cfg     *config.Config
	disp    *converter.Dispatcher
	scratch *scratch.Dir
}

func NewServer(cfg *config.Config, disp *converter.Dispatcher, sc *scratch.Dir) *Server {
	g := gin.Default()
	s := &Server{Router: g, cfg: cfg, disp: disp, scratch: sc}

	g.POST("/convert", s.handleConvert)
	g.GET("/health", s.handleHealth)
	g.GET("/formats", s.handleFormats)

	g.Static("/static", cfg.StaticDir)
	g.GET("/", func(c *gin.Context) { c.File(filepath.Join(cfg.StaticDir, "index.html")) })

	return s
}

// handleFormats exposes the registry so the UI can build its picker.
func (s *Server) handleFormats(c *gin.Context) {
	c.JSON(http.StatusOK, format.Formats)
}

// handleHealth reports whether the transcoder is invocable. It never
// returns a non-2xx status; a missing tool is an ok=false payload with a
// remediation hint.
func (s *Server) handleHealth(c *gin.Context) {
	version, err := s.disp.Version(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"ok":    false,
			"error": "FFmpeg not found. Install it and make sure it is in PATH, then restart your terminal and run: ffmpeg -version",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "ffmpeg": version})
}
