package api

import (
	"context"
	"log"
	"net/http"

	"subpilot/config"
	"subpilot/media"
	"subpilot/pipeline"
	"subpilot/session"

	"github.com/gin-gonic/gin"
)

// Uploader publishes a finished SRT document to an external sink.
type Uploader interface {
	UploadSRT(ctx context.Context, filename string, body []byte) (string, error)
}

// Server handles HTTP API requests for the subtitle workflow
type Server struct {
	sessionManager *session.Manager
	runner         *pipeline.Runner
	extractor      *media.Extractor
	uploader       Uploader
	cfg            config.Config
	httpServer     *http.Server
}

// NewServer creates a new API server instance. uploader may be nil when no
// export sink is configured.
func NewServer(sessionManager *session.Manager, runner *pipeline.Runner, extractor *media.Extractor, uploader Uploader, cfg config.Config) *Server {
	s := &Server{
		sessionManager: sessionManager,
		runner:         runner,
		extractor:      extractor,
		uploader:       uploader,
		cfg:            cfg,
	}

	s.httpServer = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s.Router(),
	}

	return s
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 32 << 20

	s.registerHealthRoutes(r)
	s.registerVideoRoutes(r)
	s.registerSubtitleRoutes(r)
	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	log.Printf("Starting subtitle server on %s", s.httpServer.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down subtitle server...")
	return s.httpServer.Shutdown(ctx)
}
