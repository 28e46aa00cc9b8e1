// Package ui is the main HTTP server: training, uploads, EDA and accounts.
package ui

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"tabml/app"
	"tabml/internal/config"
	"tabml/ports"
	"tabml/ui/middleware"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Services groups the application services the handlers call. Accounts is
// nil when no database is configured.
type Services struct {
	Training *app.TrainingService
	EDA      *app.EDAService
	Accounts *app.AccountService
	Store    ports.DatasetStore
}

// Server represents the web server
type Server struct {
	router    *gin.Engine
	services  Services
	config    *config.Config
	templates *template.Template
}

// NewServer creates the router with middleware and routes registered
func NewServer(cfg *config.Config, services Services) (*Server, error) {
	gin.SetMode(cfg.Server.GinMode)

	templates, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		services:  services,
		config:    cfg,
		templates: templates,
	}
	s.router.MaxMultipartMemory = cfg.Storage.MaxUploadSize
	s.router.SetHTMLTemplate(templates)

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())
	s.router.Use(middleware.CORS(s.config.Server.AllowedOrigins))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	api.POST("/train", s.handleTrain)
	api.POST("/upload", s.handleUpload)
	api.GET("/eda", s.handleEDA)

	api.POST("/signup", s.requireAccounts, s.handleSignup)
	api.POST("/login", s.requireAccounts, s.handleLogin)
	api.GET("/data", s.requireAccounts, s.handleListUsers)
}

// Handler exposes the router for an http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting tabml server on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"AccountsEnabled": s.services.Accounts != nil,
	})
}
