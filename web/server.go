// Package web serves the browser chat UI and its JSON API.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/logger"
	"github.com/HuaTug/LLM/memory"
	"github.com/HuaTug/LLM/metrics"
	"github.com/HuaTug/LLM/prompts"
	"github.com/HuaTug/LLM/session"
	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFiles embed.FS

// DefaultTemperature is the slider's initial value.
const DefaultTemperature = 0.08

// Info is shown in the UI banner and returned by GET /api/config.
type Info struct {
	Provider   string `json:"provider"`
	Endpoint   string `json:"endpoint,omitempty"`
	Deployment string `json:"deployment"`
	APIVersion string `json:"api_version,omitempty"`
}

// Config holds the dependencies of a Server.
type Config struct {
	LLM    llms.LLM
	Memory memory.Memory
	Prompt prompts.Template
	Info   Info
	Logger logger.Logger
}

// Server is the chat web application. Each browser gets a session cookie
// whose value is its conversation ID.
type Server struct {
	llm    llms.LLM
	mem    memory.Memory
	prompt prompts.Template
	info   Info
	log    logger.Logger
	router *gin.Engine

	mu      sync.Mutex
	history map[string][]session.Message
}

// NewServer builds the router. A nil Memory uses a BufferMemory and an
// empty Prompt uses the friendly persona.
func NewServer(cfg Config) (*Server, error) {
	if cfg.LLM == nil {
		return nil, errors.New("web: LLM is required")
	}
	s := &Server{
		llm:     cfg.LLM,
		mem:     cfg.Memory,
		prompt:  cfg.Prompt,
		info:    cfg.Info,
		log:     cfg.Logger,
		history: make(map[string][]session.Message),
	}
	if s.mem == nil {
		s.mem = memory.NewBufferMemory()
	}
	if s.prompt.Text == "" {
		persona, err := prompts.NewRegistry(prompts.Builtins()...).Get("friendly")
		if err != nil {
			return nil, err
		}
		s.prompt = persona.Template
	}
	if s.log == nil {
		s.log = logger.NopLogger()
	}

	page, err := fs.ReadFile(staticFiles, "static/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded page: %w", err)
	}

	metrics.Register()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(RecoveryMiddleware(s.log))
	router.Use(LoggerMiddleware(s.log))
	router.Use(RequestIDMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.POST("/chat", s.Chat)
		api.GET("/history", s.History)
		api.POST("/clear", s.Clear)
		api.GET("/config", s.Config)
	}

	s.router = router
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("web server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	return nil
}

func (s *Server) appendHistory(id string, msgs ...session.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[id] = append(s.history[id], msgs...)
}

func (s *Server) historyOf(id string) []session.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]session.Message, len(s.history[id]))
	copy(out, s.history[id])
	return out
}

func (s *Server) clearHistory(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, id)
}
