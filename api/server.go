// Package api exposes solve-run history over HTTP. The surface is
// read-only: runs are produced by the solver pipeline, never through
// this API.
package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stellarlinkco/code-solver/internal/config"
	"github.com/stellarlinkco/code-solver/internal/store"
)

type Server struct {
	router *gin.Engine
	runs   store.RunReader
	config *config.Config
}

func NewServer(cfg *config.Config, runs store.RunReader) (*Server, error) {
	r := gin.New()
	s := &Server{
		router: r,
		runs:   runs,
		config: cfg,
	}
	s.registerMiddleware()
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}
