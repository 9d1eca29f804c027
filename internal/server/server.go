// Package server exposes the agent over HTTP: a small web page, a
// server-sent event stream per question and a JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammad-safakhou/searchagent/internal/agent"
	"github.com/mohammad-safakhou/searchagent/internal/history"
	"github.com/mohammad-safakhou/searchagent/internal/logging"
	"github.com/mohammad-safakhou/searchagent/internal/telemetry"
)

//go:embed web/index.html
var webFS embed.FS

// Asker runs one question, reporting progress to emit.
type Asker interface {
	Stream(ctx context.Context, query string, emit agent.Emitter) (agent.Answer, error)
}

type RecentLister interface {
	Items(ctx context.Context) ([]string, error)
}

type HistorySearcher interface {
	Search(term string, limit int) ([]history.Hit, error)
}

type Deps struct {
	Agent         Asker
	Recent        RecentLister
	History       HistorySearcher
	Metrics       *telemetry.Metrics
	Logger        *slog.Logger
	StreamEnabled bool
}

type Server struct {
	echo *echo.Echo
	deps Deps
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logging.Default()
	}
	d.Logger = d.Logger.With("component", "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		d.Logger.Info("request failed", "status", code, "method", req.Method, "path", req.URL.Path, "remote", c.RealIP(), "error", err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]string{"error": msg})
		}
	}

	s := &Server{echo: e, deps: d}
	e.GET("/", s.index)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	e.GET("/stream", s.stream)

	api := e.Group("/api")
	api.POST("/ask", s.ask)
	api.GET("/recent", s.recent)
	api.GET("/history", s.history)
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Start(addr string) error {
	s.deps.Logger.Info("listening", "addr", addr)
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) index(c echo.Context) error {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}
