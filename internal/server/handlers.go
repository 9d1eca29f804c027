package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/searchagent/internal/agent"
	"github.com/mohammad-safakhou/searchagent/internal/helpers"
)

type askRequest struct {
	Query string `json:"query"`
}

// statusFor maps a run error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, agent.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrNoResults):
		return http.StatusNotFound
	case errors.Is(err, agent.ErrEmptySummary):
		return http.StatusUnprocessableEntity
	case errors.Is(err, agent.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ans, err := s.deps.Agent.Stream(c.Request().Context(), strings.TrimSpace(req.Query), nil)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), agent.UserMessage(err)).SetInternal(err)
	}
	if ans.StoreErr != nil {
		c.Response().Header().Set("X-Cache-Store", "failed")
	}
	return c.JSON(http.StatusOK, ans)
}

// stream answers with server-sent events, one JSON object per event.
func (s *Server) stream(c echo.Context) error {
	if !s.deps.StreamEnabled {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "stream disabled")
	}
	// a blank query still streams; the agent ends it with an error event
	query := strings.TrimSpace(c.QueryParam("query"))

	resp := c.Response()
	flusher, ok := resp.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "streaming unsupported")
	}
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	var writeErr error
	emit := func(ev agent.Event) {
		if writeErr != nil {
			return
		}
		writeErr = writeEvent(resp, sanitizeEvent(ev))
		flusher.Flush()
	}
	// Errors are already delivered as terminal events.
	_, _ = s.deps.Agent.Stream(c.Request().Context(), query, emit)
	if writeErr != nil {
		s.deps.Logger.Debug("stream client went away", "error", writeErr)
	}
	return nil
}

func writeEvent(w http.ResponseWriter, ev agent.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("id: " + uuid.NewString() + "\n")); err != nil {
		return err
	}
	_, err = w.Write([]byte("data: " + string(data) + "\n\n"))
	return err
}

// sanitizeEvent strips markup from text the page renders as HTML.
func sanitizeEvent(ev agent.Event) agent.Event {
	ev.Message = helpers.SanitizeHTMLStrict(ev.Message)
	ev.Title = helpers.SanitizeHTMLStrict(ev.Title)
	ev.Summary = helpers.SanitizeHTMLStrict(ev.Summary)
	return ev
}

func (s *Server) recent(c echo.Context) error {
	if s.deps.Recent == nil {
		return c.JSON(http.StatusOK, map[string][]string{"queries": {}})
	}
	items, err := s.deps.Recent.Items(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "recent queries unavailable").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"queries": items})
}

func (s *Server) history(c echo.Context) error {
	if s.deps.History == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "history disabled")
	}
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
		}
		limit = n
	}
	hits, err := s.deps.History.Search(c.QueryParam("match"), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "history search failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"results": hits})
}
