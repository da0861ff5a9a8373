// Package server exposes the job controller over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"doc-narrator/pkg/content"
	"doc-narrator/pkg/domain"
	"doc-narrator/pkg/fetch"
	"doc-narrator/pkg/jobs"
)

// busyMessage is the body clients already match on when a job is running
const busyMessage = "Reading is already in progress"

// Controller is the job boundary the handlers drive
type Controller interface {
	Start(ctx context.Context, req domain.JobRequest) (*jobs.Handle, error)
	Cancel()
	Running() bool
	Current() domain.RunRecord
	Events() *jobs.EventBus
}

// RunLister reads run history
type RunLister interface {
	RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}

// Server routes HTTP requests to the job controller
type Server struct {
	echo       *echo.Echo
	controller Controller
	runs       RunLister
	// runCtx bounds started jobs so they outlive the request that started them
	runCtx context.Context
}

// New creates the server. runs may be nil when history is disabled.
func New(runCtx context.Context, controller Controller, runs RunLister) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:       e,
		controller: controller,
		runs:       runs,
		runCtx:     runCtx,
	}

	e.POST("/process_content", s.processContent)
	e.GET("/status", s.status)
	e.POST("/stop_reading", s.stopReading)
	e.GET("/events", s.events)
	e.GET("/runs", s.recentRuns)
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server: Listening on %s", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("Server: Shutting down")
		s.controller.Cancel()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// processRequest is the /process_content body
type processRequest struct {
	domain.JobRequest
	// Async returns the job ID right away instead of waiting for the result
	Async bool `json:"async"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type jobStartedResponse struct {
	JobID string `json:"job_id"`
}

type statusResponse struct {
	Status  domain.JobStatus  `json:"status"`
	Running bool              `json:"running"`
	Job     *domain.RunRecord `json:"job,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) processContent(c echo.Context) error {
	var body processRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
	}

	handle, err := s.controller.Start(s.runCtx, body.JobRequest)
	if err != nil {
		return writeError(c, err)
	}

	if body.Async {
		return c.JSON(http.StatusAccepted, jobStartedResponse{JobID: handle.ID()})
	}

	result, err := handle.Wait(c.Request().Context())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Printf("Server: client left before job %s finished; it keeps running", handle.ID())
			return nil
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) status(c echo.Context) error {
	current := s.controller.Current()
	resp := statusResponse{
		Status:  current.Status,
		Running: s.controller.Running(),
	}
	if current.ID != "" {
		resp.Job = &current
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) stopReading(c echo.Context) error {
	s.controller.Cancel()
	return c.JSON(http.StatusOK, messageResponse{Message: "Reading stopped"})
}

func (s *Server) events(c echo.Context) error {
	var since int64
	if raw := c.QueryParam("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "since must be a non-negative integer"})
		}
		since = parsed
	}

	events := s.controller.Events().Since(since)
	if events == nil {
		events = []jobs.Event{}
	}
	return c.JSON(http.StatusOK, events)
}

func (s *Server) recentRuns(c echo.Context) error {
	if s.runs == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "run history is disabled"})
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be an integer"})
		}
		limit = parsed
	}

	runs, err := s.runs.RecentRuns(c.Request().Context(), limit)
	if err != nil {
		log.Printf("Server: failed to list runs: %v", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to list runs"})
	}
	if runs == nil {
		runs = []domain.RunRecord{}
	}
	return c.JSON(http.StatusOK, runs)
}

// writeError maps the error taxonomy onto status codes
func writeError(c echo.Context, err error) error {
	var (
		validationErr *domain.ValidationError
		transportErr  *fetch.TransportError
		formatErr     *content.FormatError
	)

	status := http.StatusInternalServerError
	message := err.Error()
	switch {
	case errors.Is(err, jobs.ErrJobAlreadyRunning):
		status, message = http.StatusConflict, busyMessage
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &transportErr):
		status = http.StatusBadGateway
	case errors.As(err, &formatErr), errors.Is(err, content.ErrUnsupportedKind):
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, errorResponse{Error: message})
}
