// Package api exposes the profiling pipeline over HTTP: dataset upload and
// profiling, run report retrieval, and guided chat.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dataprof/internal/insight"
	"dataprof/internal/loader"
	"dataprof/internal/metrics"
	"dataprof/internal/profile"
	"dataprof/internal/sector"
	"dataprof/internal/storage"
)

// maxUploadBytes bounds dataset uploads; anything bigger is rejected before
// parsing.
const maxUploadBytes = 64 << 20

// Handler wires the pipeline into HTTP routes.
type Handler struct {
	logger  *zap.Logger
	store   storage.Repository // nil disables persistence
	gen     *insight.Generator
	backend metrics.Backend
	sectors []sector.Sector
}

// NewHandler builds a Handler. store may be nil (runs are returned but not
// persisted); backend may be nil (observations are dropped).
func NewHandler(logger *zap.Logger, store storage.Repository, gen *insight.Generator, backend metrics.Backend, sectors []sector.Sector) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backend == nil {
		backend = metrics.Nop{}
	}
	if gen == nil {
		gen = insight.NewGenerator(nil, logger)
	}
	if len(sectors) == 0 {
		sectors = sector.Defaults()
	}
	return &Handler{logger: logger, store: store, gen: gen, backend: backend, sectors: sectors}
}

// MetricsMiddleware records request counts and latencies per response
// status.
func (h *Handler) MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		status := strconv.Itoa(c.Response().Status)
		h.backend.IncCounter(metrics.HTTPRequestsTotal, 1, metrics.Labels{"status": status})
		h.backend.ObserveHistogram(metrics.HTTPDurationSecs, time.Since(start).Seconds(), metrics.Labels{"status": status})
		return err
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.POST("/datasets", h.ProfileDataset)
	api.GET("/runs", h.ListRuns)
	api.GET("/runs/:id", h.GetRun)
	api.GET("/chat/questions", h.ChatQuestions)
	api.POST("/chat", h.Chat)
}

// RunResponse is the JSON body returned for a completed profiling run.
type RunResponse struct {
	ID      uuid.UUID      `json:"id"`
	Dataset string         `json:"dataset"`
	Sector  string         `json:"sector"`
	Summary string         `json:"summary"`
	Columns []string       `json:"columns"`
	Result  profile.Result `json:"result"`

	Insights         []string `json:"insights"`
	InsightsFallback bool     `json:"insights_fallback"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ProfileDataset accepts a multipart upload under field "file", runs the full
// clean-and-profile pipeline, and returns the report. The run is persisted
// when a storage backend is configured; persistence failures are logged but
// do not fail the request.
func (h *Handler) ProfileDataset(c echo.Context) error {
	start := time.Now()
	status := "ok"
	defer func() {
		h.backend.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"status": status})
		h.backend.ObserveHistogram(metrics.RunDurationSeconds, time.Since(start).Seconds(), metrics.Labels{"status": status})
	}()

	fh, err := c.FormFile("file")
	if err != nil {
		status = "bad_request"
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing multipart field \"file\""})
	}
	if fh.Size > maxUploadBytes {
		status = "bad_request"
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "file too large"})
	}
	src, err := fh.Open()
	if err != nil {
		status = "error"
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "open upload: " + err.Error()})
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		status = "error"
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "read upload: " + err.Error()})
	}
	if int64(len(data)) > maxUploadBytes {
		status = "bad_request"
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "file too large"})
	}

	t, err := loader.Parse(fh.Filename, data)
	if err != nil {
		status = "bad_request"
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	res, err := profile.CleanAndProfile(ctx, h.logger, t)
	if err != nil {
		if errors.Is(err, profile.ErrNoData) {
			status = "no_data"
			return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "dataset has no rows"})
		}
		status = "error"
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	h.backend.IncCounter(metrics.RowsTotal, float64(res.RowsBefore), metrics.Labels{"kind": "before"})
	h.backend.IncCounter(metrics.RowsTotal, float64(res.RowsAfter), metrics.Labels{"kind": "after"})
	h.backend.IncCounter(metrics.RowsTotal, float64(res.DuplicatesRemoved), metrics.Labels{"kind": "duplicates"})

	detected := sector.Detect(res.Cleaned.Names(), h.sectors)
	summary := h.gen.Summary(res.RowsAfter, res.Cleaned.NumCols(), res.Classification, res.Metrics, detected)
	insights, fromFallback := h.gen.Insights(ctx, summary, detected)

	resp := RunResponse{
		ID:               uuid.New(),
		Dataset:          fh.Filename,
		Sector:           detected,
		Summary:          summary,
		Columns:          res.Cleaned.Names(),
		Result:           *res,
		Insights:         insights,
		InsightsFallback: fromFallback,
	}

	if h.store != nil {
		h.persist(c, resp, res)
	}
	return c.JSON(http.StatusOK, resp)
}

// persist saves the run report, best effort.
func (h *Handler) persist(c echo.Context, resp RunResponse, res *profile.Result) {
	logJSON, err := json.Marshal(res.Log)
	if err != nil {
		logJSON = nil
	}
	rep := storage.RunReport{
		ID:                resp.ID,
		Dataset:           resp.Dataset,
		CreatedAt:         time.Now().UTC(),
		Sector:            resp.Sector,
		RowsBefore:        res.RowsBefore,
		RowsAfter:         res.RowsAfter,
		DuplicatesRemoved: res.DuplicatesRemoved,
		MissingPct:        res.Metrics.MissingPct,
		AvgCorrelation:    res.Metrics.AvgCorrelation,
		CleaningLog:       logJSON,
	}
	if err := h.store.SaveRun(c.Request().Context(), rep); err != nil {
		h.logger.Warn("persist run failed", zap.String("id", resp.ID.String()), zap.Error(err))
	}
}

// ListRuns returns recent persisted runs, newest first. ?limit= caps the
// count (default 50).
func (h *Handler) ListRuns(c echo.Context) error {
	if h.store == nil {
		return c.JSON(http.StatusOK, []storage.RunReport{})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	runs, err := h.store.ListRuns(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	if runs == nil {
		runs = []storage.RunReport{}
	}
	return c.JSON(http.StatusOK, runs)
}

// GetRun returns one persisted run by id, including the cleaning log.
func (h *Handler) GetRun(c echo.Context) error {
	if h.store == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "persistence not configured"})
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid run id"})
	}
	run, err := h.store.GetRun(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "run not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, run)
}

// ChatQuestions lists the guided chat options.
func (h *Handler) ChatQuestions(c echo.Context) error {
	return c.JSON(http.StatusOK, insight.Questions())
}

// ChatRequest carries one guided chat turn. Summary, sector and insights come
// from an earlier profiling response, keeping the server stateless.
type ChatRequest struct {
	Label    string   `json:"label"`
	Sector   string   `json:"sector"`
	Summary  string   `json:"summary"`
	Insights []string `json:"insights"`
}

// ChatResponse is the assistant's answer.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// Chat answers a guided chat question.
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if req.Label == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "label is required"})
	}
	answer := h.gen.Answer(c.Request().Context(), req.Label, req.Summary, req.Sector, req.Insights)
	return c.JSON(http.StatusOK, ChatResponse{Answer: answer})
}
