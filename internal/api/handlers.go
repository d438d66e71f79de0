package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
	"golang.org/x/time/rate"

	"evdash/internal/config"
	"evdash/internal/engine"
	"evdash/internal/export"
	"evdash/internal/metrics"
	"evdash/internal/models"
	"evdash/internal/render"
)

const (
	defaultPageSize = 50
	maxPageSize     = 1000

	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
)

type Handler struct {
	store    *engine.Store
	loader   *engine.Loader
	source   string
	renderer render.Renderer
	drawPNG  func(render.Renderer, io.Writer, engine.Result) error
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

func NewHandler(store *engine.Store, loader *engine.Loader, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    store,
		loader:   loader,
		source:   cfg.Dataset.Source,
		renderer: render.New(cfg.Charts.Width, cfg.Charts.Height),
		drawPNG:  render.Renderer.PNG,
		limiter:  rate.NewLimiter(rate.Every(cfg.Reload.Every), cfg.Reload.Burst),
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("/view", h.GetView)
	api.GET("/aggregations/:dimension", h.GetAggregation)
	api.GET("/charts/:dimension", h.GetChart)
	api.GET("/records", h.GetRecords)
	api.GET("/export/arrow", h.ExportArrow)
	api.GET("/dataset", h.GetDataset)
	api.POST("/dataset/reload", h.ReloadDataset)
}

// --- HANDLERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxPageSize)
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func searchTerm(c echo.Context) string {
	return c.QueryParam("q")
}

// view filters one snapshot by the request's search term.
func (h *Handler) view(c echo.Context, ds *engine.Dataset, endpoint string) engine.View {
	timer := metrics.ViewTimer(endpoint)
	defer timer.ObserveDuration()

	v := engine.ComputeView(ds, searchTerm(c))
	metrics.ObserveMatches(len(v.Records))
	return v
}

// rows selects the records matching the request's search term without
// aggregating them.
func (h *Handler) rows(c echo.Context, ds *engine.Dataset, endpoint string) []engine.Record {
	timer := metrics.ViewTimer(endpoint)
	defer timer.ObserveDuration()

	rows := ds.Rows(ds.Select(searchTerm(c)))
	metrics.ObserveMatches(len(rows))
	return rows
}

// countBy aggregates one dimension over the matching records.
func (h *Handler) countBy(c echo.Context, f engine.Field, endpoint string) (engine.Result, error) {
	res, err := engine.CountBy(h.rows(c, h.store.Snapshot(), endpoint), f)
	if err != nil {
		return res, echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	}
	return res, nil
}

func parseDimension(c echo.Context) (engine.Field, error) {
	f, err := engine.ParseField(c.Param("dimension"))
	if err != nil {
		return f, echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	}
	return f, nil
}

// etag identifies a view by dataset generation and term.
func etag(ds *engine.Dataset, term string) string {
	key := fmt.Sprintf("%x|%d|%s|%s", ds.Fingerprint, ds.LoadedAt.UnixNano(), ds.State(), term)
	return fmt.Sprintf("%q", strconv.FormatUint(xxh3.HashString(key), 16))
}

// GetView returns the full dashboard: counts, details panel, suggestions
// and all five chart series.
func (h *Handler) GetView(c echo.Context) error {
	ds := h.store.Snapshot()
	tag := etag(ds, searchTerm(c))
	c.Response().Header().Set(headerETag, tag)
	if c.Request().Header.Get(headerIfNoneMatch) == tag {
		return c.NoContent(http.StatusNotModified)
	}

	v := h.view(c, ds, "view")
	return c.JSON(http.StatusOK, models.DashboardView{
		Status:      string(v.State),
		Term:        v.Term,
		Total:       v.Total,
		Matched:     len(v.Records),
		Details:     v.Details,
		Suggestions: v.Suggestions,
		Charts:      v.Charts(),
	})
}

func (h *Handler) GetAggregation(c echo.Context) error {
	f, err := parseDimension(c)
	if err != nil {
		return err
	}

	res, err := h.countBy(c, f, "aggregation")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.BindChart(res))
}

// GetChart draws one dimension as PNG. A view without data answers 204.
func (h *Handler) GetChart(c echo.Context) error {
	f, err := parseDimension(c)
	if err != nil {
		return err
	}

	width, _ := strconv.Atoi(c.QueryParam("width"))
	height, _ := strconv.Atoi(c.QueryParam("height"))
	r := h.renderer.WithSize(width, height)

	res, err := h.countBy(c, f, "chart")
	if err != nil {
		return err
	}
	if len(res.Labels) == 0 {
		return c.NoContent(http.StatusNoContent)
	}

	var buf bytes.Buffer
	if err := h.drawPNG(r, &buf, res); err != nil {
		h.logger.Error().Err(err).Str("dimension", f.String()).Msg("chart render failed")
		return fmt.Errorf("render %s chart: %w", f, err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// GetRecords pages through the records matching the search term.
func (h *Handler) GetRecords(c echo.Context) error {
	rows := h.rows(c, h.store.Snapshot(), "records")
	total := len(rows)
	limit, offset := getPaginationParams(c, defaultPageSize)

	page := models.RecordPage{
		Data:   []map[string]string{},
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	if offset < total {
		end := min(offset+limit, total)
		for _, r := range rows[offset:end] {
			page.Data = append(page.Data, r)
		}
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) ExportArrow(c echo.Context) error {
	ds := h.store.Snapshot()
	rows := h.rows(c, ds, "export")

	c.Response().Header().Set(echo.HeaderContentType, export.ContentType)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="records.arrow"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := export.WriteIPC(c.Response(), ds.Columns, rows); err != nil {
		h.logger.Error().Err(err).Int("records", len(rows)).Msg("arrow export failed")
		return err
	}
	return nil
}

func datasetStatus(ds *engine.Dataset) models.DatasetStatus {
	st := models.DatasetStatus{
		State:       string(ds.State()),
		Source:      ds.Source,
		Rows:        ds.Len(),
		SkippedRows: ds.SkippedRows,
		Columns:     ds.Columns,
		LoadedAt:    ds.LoadedAt,
	}
	if st.Columns == nil {
		st.Columns = []string{}
	}
	if ds.Fingerprint != 0 {
		st.Fingerprint = strconv.FormatUint(ds.Fingerprint, 16)
	}
	if ds.Err != nil {
		st.Error = ds.Err.Error()
	}
	return st
}

func (h *Handler) GetDataset(c echo.Context) error {
	return c.JSON(http.StatusOK, datasetStatus(h.store.Snapshot()))
}

// ReloadDataset reloads the configured source. Calls beyond the reload
// budget get 429; a failed load publishes the empty dataset and answers 502.
func (h *Handler) ReloadDataset(c echo.Context) error {
	if !h.limiter.Allow() {
		return echo.NewHTTPError(http.StatusTooManyRequests, "reload already requested recently")
	}

	// A client hanging up must not cancel a load other callers share.
	ctx := context.WithoutCancel(c.Request().Context())
	ds, err := h.store.Reload(ctx, h.loader, h.source)
	if err != nil {
		h.logger.Warn().Err(err).Str("source", h.source).Msg("dataset reload failed")
		return c.JSON(http.StatusBadGateway, datasetStatus(ds))
	}
	return c.JSON(http.StatusOK, datasetStatus(ds))
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": string(h.store.Snapshot().State()),
	})
}
