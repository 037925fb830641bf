package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/srtbspeeds/internal/apperr"
	"github.com/starford/srtbspeeds/internal/chartservice"
	"github.com/starford/srtbspeeds/internal/difficulty"
	"github.com/starford/srtbspeeds/internal/sse"
)

const maxSpeedsBody = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc    *chartservice.Service
	events EventPublisher
}

// NewHandler creates a new Handler. events may be nil.
func NewHandler(svc *chartservice.Service, events EventPublisher) *Handler {
	return &Handler{svc: svc, events: events}
}

// chartPath extracts the chart path from the URL wildcard.
// Supports encoded slashes from OpenAPI clients (e.g. pack%2Fsong.srtb).
func chartPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// target resolves the chart path and ?difficulty= of a speeds request,
// writing a 400 response when either is missing or invalid.
func target(w http.ResponseWriter, r *http.Request) (string, difficulty.Difficulty, bool) {
	path := chartPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return "", 0, false
	}
	d, err := difficulty.Parse(r.URL.Query().Get("difficulty"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return "", 0, false
	}
	return path, d, true
}

// writeError maps domain errors to HTTP responses.
func writeError(w http.ResponseWriter, op, path string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
	case chartservice.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorBody("chart not found"))
	case apperr.IsUserError(err):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func (h *Handler) publish(kind, path, key string) {
	if h.events != nil {
		h.events.PublishChartEvent(kind, path, key)
	}
}

// ListCharts handles GET /api/charts.
//
//	@Summary		List catalogued charts and their speed-trigger entries
//	@Tags			charts
//	@Produce		json
//	@Success		200		{object}	ChartListResponse
//	@Security		BearerAuth
//	@Router			/charts [get]
func (h *Handler) ListCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := h.svc.ListCharts(r.Context())
	if err != nil {
		slog.Error("list charts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ChartListResponse{Charts: charts, Total: len(charts)})
}

// GetChart handles GET /api/charts/*.
//
//	@Summary		Get one catalogued chart
//	@Tags			charts
//	@Produce		json
//	@Param			path	path		string	true	"Chart path"
//	@Success		200		{object}	Chart
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/charts/{path} [get]
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	path := chartPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	chart, err := h.svc.GetChart(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("chart not found"))
			return
		}
		writeError(w, "get chart", path, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// ExtractSpeeds handles GET /api/speeds/*?difficulty=.
//
//	@Summary		Extract the speeds text stored for one difficulty
//	@Tags			speeds
//	@Produce		plain
//	@Param			path		path		string	true	"Chart path"
//	@Param			difficulty	query		string	true	"Difficulty"	Enums(easy, normal, hard, expert, xd, remixd, legacy)
//	@Success		200			{string}	string	"Speeds text"
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/speeds/{path} [get]
func (h *Handler) ExtractSpeeds(w http.ResponseWriter, r *http.Request) {
	path, d, ok := target(w, r)
	if !ok {
		return
	}
	text, err := h.svc.Extract(r.Context(), path, d)
	if err != nil {
		writeError(w, "extract speeds", path, err)
		return
	}
	writeText(w, http.StatusOK, text)
}

// IntegrateSpeeds handles PUT /api/speeds/*?difficulty=.
//
//	@Summary		Embed speeds text into a chart
//	@Tags			speeds
//	@Accept			plain
//	@Produce		json
//	@Param			path		path		string	true	"Chart path"
//	@Param			difficulty	query		string	true	"Difficulty"
//	@Param			body		body		string	true	"Speeds text"
//	@Success		200			{object}	IntegrateResult
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/speeds/{path} [put]
func (h *Handler) IntegrateSpeeds(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSpeedsBody)
	path, d, ok := target(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	res, err := h.svc.Integrate(r.Context(), path, d, string(body))
	if err != nil {
		writeError(w, "integrate speeds", path, err)
		return
	}
	h.publish(sse.KindIntegrated, path, res.Key)
	writeJSON(w, http.StatusOK, res)
}

// RemoveSpeeds handles DELETE /api/speeds/*?difficulty=.
//
//	@Summary		Remove the speed triggers stored for one difficulty
//	@Tags			speeds
//	@Param			path		path	string	true	"Chart path"
//	@Param			difficulty	query	string	true	"Difficulty"
//	@Success		204			"Speed triggers removed"
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/speeds/{path} [delete]
func (h *Handler) RemoveSpeeds(w http.ResponseWriter, r *http.Request) {
	path, d, ok := target(w, r)
	if !ok {
		return
	}
	if err := h.svc.Remove(r.Context(), path, d); err != nil {
		writeError(w, "remove speeds", path, err)
		return
	}
	h.publish(sse.KindRemoved, path, d.Key())
	w.WriteHeader(http.StatusNoContent)
}

// ExportSpeeds handles POST /api/speeds/*?difficulty=.
//
//	@Summary		Write the speed triggers of one difficulty to a sidecar .speeds file
//	@Tags			speeds
//	@Produce		json
//	@Param			path		path		string	true	"Chart path"
//	@Param			difficulty	query		string	true	"Difficulty"
//	@Success		200			{object}	ExportResult
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/speeds/{path} [post]
func (h *Handler) ExportSpeeds(w http.ResponseWriter, r *http.Request) {
	path, d, ok := target(w, r)
	if !ok {
		return
	}
	sidecar, err := h.svc.ExportSidecar(r.Context(), path, d)
	if err != nil {
		writeError(w, "export speeds", path, err)
		return
	}
	writeJSON(w, http.StatusOK, ExportResult{Path: path, Sidecar: sidecar, Key: d.Key()})
}
