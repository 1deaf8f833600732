package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/smallnest/goequip"
	"github.com/smallnest/goequip/render"
)

var errBadName = errors.New("invalid report name")

type handler struct {
	dir  string
	opts []goequip.Option
}

// ReportSummary is one entry of the report listing.
type ReportSummary struct {
	Name    string `json:"name"`
	Element string `json:"element"`
	Status  string `json:"status"`
}

// ColumnResponse is returned by GetColumn.
type ColumnResponse struct {
	Column string   `json:"column"`
	Values []string `json:"values,omitempty"`
	Key    string   `json:"key,omitempty"`
	Cell   string   `json:"cell,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// reportPath maps a URL name such as "enodeb_01" or "enodeb_01.txt" to a
// file inside the report directory.
func (h *handler) reportPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", errBadName
	}
	if !strings.EqualFold(filepath.Ext(name), goequip.ReportExt) {
		name += goequip.ReportExt
	}
	return filepath.Join(h.dir, name), nil
}

func (h *handler) open(w http.ResponseWriter, r *http.Request) (*goequip.ReportParser, bool) {
	path, err := h.reportPath(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	p, err := goequip.Open(path, h.opts...)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return p, true
}

func (h *handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := goequip.ParseReports(r.Context(), h.dir, h.opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summaries := make([]ReportSummary, 0, len(reports))
	for _, p := range reports {
		status, err := p.ResultOfOperation()
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("path", p.Path).Msg("report changed while listing")
			continue
		}
		summaries = append(summaries, ReportSummary{
			Name:    strings.TrimSuffix(filepath.Base(p.Path), filepath.Ext(p.Path)),
			Element: p.ElementName,
			Status:  status,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *handler) GetReport(w http.ResponseWriter, r *http.Request) {
	p, ok := h.open(w, r)
	if !ok {
		return
	}
	status, err := p.ResultOfOperation()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReportSummary{
		Name:    chi.URLParam(r, "name"),
		Element: p.ElementName,
		Status:  status,
	})
}

func (h *handler) GetTable(w http.ResponseWriter, r *http.Request) {
	p, ok := h.open(w, r)
	if !ok {
		return
	}
	view, err := render.NewView(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) GetColumn(w http.ResponseWriter, r *http.Request) {
	p, ok := h.open(w, r)
	if !ok {
		return
	}

	column := chi.URLParam(r, "column")
	if unescaped, err := url.PathUnescape(column); err == nil {
		column = unescaped
	}

	table, err := p.ToTable()
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ColumnResponse{Column: column}
	if key := r.URL.Query().Get("key"); key != "" {
		resp.Key = key
		resp.Cell, err = table.FormatCell(column, key)
	} else {
		resp.Values, err = table.Column(column)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) GetColumnStats(w http.ResponseWriter, r *http.Request) {
	p, ok := h.open(w, r)
	if !ok {
		return
	}
	column := chi.URLParam(r, "column")
	if unescaped, err := url.PathUnescape(column); err == nil {
		column = unescaped
	}

	table, err := p.ToTable()
	if err != nil {
		writeError(w, r, err)
		return
	}
	cs, err := table.Stats(column)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadName):
		return http.StatusBadRequest
	case errors.Is(err, goequip.ErrNotFound),
		errors.Is(err, goequip.ErrColumnNotFound),
		errors.Is(err, goequip.ErrInvalidKey):
		return http.StatusNotFound
	case errors.Is(err, goequip.ErrShapeMismatch),
		errors.Is(err, goequip.ErrDuplicateKey),
		errors.Is(err, goequip.ErrRowIndex),
		errors.Is(err, goequip.ErrEmptyHeader),
		errors.Is(err, goequip.ErrNoNumericValues):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
