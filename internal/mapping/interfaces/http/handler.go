package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"pinmap/internal/audit"
	"pinmap/internal/auth"
	"pinmap/internal/mapping/application"
	mapping "pinmap/internal/mapping/domain"
	"pinmap/internal/platform/logger"
)

const maxBodyBytes = 1 << 20

// Handler serves the grid front-end API.
type Handler struct {
	session   *application.Session
	data      application.DataBackend
	report    application.ReportBackend
	exportDir string
	audit     audit.Logger
	log       *logger.Logger
}

// HandlerOption configures the handler.
type HandlerOption func(*Handler)

// WithExport enables POST /api/v1/export into dir using the data backend and, when not nil,
// the report backend.
func WithExport(data application.DataBackend, report application.ReportBackend, dir string) HandlerOption {
	return func(h *Handler) {
		h.data = data
		h.report = report
		h.exportDir = dir
	}
}

// WithReport enables GET /api/v1/report.pdf.
func WithReport(report application.ReportBackend) HandlerOption {
	return func(h *Handler) {
		h.report = report
	}
}

// WithAudit records accepted change requests, notes edits and exports.
func WithAudit(logger audit.Logger) HandlerOption {
	return func(h *Handler) {
		h.audit = logger
	}
}

// WithHandlerLogger assigns a logger.
func WithHandlerLogger(log *logger.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler constructs a handler.
func NewHandler(session *application.Session, opts ...HandlerOption) (*Handler, error) {
	if session == nil {
		return nil, errors.New("grid handler: nil session")
	}
	h := &Handler{session: session, log: logger.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

type entryRequest struct {
	Column string `json:"column"`
	Row    int    `json:"row"`
	Label  string `json:"label"`
}

type busRequest struct {
	Bus string `json:"bus"`
	All bool   `json:"all"`
}

type notesBody struct {
	Notes string `json:"notes"`
}

type acceptedResponse struct {
	RequestID string `json:"request_id"`
}

// ServeHTTP handles /api/v1/grid, /api/v1/notes, /api/v1/export and /api/v1/report.pdf.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/grid":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleGrid(w, r)
	case "/api/v1/grid/assign", "/api/v1/grid/clear", "/api/v1/grid/clear-bus":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleChange(w, r)
	case "/api/v1/notes":
		h.handleNotes(w, r)
	case "/api/v1/export":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleExport(w, r)
	case "/api/v1/report.pdf":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleReport(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGrid(w http.ResponseWriter, r *http.Request) {
	snap, err := h.session.Snapshot()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleChange(w http.ResponseWriter, r *http.Request) {
	var (
		req      application.Request
		action   string
		position string
		payload  any
	)
	switch r.URL.Path {
	case "/api/v1/grid/assign":
		var body entryRequest
		if !decodeBody(w, r, &body) {
			return
		}
		entry := mapping.Coordinate{Column: body.Column, Row: body.Row}
		req = application.Assign{Entry: entry, Label: body.Label}
		action, position, payload = "assign", entry.String(), body
	case "/api/v1/grid/clear":
		var body entryRequest
		if !decodeBody(w, r, &body) {
			return
		}
		entry := mapping.Coordinate{Column: body.Column, Row: body.Row}
		req = application.Clear{Entry: entry}
		action, position, payload = "clear", entry.String(), body
	default:
		var body busRequest
		if !decodeBody(w, r, &body) {
			return
		}
		if body.All {
			req = application.ClearAll{}
			action = "clear_all"
		} else {
			req = application.ClearBus{Bus: body.Bus}
			action = "clear_bus"
		}
		payload = body
	}

	id, err := h.session.Submit(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	h.record(r, action, position, id, payload)
	writeJSON(w, http.StatusAccepted, acceptedResponse{RequestID: id})
}

func (h *Handler) handleNotes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, notesBody{Notes: h.session.Notes()})
	case http.MethodPut:
		var body notesBody
		if !decodeBody(w, r, &body) {
			return
		}
		h.session.SetNotes(body.Notes)
		h.record(r, "notes", "", "", nil)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if h.data == nil {
		http.Error(w, "export not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.session.Export(r.Context(), h.data, h.report, h.exportDir); err != nil {
		h.log.Warn("export failed", "backend", h.data.Name(), "error", err)
		respondError(w, err)
		return
	}
	h.record(r, "export", "", "", map[string]string{"backend": h.data.Name(), "dir": h.exportDir})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) record(r *http.Request, action, position, requestID string, payload any) {
	if h.audit == nil {
		return
	}
	var metadata json.RawMessage
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			metadata = data
		}
	}
	entry := audit.Entry{
		Actor:     auth.SubjectFromContext(r.Context()),
		Role:      string(auth.RoleFromContext(r.Context())),
		Action:    action,
		Session:   h.session.Name(),
		Position:  position,
		RequestID: requestID,
		Metadata:  metadata,
		IP:        audit.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
	if err := h.audit.Log(r.Context(), entry); err != nil {
		h.log.Warn("audit log failed", "action", action, "error", err)
	}
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if h.report == nil {
		http.Error(w, "report not configured", http.StatusServiceUnavailable)
		return
	}
	report, err := h.session.BuildReport(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := h.report.Render(r.Context(), report)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+report.Name+h.report.Ext()+`"`)
	_, _ = w.Write(data)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrStateNotReady):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, application.ErrUnknownEntry), errors.Is(err, application.ErrUnknownBus):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, application.ErrUnsupported):
		http.Error(w, err.Error(), http.StatusNotImplemented)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
