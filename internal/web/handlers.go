package web

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"compdir/internal/directory"
	"compdir/internal/export"
	"compdir/internal/logging"
)

var validate = validator.New()

// handleIndex serves the widget page.
func (s *Server) handleIndex(staticFS fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// http.ServeFileFS needs Go 1.22; this is its equivalent for the
		// embedded index.html, whose files implement io.ReadSeeker.
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()
		fi, err := f.Stat()
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, "index.html", fi.ModTime(), f.(io.ReadSeeker))
	}
}

// handleHealth reports batch freshness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.service.Stat()
	if !st.Loaded {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, st)
}

// handleRecords answers the main directory query: search text, mode,
// category filter, and page window.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	q := queryFromRequest(r)

	res, err := s.service.Search(q)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// handleRecordDetail answers the expanded modal view for one record.
func (s *Server) handleRecordDetail(w http.ResponseWriter, r *http.Request) {
	q := queryFromRequest(r)
	id := chi.URLParam(r, "id")

	d, err := s.service.Detail(id, q)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, d)
}

// handleTypes lists distinct categories for the filter dropdown.
func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.service.Types()
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string][]string{"types": types})
}

// handleRefresh forces a re-fetch of the sheet. A stale response losing the
// race against a newer fetch is not a failure; the client still has fresh
// data to show.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := s.service.Refresh(r.Context())
	if err != nil && !errors.Is(err, directory.ErrStaleFetch) {
		writeError(w, r, http.StatusBadGateway, "could not refresh the competition list")
		return
	}
	writeJSON(w, s.service.Stat())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.Export()
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="competitions.csv"`)
	if err := export.CSV(w, records); err != nil {
		logging.FromContext(r.Context()).Error("csv export failed", "error", err)
	}
}

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.Export()
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="competitions.xlsx"`)
	if err := export.Excel(w, records); err != nil {
		logging.FromContext(r.Context()).Error("excel export failed", "error", err)
	}
}

// contactRequest is the fire-and-forget contact submission.
type contactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

type contactResponse struct {
	Message   string `json:"message"`
	Reference string `json:"reference"`
}

// handleContact accepts a contact submission and returns a human-readable
// acknowledgement with a reference id. The payload is logged for the club
// admins; there is no persistence layer behind this.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "could not read the contact form")
		return
	}

	if len(req.Message) > s.cfg.Contact.MaxMessageLen {
		writeError(w, r, http.StatusBadRequest, "message is too long")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "name, a valid email, and a message are required")
		return
	}

	ref := uuid.NewString()
	logging.FromContext(r.Context()).Info("contact submission",
		"reference", ref,
		"name", req.Name,
		"email", req.Email,
		"message_len", len(req.Message),
	)

	writeJSON(w, contactResponse{
		Message:   "Thanks, your message has been sent to the committee.",
		Reference: ref,
	})
}

// respondServiceError maps core errors onto HTTP statuses with generic
// client messages.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, directory.ErrNoBatch):
		writeError(w, r, http.StatusServiceUnavailable, "competition list is not available yet, try refreshing")
	case errors.Is(err, directory.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "competition not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "something went wrong")
	}
}

// queryFromRequest reads the directory query parameters. Unknown or
// malformed values fall back to defaults instead of failing; a directory
// widget should never hard-error on a bad query string.
func queryFromRequest(r *http.Request) directory.Query {
	params := r.URL.Query()

	mode := params.Get("mode")
	if mode != "fuzzy" {
		mode = "exact"
	}

	return directory.Query{
		Text:     params.Get("q"),
		Mode:     mode,
		Type:     params.Get("type"),
		Page:     parseIntParam(r, "page", 1),
		PageSize: parseIntParam(r, "page_size", 0),
		Admin:    params.Get("admin") == "true",
	}
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
