package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mithrel/quire/internal/journal"
	"github.com/mithrel/quire/pkg/api"
)

const notFoundDetail = "Entry not found."

// entryView is the wire form of an entry. Timestamps travel in headers only.
type entryView struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ContentMD   string `json:"content_md"`
	ContentHTML string `json:"content_html"`
}

func view(e api.Entry) entryView {
	return entryView{ID: e.ID, Title: e.Title, ContentMD: e.ContentMD, ContentHTML: e.ContentHTML}
}

func views(es []api.Entry) []entryView {
	out := make([]entryView, len(es))
	for i, e := range es {
		out[i] = view(e)
	}
	return out
}

type errorBody struct {
	Detail any `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps journal errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *journal.ValidationError
	switch {
	case errors.Is(err, journal.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Detail: notFoundDetail})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: ve.Fields})
	default:
		s.log.Error(r.Context(), "request failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "internal error"})
	}
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

// decodeJSON reads a single JSON object; errors are written to w.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

// handleCreate accepts JSON or form fields title and content_md.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title     string `json:"title"`
		ContentMD string `json:"content_md"`
	}
	if isJSON(r) {
		if !decodeJSON(w, r, &in) {
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			writeJSON(w, http.StatusBadRequest, errorBody{Detail: "invalid form body"})
			return
		}
		in.Title = r.PostFormValue("title")
		in.ContentMD = r.PostFormValue("content_md")
	}
	e, err := s.journal.Create(r.Context(), in.Title, in.ContentMD)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/entries/"+api.FormatID(e.ID))
	setCacheHeaders(w, e)
	writeJSON(w, http.StatusCreated, view(e))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := api.ParseID(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: notFoundDetail})
		return
	}
	e, err := s.journal.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeaders(w, e)
	if etagMatches(r.Header.Get("If-None-Match"), etag(e)) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, view(e))
}

// handleUpdate serves PATCH (partial) and PUT (replace) with a JSON body.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.ParseID(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: notFoundDetail})
		return
	}
	var patch api.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}
	mode := api.UpdatePartial
	if r.Method == http.MethodPut {
		mode = api.UpdateReplace
	}
	e, err := s.journal.Update(r.Context(), id, patch, mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeaders(w, e)
	writeJSON(w, http.StatusOK, view(e))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.ParseID(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: notFoundDetail})
		return
	}
	deleted, err := s.journal.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: notFoundDetail})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := s.page(w, r)
	if !ok {
		return
	}
	es, err := s.journal.List(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if n, err := s.journal.Count(r.Context()); err == nil {
		w.Header().Set("X-Total-Count", strconv.Itoa(n))
	}
	writeJSON(w, http.StatusOK, views(es))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := s.page(w, r)
	if !ok {
		return
	}
	es, err := s.journal.Search(r.Context(), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views(es))
}

// page reads limit and offset. A missing limit uses the configured default
// and larger values are clamped to the configured maximum.
func (s *Server) page(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	def, max := s.pageSizes()
	q := r.URL.Query()
	errs := validation.Errors{}
	limit = def
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs["limit"] = errors.New("must be an integer")
		}
		limit = n
	}
	if v := strings.TrimSpace(q.Get("offset")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs["offset"] = errors.New("must be an integer")
		}
		offset = n
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: errs})
		return 0, 0, false
	}
	if limit > max {
		limit = max
	}
	return limit, offset, true
}

func etag(e api.Entry) string { return `"` + e.Hash() + `"` }

func setCacheHeaders(w http.ResponseWriter, e api.Entry) {
	w.Header().Set("ETag", etag(e))
	w.Header().Set("Last-Modified", e.UpdatedAt.UTC().Format(http.TimeFormat))
}

func etagMatches(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		c := strings.TrimSpace(candidate)
		if c == "*" || strings.TrimPrefix(c, "W/") == tag {
			return true
		}
	}
	return false
}
