package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/matzehuels/slidetype/pkg/buildinfo"
	"github.com/matzehuels/slidetype/pkg/errors"
	"github.com/matzehuels/slidetype/pkg/pipeline"
	"github.com/matzehuels/slidetype/pkg/style"
)

// Multipart field names.
const (
	fieldBackground = "background"
	fieldTitle      = "title"
	fieldBody       = "body"
	fieldStyle      = "style"
	fieldPatch      = "patch"
)

type slideForm struct {
	background []byte
	title      string
	body       string
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	form, err := s.readForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.requestStyle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res := s.runner.RenderSlide(r.Context(), pipeline.Slide{
		ID:         RequestID(r.Context()),
		Background: form.background,
		Title:      form.title,
		Body:       form.body,
		Style:      st,
	})
	if res.Err != nil {
		s.writeError(w, r, res.Err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set(headerCache, cacheStatus(res.Cached))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.PNG)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	form, err := s.readForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, cached, err := s.runner.Suggest(r.Context(), form.background, form.title, form.body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(headerCache, cacheStatus(cached))
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) readForm(r *http.Request) (slideForm, error) {
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return slideForm{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse multipart form")
	}
	f, _, err := r.FormFile(fieldBackground)
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) {
			return slideForm{}, errors.New(errors.ErrCodeInvalidInput, "missing %q file", fieldBackground)
		}
		return slideForm{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %q", fieldBackground)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return slideForm{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %q", fieldBackground)
	}
	return slideForm{
		background: data,
		title:      r.FormValue(fieldTitle),
		body:       r.FormValue(fieldBody),
	}, nil
}

// requestStyle decodes the optional style and patch fields on top of the
// server's base style.
func (s *Server) requestStyle(r *http.Request) (style.TextStyle, error) {
	st := s.base
	if raw := r.FormValue(fieldStyle); raw != "" {
		var err error
		if st, err = style.Decode(s.base, []byte(raw)); err != nil {
			return style.TextStyle{}, err
		}
	}
	if raw := r.FormValue(fieldPatch); raw != "" {
		var p style.Patch
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return style.TextStyle{}, errors.Wrap(errors.ErrCodeInvalidStyle, err, "decode %q", fieldPatch)
		}
		st = style.Merge(st, p)
	}
	if err := st.Validate(); err != nil {
		return style.TextStyle{}, err
	}
	return st, nil
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.IsClientError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
