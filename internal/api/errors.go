package api

import (
	"errors"
	"net/http"

	"github.com/meur/guideforge/internal/doc"
	"github.com/meur/guideforge/internal/editor"
	"github.com/meur/guideforge/internal/markup"
	"github.com/meur/guideforge/internal/refdata"
	"github.com/meur/guideforge/internal/schema"
	"github.com/meur/guideforge/internal/szgf"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
	Line   int      `json:"line,omitempty"`
	Column int      `json:"column,omitempty"`
}

// respondErr maps a domain error to its status code.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		parseErr      *szgf.ParseError
		validationErr *editor.ValidationError
		indexErr      *doc.IndexError
		schemaErr     *schema.FetchError
		refdataErr    *refdata.FetchError
	)
	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Errors: validationErr.Messages})
	case errors.As(err, &parseErr):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Line: parseErr.Line, Column: parseErr.Column})
	case errors.As(err, &indexErr):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, editor.ErrSessionNotFound),
		errors.Is(err, editor.ErrUnknownSection),
		errors.Is(err, editor.ErrUnknownCollection),
		errors.Is(err, doc.ErrPathNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, doc.ErrInvalidPath),
		errors.Is(err, doc.ErrNotContainer),
		errors.Is(err, doc.ErrNotList),
		errors.Is(err, doc.ErrNotRecord),
		errors.Is(err, doc.ErrEmptyField),
		errors.Is(err, editor.ErrNoTemplate),
		errors.Is(err, markup.ErrRange):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &schemaErr), errors.As(err, &refdataErr):
		s.log.Warn("upstream fetch failed", "path", r.URL.Path, "err", err)
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
