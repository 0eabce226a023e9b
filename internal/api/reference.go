package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/meur/guideforge/internal/markup"
	"github.com/meur/guideforge/internal/models"
	"github.com/meur/guideforge/internal/refdata"
)

type markupResponse struct {
	Formats   []markup.Format   `json:"formats"`
	SkillTags []markup.SkillTag `json:"skill_tags"`
}

type markupRequest struct {
	Text   string `json:"text"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Action string `json:"action"`
}

func (s *Server) fetchContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.opts.FetchTimeout)
}

// handleGetSchema reports whether schema validation is active
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	if s.validator == nil {
		respondError(w, http.StatusNotFound, "Schema validation is disabled")
		return
	}
	respondJSON(w, http.StatusOK, s.validator.Status())
}

// handleReloadSchema downloads the schema again
func (s *Server) handleReloadSchema(w http.ResponseWriter, r *http.Request) {
	if s.validator == nil {
		respondError(w, http.StatusNotFound, "Schema validation is disabled")
		return
	}
	ctx, cancel := s.fetchContext(r)
	defer cancel()
	if err := s.validator.Reload(ctx); err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.validator.Status())
}

func (s *Server) referenceKind(w http.ResponseWriter, r *http.Request) (models.ReferenceKind, bool) {
	kind, err := models.ParseReferenceKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	if s.catalog == nil {
		respondError(w, http.StatusNotFound, "Reference data is disabled")
		return "", false
	}
	return kind, true
}

// handleSearchRefdata serves a picker page. An unreachable API gives an
// empty degraded page so the client falls back to free text.
func (s *Server) handleSearchRefdata(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.referenceKind(w, r)
	if !ok {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ctx, cancel := s.fetchContext(r)
	defer cancel()
	list, err := s.catalog.Search(ctx, kind, r.URL.Query().Get("q"), limit)
	if err != nil {
		if !refdata.IsFetchError(err) {
			s.respondErr(w, r, err)
			return
		}
		s.log.Warn("reference picker degraded", "kind", kind, "err", err)
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleRefreshRefdata(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.referenceKind(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.fetchContext(r)
	defer cancel()
	n, err := s.catalog.Refresh(ctx, kind)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"kind": kind, "total_count": n})
}

// handleGetMarkup lists the rich-text toolbar actions
func (s *Server) handleGetMarkup(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, markupResponse{
		Formats:   markup.Formats(),
		SkillTags: markup.SkillTags(s.opts.IconTemplate),
	})
}

// handleApplyMarkup applies a toolbar action to a text selection
func (s *Server) handleApplyMarkup(w http.ResponseWriter, r *http.Request) {
	var req markupRequest
	if err := decodeJSON(r, &req); err != nil || req.Action == "" {
		respondError(w, http.StatusBadRequest, "action is required")
		return
	}
	edit, err := markup.Apply(req.Text, req.Start, req.End, req.Action)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, edit)
}
