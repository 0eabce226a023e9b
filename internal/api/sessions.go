package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meur/guideforge/internal/doc"
	"github.com/meur/guideforge/internal/editor"
	"github.com/meur/guideforge/internal/schema"
)

// maxImportSize bounds an uploaded guide file.
const maxImportSize = 1 << 20

type fieldRequest struct {
	Path  doc.Path `json:"path"`
	Value any      `json:"value"`
}

type itemRequest struct {
	Path  doc.Path `json:"path"`
	Index *int     `json:"index"`
	Field string   `json:"field"`
	Value any      `json:"value"`
	Item  any      `json:"item"`
}

type validationResponse struct {
	Errors []string      `json:"errors"`
	Schema schema.Status `json:"schema"`
}

// session resolves the {id} URL parameter, writing the error response when
// there is no such session.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return nil, false
	}
	return sess, true
}

// edit runs fn against the session and responds with its new snapshot.
func (s *Server) edit(w http.ResponseWriter, r *http.Request, fn func(*editor.Session) error) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := fn(sess); err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

// handleCreateSession starts a session on the default guide
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleResetSession clears the form back to the default guide
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, func(sess *editor.Session) error {
		return sess.Reset(time.Now())
	})
}

// handleSetField replaces the value at a path
func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.edit(w, r, func(sess *editor.Session) error {
		return sess.Set(req.Path, req.Value)
	})
}

// handleAppendItem appends an item, or the collection template, to a list
func (s *Server) handleAppendItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil || req.Path == "" {
		respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	s.edit(w, r, func(sess *editor.Session) error {
		return sess.AppendItem(req.Path, req.Item)
	})
}

// handleUpdateItem merges one field into a list record
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil || req.Path == "" || req.Index == nil {
		respondError(w, http.StatusBadRequest, "path and index are required")
		return
	}
	s.edit(w, r, func(sess *editor.Session) error {
		return sess.UpdateItemField(req.Path, *req.Index, req.Field, req.Value)
	})
}

// handleReplaceItem swaps a list element for a new value
func (s *Server) handleReplaceItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil || req.Path == "" || req.Index == nil {
		respondError(w, http.StatusBadRequest, "path and index are required")
		return
	}
	s.edit(w, r, func(sess *editor.Session) error {
		return sess.ReplaceItem(req.Path, *req.Index, req.Value)
	})
}

// handleRemoveItem deletes a list element
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := doc.Path(q.Get("path"))
	index, err := strconv.Atoi(q.Get("index"))
	if path == "" || err != nil {
		respondError(w, http.StatusBadRequest, "path and numeric index are required")
		return
	}
	s.edit(w, r, func(sess *editor.Session) error {
		return sess.RemoveItem(path, index)
	})
}

func (s *Server) handleEnableSection(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, func(sess *editor.Session) error {
		sec, err := sess.Section(chi.URLParam(r, "section"))
		if err != nil {
			return err
		}
		return sec.Enable()
	})
}

func (s *Server) handleDisableSection(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, func(sess *editor.Session) error {
		sec, err := sess.Section(chi.URLParam(r, "section"))
		if err != nil {
			return err
		}
		return sec.Disable()
	})
}

// handlePreview renders the live YAML preview
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	text, err := sess.Preview()
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/yaml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(text)
}

func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	resp := validationResponse{Errors: sess.Errors()}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	if s.validator != nil {
		resp.Schema = s.validator.Status()
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleExport downloads the guide file when the document is valid
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	exp, err := sess.Export()
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/yaml; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exp.Filename}))
	w.WriteHeader(http.StatusOK)
	w.Write(exp.Content)
}

// handleImport loads a guide from the raw body or a multipart "file" field
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	text, err := readUpload(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.Import(text); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.log.Debug("guide imported", "session", sess.ID(), "bytes", len(text))
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("multipart upload needs a file field")
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(r.Body)
}
