package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gridstudio/pkg/errors"
	"github.com/matzehuels/gridstudio/pkg/grid"
	"github.com/matzehuels/gridstudio/pkg/imagesource"
	"github.com/matzehuels/gridstudio/pkg/pipeline"
	"github.com/matzehuels/gridstudio/pkg/store"
	"github.com/matzehuels/gridstudio/pkg/transform"
)

// =============================================================================
// Request and Response Types
// =============================================================================

type createRequest struct {
	Dimension  *float64 `json:"dimension"`
	Gap        *int     `json:"gap"`
	Background *string  `json:"background"`
}

type resizeRequest struct {
	Dimension *float64 `json:"dimension"`
}

type settingsRequest struct {
	Gap        *int    `json:"gap"`
	Background *string `json:"background"`
}

type selectRequest struct {
	Index *int `json:"index"`
}

type imageRequest struct {
	Source string `json:"source"`
}

type transformRequest struct {
	Scale   *float64 `json:"scale"`
	OffsetX *float64 `json:"offset_x"`
	OffsetY *float64 `json:"offset_y"`
}

type sessionResponse struct {
	ID        string        `json:"id"`
	Config    grid.Config   `json:"config"`
	Active    *int          `json:"active"`
	Cells     []grid.Cell   `json:"cells"`
	Geometry  grid.Geometry `json:"geometry"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type cellResponse struct {
	Cell      grid.Cell        `json:"cell"`
	Active    bool             `json:"active"`
	Transform transform.Affine `json:"transform"`
	CSS       string           `json:"css"`
}

type transformResponse struct {
	Cell      grid.Cell        `json:"cell"`
	Transform transform.Affine `json:"transform"`
	CSS       string           `json:"css"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := s.decodeOptional(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	cfg := s.grid
	if req.Dimension != nil {
		n, err := grid.DimensionFromFloat(*req.Dimension)
		if err != nil {
			s.writeError(w, err)
			return
		}
		cfg.Dimension = n
	}
	if req.Gap != nil {
		cfg.Gap = *req.Gap
	}
	if req.Background != nil {
		cfg.Background = *req.Background
	}
	if err := s.checkDimension(cfg.Dimension); err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := grid.NewSession(cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rec := store.NewRecord(sess.Snapshot())
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("session created", "id", rec.ID, "dimension", cfg.Dimension)
	writeJSON(w, http.StatusCreated, newSessionResponse(rec, sess))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, sess, err := s.load(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(rec, sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !store.ValidID(id) {
		s.writeError(w, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Dimension == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidDimension, "field 'dimension' is required"))
		return
	}
	n, err := grid.DimensionFromFloat(*req.Dimension)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.checkDimension(n); err != nil {
		s.writeError(w, err)
		return
	}

	s.mutate(w, r, func(rec *store.Record, sess *grid.Session) (any, error) {
		if _, err := sess.Resize(n); err != nil {
			return nil, err
		}
		return newSessionResponse(rec, sess), nil
	})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.mutate(w, r, func(rec *store.Record, sess *grid.Session) (any, error) {
		if req.Gap != nil {
			if _, err := sess.SetGap(*req.Gap); err != nil {
				return nil, err
			}
		}
		if req.Background != nil {
			if err := sess.SetBackground(*req.Background); err != nil {
				return nil, err
			}
		}
		return newSessionResponse(rec, sess), nil
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Index == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "field 'index' is required"))
		return
	}

	s.mutate(w, r, func(_ *store.Record, sess *grid.Session) (any, error) {
		c, err := sess.SelectCell(*req.Index)
		if err != nil {
			return nil, err
		}
		return newCellResponse(c, true), nil
	})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(rec *store.Record, sess *grid.Session) (any, error) {
		sess.ClearSelection()
		return newSessionResponse(rec, sess), nil
	})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if imagesource.Classify(req.Source) == imagesource.KindLocal {
		s.writeError(w, errors.New(errors.ErrCodeInvalidSource, "source must be an http(s) URL or a data URI"))
		return
	}

	s.mutate(w, r, func(_ *store.Record, sess *grid.Session) (any, error) {
		c, err := sess.SelectImage(req.Source)
		if err != nil {
			return nil, err
		}
		return newCellResponse(c, true), nil
	})
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.mutate(w, r, func(_ *store.Record, sess *grid.Session) (any, error) {
		idx, ok := sess.Active()
		if !ok {
			return nil, errors.New(errors.ErrCodeNoActiveCell, "no cell is selected")
		}
		c, err := sess.Cell(idx)
		if err != nil {
			return nil, err
		}
		scale, x, y := c.Scale, c.OffsetX, c.OffsetY
		if req.Scale != nil {
			scale = *req.Scale
		}
		if req.OffsetX != nil {
			x = *req.OffsetX
		}
		if req.OffsetY != nil {
			y = *req.OffsetY
		}

		m, err := sess.UpdateTransform(scale, x, y)
		if err != nil {
			return nil, err
		}
		c, err = sess.Cell(idx)
		if err != nil {
			return nil, err
		}
		return transformResponse{Cell: c, Transform: m, CSS: m.CSS()}, nil
	})
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, errors.New(errors.ErrCodeIndexOutOfRange, "cell index must be an integer"))
		return
	}
	_, sess, err := s.load(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	c, err := sess.Cell(index)
	if err != nil {
		s.writeError(w, err)
		return
	}
	active, ok := sess.Active()
	writeJSON(w, http.StatusOK, newCellResponse(c, ok && active == index))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	opts := s.render
	if v := r.URL.Query().Get("viewport"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil || width <= 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "viewport must be a positive integer, got %q", v))
			return
		}
		opts.ViewportWidth = width
	}
	opts.Refresh = r.URL.Query().Get("refresh") == "true"

	// The snapshot is detached, so rendering runs without holding the lock.
	_, sess, err := s.load(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result, err := s.runner.Export(r.Context(), sess.Snapshot(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "image/png")
	h.Set("Content-Length", strconv.Itoa(len(result.PNG)))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pipeline.ExportFilename(time.Now())))
	h.Set("X-Export-Size", fmt.Sprintf("%dx%d", result.Width, result.Height))
	h.Set("X-Failed-Cells", strconv.Itoa(result.Stats.Failed))
	if result.CacheInfo.RenderHit {
		h.Set("X-Cache", "HIT")
	} else {
		h.Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.PNG); err != nil {
		s.logger.Debug("write export", "err", err)
	}
}

// =============================================================================
// Helpers
// =============================================================================

// load reads and restores the session named in the URL.
func (s *Server) load(r *http.Request) (*store.Record, *grid.Session, error) {
	id := chi.URLParam(r, "id")
	if !store.ValidID(id) {
		return nil, nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	sess, err := grid.Restore(rec.Snapshot)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "stored session %q is corrupt", id)
	}
	return rec, sess, nil
}

// mutate runs fn against the stored session under the server lock and
// saves the result. Nothing is saved when fn fails.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*store.Record, *grid.Session) (any, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, sess, err := s.load(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	body, err := fn(rec, sess)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rec.Snapshot = sess.Snapshot()
	rec.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, err)
		return
	}
	if resp, ok := body.(sessionResponse); ok {
		resp.UpdatedAt = rec.UpdatedAt
		body = resp
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err)
	}
	return nil
}

// decodeOptional is decode for endpoints whose body may be empty.
func (s *Server) decodeOptional(w http.ResponseWriter, r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	return s.decode(w, r, v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	resp := errorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))}
	if resp.Code == "" {
		resp.Code = string(errors.ErrCodeInternal)
	}
	writeJSON(w, status, resp)
}

// checkDimension applies the server's grid size limit.
func (s *Server) checkDimension(n int) error {
	if n > s.maxDimension {
		return errors.New(errors.ErrCodeLimitExceeded, "dimension %d exceeds the server limit of %d", n, s.maxDimension)
	}
	return nil
}

// statusFor maps error codes onto HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeSessionNotFound, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidDimension,
		errors.ErrCodeIndexOutOfRange,
		errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidColor,
		errors.ErrCodeInvalidSource,
		errors.ErrCodeInvalidProject,
		errors.ErrCodeLimitExceeded:
		return http.StatusBadRequest
	case errors.ErrCodeNoActiveCell:
		return http.StatusConflict
	case errors.ErrCodeImageLoad:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newSessionResponse(rec *store.Record, sess *grid.Session) sessionResponse {
	resp := sessionResponse{
		ID:        rec.ID,
		Config:    sess.Config(),
		Cells:     sess.Cells(),
		Geometry:  sess.Geometry(),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if i, ok := sess.Active(); ok {
		resp.Active = &i
	}
	return resp
}

func newCellResponse(c grid.Cell, active bool) cellResponse {
	m := c.Screen()
	return cellResponse{Cell: c, Active: active, Transform: m, CSS: m.CSS()}
}
