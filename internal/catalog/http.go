package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniCatalog/pkg/kit"
)

const readyTimeout = 1 * time.Second

// Server exposes a Store over HTTP. The Store is not goroutine-safe, so every
// handler goes through mu.
type Server struct {
	Store *Store
	Log   *zap.Logger

	mu sync.RWMutex
}

type deleteResp struct {
	Removed int `json:"removed"`
}

type loadResp struct {
	Records int `json:"records"`
}

// Routes mounts the read endpoints openly and the mutating ones behind
// guard. A nil guard leaves them open.
func (s *Server) Routes(guard func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)

	r.Group(func(pr chi.Router) {
		if guard != nil {
			pr.Use(guard)
		}
		pr.Post("/products", s.add)
		pr.Delete("/products/{id}", s.delete)
		pr.Post("/catalog/save", s.save)
		pr.Post("/catalog/load", s.load)
	})

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Backend().Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	products := s.Store.List()
	s.mu.RUnlock()

	s.writeJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	s.mu.RLock()
	p, found := s.Store.FindByID(id)
	s.mu.RUnlock()

	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := kit.DecodeJSON(w, r, &p); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	s.mu.Lock()
	err := s.Store.Add(p)
	s.mu.Unlock()

	if errors.Is(err, ErrValidation) {
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "invalid product", map[string]any{"cause": err.Error()})
		return
	}
	if err != nil {
		s.logger().Error("add product failed", zap.Error(err), zap.Int64("id", p.ID))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.writeJSON(w, http.StatusCreated, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	n := s.Store.Delete(id)
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, deleteResp{Removed: n})
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	// Exclusive lock: a concurrent Add would otherwise race the encoder.
	s.mu.Lock()
	err := s.Store.Save(r.Context())
	s.mu.Unlock()

	if err != nil {
		kit.WriteError(w, r, http.StatusInternalServerError, "save failed", map[string]any{"cause": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	products, err := s.Store.Load(r.Context())
	s.mu.Unlock()

	if err != nil {
		kit.WriteError(w, r, http.StatusInternalServerError, "load failed", map[string]any{
			"cause":   err.Error(),
			"records": len(products),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, loadResp{Records: len(products)})
}

// writeJSON logs responses that could not be encoded, e.g. a record with a
// non-finite price.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	if err := kit.WriteJSON(w, status, v); err != nil {
		s.logger().Error("write response failed", zap.Error(err))
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}
