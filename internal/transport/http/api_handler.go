package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"vocab-test-service/internal/app"
	"vocab-test-service/internal/domain"
	"vocab-test-service/internal/engine"
)

// APIHandler exposes the catalog CRUD, attempt history, and stateless
// scoring over REST.
type APIHandler struct {
	catalog  *app.CatalogService
	attempts *app.AttemptService
	log      *zap.Logger
}

func NewAPIHandler(catalog *app.CatalogService, attempts *app.AttemptService, log *zap.Logger) *APIHandler {
	return &APIHandler{catalog: catalog, attempts: attempts, log: log}
}

// Routes mounts the REST surface plus the given websocket handler on a chi
// router.
func (h *APIHandler) Routes(ws *WSHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.HandleFunc("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tests", h.listTests)
		r.Post("/tests", h.createTest)
		r.Get("/tests/{testID}", h.getTest)
		r.Put("/tests/{testID}", h.updateTest)
		r.Delete("/tests/{testID}", h.deleteTest)
		r.Get("/users/{userID}/attempts", h.listAttempts)
		r.Post("/score", h.score)
	})
	return r
}

func (h *APIHandler) listTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.catalog.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tests)
}

func (h *APIHandler) createTest(w http.ResponseWriter, r *http.Request) {
	var test domain.Test
	if err := json.NewDecoder(r.Body).Decode(&test); err != nil {
		http.Error(w, "invalid test payload", http.StatusBadRequest)
		return
	}
	created, err := h.catalog.Create(r.Context(), test)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *APIHandler) getTest(w http.ResponseWriter, r *http.Request) {
	test, err := h.catalog.Get(r.Context(), chi.URLParam(r, "testID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, test)
}

func (h *APIHandler) updateTest(w http.ResponseWriter, r *http.Request) {
	var test domain.Test
	if err := json.NewDecoder(r.Body).Decode(&test); err != nil {
		http.Error(w, "invalid test payload", http.StatusBadRequest)
		return
	}
	updated, err := h.catalog.Update(r.Context(), chi.URLParam(r, "testID"), test)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *APIHandler) deleteTest(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "testID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) listAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.attempts.History(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, attempts)
}

type scoreRequest struct {
	Questions []domain.Question      `json:"questions"`
	Answers   []domain.IndexedAnswer `json:"answers"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

// score recomputes a percentage for externally supplied questions and
// positional answers, without touching any attempt state.
func (h *APIHandler) score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid score payload", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, scoreResponse{Score: engine.CalculateScore(req.Questions, req.Answers)})
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("write response", zap.Error(err))
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTestNotFound), errors.Is(err, domain.ErrAttemptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidTest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
