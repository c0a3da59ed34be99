package candidates

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/talenttrack/talenttrack/internal/identity"
	"github.com/talenttrack/talenttrack/internal/platform/httpx"
)

// Handler exposes the candidate endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers the candidate routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/candidates", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{candidateId}", h.get)
		r.Put("/{candidateId}", h.update)
		r.Delete("/{candidateId}", h.delete)
		r.Get("/{candidateId}/history", h.history)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	out, err := h.service.List(r.Context(), actor.TenantID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	c, err := h.service.Get(r.Context(), actor.TenantID, chi.URLParam(r, "candidateId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	var candidate Candidate
	if !h.decode(w, r, &candidate) {
		return
	}
	created, err := h.service.Create(r.Context(), actor.TenantID, actor, candidate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	var candidate Candidate
	if !h.decode(w, r, &candidate) {
		return
	}
	candidate.ID = chi.URLParam(r, "candidateId")
	updated, err := h.service.Update(r.Context(), actor.TenantID, actor, candidate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor.TenantID, actor, chi.URLParam(r, "candidateId")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	from, ok := h.parseTime(w, r.URL.Query().Get("from"))
	if !ok {
		return
	}
	to, ok := h.parseTime(w, r.URL.Query().Get("to"))
	if !ok {
		return
	}
	rows, err := h.service.History(r.Context(), actor.TenantID, chi.URLParam(r, "candidateId"), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, candidate *Candidate) bool {
	if err := httpx.DecodeJSON(r, candidate); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	if err := h.validate.Struct(candidate); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) parseTime(w http.ResponseWriter, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Time", "expected RFC 3339 timestamp: "+raw)
		return time.Time{}, false
	}
	return t, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if h.logger != nil {
		h.logger.Error("candidates handler", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
