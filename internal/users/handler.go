package users

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/talenttrack/talenttrack/internal/identity"
	"github.com/talenttrack/talenttrack/internal/platform/httpx"
)

// Handler exposes the user directory endpoints.
type Handler struct {
	logger   *slog.Logger
	repo     *Repository
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{
		logger:   logger,
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers the user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/current", h.current)
		r.Get("/{userId}", h.get)
	})
}

type userRequest struct {
	Username string `json:"userName" validate:"required"`
	RealName string `json:"realName"`
	Email    string `json:"email" validate:"omitempty,email"`
	IsActive bool   `json:"isActive"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	user, err := h.repo.ByID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// current returns the profile of the acting user.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFromContext(r.Context())
	if !actor.Authenticated {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	user, err := h.repo.ByUsername(r.Context(), actor.Username)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, err := h.repo.Create(r.Context(), User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		RealName:  req.RealName,
		Email:     req.Email,
		IsActive:  req.IsActive,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if h.logger != nil {
		h.logger.Error("users handler", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
