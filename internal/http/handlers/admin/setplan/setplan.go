// Package setplan обрабатывает прямую смену тарифного плана администратором.
package setplan

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/passgen-saas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/passgen-saas/internal/http/response"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/sl"
	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

// Request — целевая учётная запись и желаемый план.
type Request struct {
	Email string `json:"email" validate:"required,email"`
	Plan  string `json:"plan" validate:"required,oneof=free premium"`
}

// Handler обрабатывает запрос на смену тарифного плана.
type Handler struct {
	log      *slog.Logger
	admin    Service
	validate *validator.Validate
}

// New создает новый обработчик смены плана.
func New(log *slog.Logger, adminService Service) *Handler {
	return &Handler{
		log:      log,
		admin:    adminService,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сменить тарифный план учётной записи
// @Description Устанавливает план целевой учётной записи напрямую, минуя платёжный цикл
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Целевая учётная запись и план"
// @Success 200 {object} response.Response "План обновлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Router /admin/plan [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.setplan"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	actor, ok := middlewarectx.AccountFromContext(r.Context())
	if !ok {
		log.Error("account not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.admin.SetPlan(r.Context(), actor, req.Email, req.Plan); err != nil {
		switch {
		case errors.Is(err, models.ErrForbidden):
			log.Info("operation forbidden")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("admin role required"))
		case errors.Is(err, models.ErrNotFound):
			log.Info("target account not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
		default:
			log.Error("failed to set plan", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"email": models.NormalizeEmail(req.Email),
		"plan":  req.Plan,
	}))
}
