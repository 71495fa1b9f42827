// Package userlist возвращает администратору все учётные записи.
package userlist

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/passgen-saas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/passgen-saas/internal/http/response"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/sl"
	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

// accountView — учётная запись в ответе администратору.
// Хэш пароля наружу не отдаётся.
type accountView struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// Handler обрабатывает запрос списка учётных записей.
type Handler struct {
	log   *slog.Logger
	admin Service
}

// New создает новый обработчик списка учётных записей.
func New(log *slog.Logger, adminService Service) *Handler {
	return &Handler{
		log:   log,
		admin: adminService,
	}
}

// ServeHTTP godoc
// @Summary Список учётных записей
// @Description Возвращает все учётные записи без хэшей паролей
// @Tags Admin
// @Produce  json
// @Success 200 {object} response.Response "Список учётных записей"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /admin/users [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.AccountFromContext(r.Context())
	if !ok {
		log.Error("account not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	accounts, err := h.admin.ListUsers(r.Context(), actor)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			log.Info("operation forbidden")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("admin role required"))
			return
		}
		log.Error("failed to list accounts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView{
			UID:       a.UID,
			Email:     a.Email,
			Name:      a.Name,
			Role:      a.Role,
			Plan:      a.Plan,
			CreatedAt: a.CreatedAt,
		})
	}

	render.JSON(w, r, response.StatusOKWithData(views))
}
