// Package accountremove обрабатывает удаление учётной записи администратором.
package accountremove

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/passgen-saas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/passgen-saas/internal/http/response"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/sl"
	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

// Handler обрабатывает запрос на удаление учётной записи.
type Handler struct {
	log   *slog.Logger
	admin Service
}

// New создает новый обработчик удаления учётной записи.
func New(log *slog.Logger, adminService Service) *Handler {
	return &Handler{
		log:   log,
		admin: adminService,
	}
}

// ServeHTTP godoc
// @Summary Удалить учётную запись
// @Description Удаляет учётную запись по email, её платежи удаляются каскадно
// @Tags Admin
// @Produce  json
// @Param email path string true "Email учётной записи"
// @Success 200 {object} response.Response "Учётная запись удалена"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Router /admin/users/{email} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.accountremove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email := chi.URLParam(r, "email")
	if email == "" {
		log.Error("missing email parameter")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("email is required"))
		return
	}

	actor, ok := middlewarectx.AccountFromContext(r.Context())
	if !ok {
		log.Error("account not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.admin.RemoveAccount(r.Context(), actor, email); err != nil {
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
			log.Error("failed to remove account", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"email": models.NormalizeEmail(email),
	}))
}
