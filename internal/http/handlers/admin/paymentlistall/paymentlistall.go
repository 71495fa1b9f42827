// Package paymentlistall возвращает администратору все платёжные сессии.
package paymentlistall

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/passgen-saas/internal/http/response"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/sl"
)

// Handler обрабатывает запрос списка всех платёжных сессий.
type Handler struct {
	log      *slog.Logger
	payments Service
}

// New создает новый обработчик списка всех платежей.
func New(log *slog.Logger, payments Service) *Handler {
	return &Handler{
		log:      log,
		payments: payments,
	}
}

// ServeHTTP godoc
// @Summary Список всех платежей
// @Description Возвращает платёжные сессии всех учётных записей, предварительно разрешив созревшие симулированные платежи
// @Tags Admin
// @Produce  json
// @Success 200 {object} response.Response "Список платежей"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /admin/payments [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.paymentlistall"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payments, err := h.payments.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(payments))
}
