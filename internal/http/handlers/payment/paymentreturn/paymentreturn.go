// Package paymentreturn обрабатывает возврат клиента со страницы оплаты.
package paymentreturn

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/passgen-saas/internal/http/response"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/sl"
	"github.com/magabrotheeeer/passgen-saas/internal/services/payment"
)

// Handler обрабатывает возврат клиента с checkout-страницы.
type Handler struct {
	log      *slog.Logger
	payments Service
}

// New создает новый обработчик возврата со страницы оплаты.
func New(log *slog.Logger, payments Service) *Handler {
	return &Handler{
		log:      log,
		payments: payments,
	}
}

// ServeHTTP godoc
// @Summary Возврат со страницы оплаты
// @Description Принимает редирект платёжного шлюза без авторизации: при успехе сверяет сессию и сообщает статус оплаты, при отмене ничего не меняет
// @Tags Payment
// @Produce  json
// @Param paid_success query bool false "Признак успешного возврата"
// @Param paid_cancel query bool false "Признак отмены"
// @Param session_id query string false "Идентификатор checkout-сессии"
// @Success 200 {object} response.Response "Статус оплаты"
// @Router /checkout/return [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentreturn"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	outcome := payment.ReturnCancel
	if r.URL.Query().Get("paid_success") == "true" {
		outcome = payment.ReturnSuccess
	}
	sessionID := r.URL.Query().Get("session_id")

	isPaid, err := h.payments.OnReturn(r.Context(), outcome, sessionID)
	if err != nil {
		log.Error("failed to process checkout return", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("checkout return processed",
		slog.String("outcome", outcome),
		slog.String("checkout_session_id", sessionID),
		slog.Bool("paid", isPaid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"paid": isPaid,
	}))
}
