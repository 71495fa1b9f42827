// Package checkout обрабатывает запросы на создание checkout-сессии.
package checkout

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

// Request — параметры создания checkout-сессии.
type Request struct {
	Quantity int    `json:"quantity" validate:"omitempty,gte=1"`
	Method   string `json:"method" validate:"omitempty,oneof=card pix boleto"`
}

// Handler обрабатывает запрос на создание checkout-сессии.
type Handler struct {
	log      *slog.Logger
	payments Service
	validate *validator.Validate
}

// New создает новый обработчик создания checkout-сессии.
func New(log *slog.Logger, payments Service) *Handler {
	return &Handler{
		log:      log,
		payments: payments,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать checkout-сессию
// @Description Создает платёжную сессию для перехода на premium и возвращает URL для оплаты
// @Tags Payment
// @Accept  json
// @Produce  json
// @Param request body Request true "Параметры оплаты"
// @Success 200 {object} response.Response "URL для перехода к оплате"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Платёжный шлюз недоступен"
// @Router /checkout [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"

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
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	account, ok := middlewarectx.AccountFromContext(r.Context())
	if !ok {
		log.Error("account not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	redirectURL, err := h.payments.Initiate(r.Context(), account, req.Quantity, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrGatewayConfig):
			log.Error("payment gateway misconfigured", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("payment gateway is not configured"))
		case errors.Is(err, models.ErrGatewayRequest):
			log.Error("payment gateway request failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("payment gateway is unavailable"))
		default:
			log.Error("failed to initiate checkout", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("checkout session created", slog.String("account_uid", account.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"redirect_url": redirectURL,
	}))
}
