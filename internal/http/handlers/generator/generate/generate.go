// Package generate обрабатывает запросы на генерацию паролей.
package generate

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
	"github.com/magabrotheeeer/passgen-saas/internal/lib/password"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/sl"
	"github.com/magabrotheeeer/passgen-saas/internal/services/generator"
)

// Request — параметры генерации паролей.
type Request struct {
	Length         int  `json:"length" validate:"required,gte=1,lte=64"`
	UseUpper       bool `json:"use_upper"`
	UseLower       bool `json:"use_lower"`
	UseDigits      bool `json:"use_digits"`
	UseSymbols     bool `json:"use_symbols"`
	AvoidAmbiguous bool `json:"avoid_ambiguous"`
	Count          int  `json:"count" validate:"omitempty,gte=1,lte=200"`
}

// Handler обрабатывает запрос генерации паролей.
type Handler struct {
	log       *slog.Logger
	generator Service
	accounts  Accounts
	validate  *validator.Validate
}

// New создает новый обработчик генерации паролей.
func New(log *slog.Logger, generatorService Service, accounts Accounts) *Handler {
	return &Handler{
		log:       log,
		generator: generatorService,
		accounts:  accounts,
		validate:  validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сгенерировать пароли
// @Description Генерирует пароли с учётом лимитов тарифного плана: free — длина до 12 и один пароль, premium — до 64 и до 200 за запрос
// @Tags Generator
// @Accept  json
// @Produce  json
// @Param request body Request true "Параметры генерации"
// @Success 200 {object} response.Response "Сгенерированные пароли"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Превышены лимиты плана"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /passwords/generate [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.generator.generate"

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

	claims, ok := middlewarectx.AccountFromContext(r.Context())
	if !ok {
		log.Error("account not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	// План в claims не хранится: лимиты проверяются по актуальной записи.
	account, err := h.accounts.FindByEmail(r.Context(), claims.Email)
	if err != nil {
		log.Error("failed to load account", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	opts := password.GenerateOptions{
		Length:         req.Length,
		UseUpper:       req.UseUpper,
		UseLower:       req.UseLower,
		UseDigits:      req.UseDigits,
		UseSymbols:     req.UseSymbols,
		AvoidAmbiguous: req.AvoidAmbiguous,
	}
	passwords, err := h.generator.Generate(account, opts, req.Count)
	if err != nil {
		if errors.Is(err, generator.ErrPlanLimit) {
			log.Info("generation rejected by plan limits", slog.String("plan", account.Plan))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("request exceeds plan limits"))
			return
		}
		log.Error("generation failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"passwords": passwords,
		"count":     len(passwords),
	}))
}
