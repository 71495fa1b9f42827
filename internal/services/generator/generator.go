// Package generator реализует генерацию паролей с учётом лимитов тарифного плана.
package generator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/passgen-saas/internal/lib/password"
	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

// PlanLimits задаёт лимиты генерации для тарифного плана.
type PlanLimits struct {
	MaxLength int // Максимальная длина пароля
	MaxCount  int // Максимальное количество паролей за один запрос
}

// Лимиты планов: premium разблокирует длинные пароли и пакетную генерацию.
var planLimits = map[string]PlanLimits{
	models.PlanFree:    {MaxLength: 12, MaxCount: 1},
	models.PlanPremium: {MaxLength: 64, MaxCount: 200},
}

// ErrPlanLimit возвращается, когда запрос превышает лимиты плана учётной записи.
var ErrPlanLimit = errors.New("request exceeds plan limits")

// GeneratorService проверяет лимиты плана и генерирует пароли.
type GeneratorService struct {
	log *slog.Logger
}

// New создает новый экземпляр GeneratorService.
func New(log *slog.Logger) *GeneratorService {
	return &GeneratorService{log: log}
}

// LimitsFor возвращает лимиты для плана; неизвестный план получает лимиты free.
func LimitsFor(plan string) PlanLimits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[models.PlanFree]
}

// Generate генерирует count паролей с заданными параметрами для учётной записи.
// Длина и количество ограничены планом; превышение — ErrPlanLimit.
func (s *GeneratorService) Generate(account *models.Account, opts password.GenerateOptions, count int) ([]string, error) {
	const op = "generator.Generate"

	limits := LimitsFor(account.Plan)
	if opts.Length > limits.MaxLength {
		return nil, fmt.Errorf("%s: length %d exceeds plan maximum %d: %w",
			op, opts.Length, limits.MaxLength, ErrPlanLimit)
	}
	if count < 1 {
		count = 1
	}
	if count > limits.MaxCount {
		return nil, fmt.Errorf("%s: count %d exceeds plan maximum %d: %w",
			op, count, limits.MaxCount, ErrPlanLimit)
	}

	result := make([]string, 0, count)
	for range count {
		pw, err := password.Generate(opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, pw)
	}

	s.log.Info("passwords generated",
		slog.String("account_uid", account.UID),
		slog.String("plan", account.Plan),
		slog.Int("count", count),
		slog.Int("length", opts.Length))
	return result, nil
}
