// Package admin реализует привилегированные операции над учётными записями:
// смену роли и плана в обход платёжного цикла, просмотр пользователей
// и платежей, удаление учётной записи. Каждая операция требует роли admin
// у действующей учётной записи и логируется с её указанием.
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/passgen-saas/internal/cache"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/sl"
	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

// Repository описывает операции хранилища, доступные администратору.
type Repository interface {
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateRole(ctx context.Context, email, role string) error
	UpdatePlan(ctx context.Context, email, plan string) error
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	DeleteAccount(ctx context.Context, email string) error
}

// AccountCache инвалидирует закэшированные учётные записи.
type AccountCache interface {
	Invalidate(ctx context.Context, key string) error
}

// Service выполняет административные операции.
type Service struct {
	repo  Repository
	cache AccountCache
	log   *slog.Logger
}

// New создает новый экземпляр Service. Кэш может быть nil.
func New(repo Repository, accountCache AccountCache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: accountCache,
		log:   log,
	}
}

// SetRole назначает или снимает роль администратора у целевой учётной записи.
func (s *Service) SetRole(ctx context.Context, actor *models.Account, targetEmail string, isAdmin bool) error {
	const op = "admin.SetRole"

	if !actor.IsAdmin() {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	normalized := models.NormalizeEmail(targetEmail)
	role := models.RoleUser
	if isAdmin {
		role = models.RoleAdmin
	}
	if err := s.repo.UpdateRole(ctx, normalized, role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, normalized)
	s.log.Info("role overridden by admin",
		slog.String("admin", actor.Email),
		slog.String("target", normalized),
		slog.String("role", role))
	return nil
}

// SetPlan напрямую устанавливает тарифный план целевой учётной записи,
// минуя платёжный цикл.
func (s *Service) SetPlan(ctx context.Context, actor *models.Account, targetEmail, plan string) error {
	const op = "admin.SetPlan"

	if !actor.IsAdmin() {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	if plan != models.PlanFree && plan != models.PlanPremium {
		return fmt.Errorf("%s: unknown plan %q", op, plan)
	}
	normalized := models.NormalizeEmail(targetEmail)
	if err := s.repo.UpdatePlan(ctx, normalized, plan); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, normalized)
	s.log.Info("plan overridden by admin",
		slog.String("admin", actor.Email),
		slog.String("target", normalized),
		slog.String("plan", plan))
	return nil
}

// ListUsers возвращает все учётные записи.
func (s *Service) ListUsers(ctx context.Context, actor *models.Account) ([]*models.Account, error) {
	const op = "admin.ListUsers"

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return accounts, nil
}

// RemoveAccount удаляет учётную запись; её платежи удаляются каскадно.
func (s *Service) RemoveAccount(ctx context.Context, actor *models.Account, targetEmail string) error {
	const op = "admin.RemoveAccount"

	if !actor.IsAdmin() {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	normalized := models.NormalizeEmail(targetEmail)
	if err := s.repo.DeleteAccount(ctx, normalized); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, normalized)
	s.log.Info("account removed by admin",
		slog.String("admin", actor.Email),
		slog.String("target", normalized))
	return nil
}

func (s *Service) invalidate(ctx context.Context, normalizedEmail string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.AccountKey(normalizedEmail)); err != nil {
		s.log.Warn("account cache invalidation failed", sl.Err(err))
	}
}
