// Package entitlement сводит результаты платежей к тарифному плану
// учётной записи. Единственное правило: оплаченная сессия даёт premium,
// любой другой исход план не меняет.
package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/passgen-saas/internal/cache"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/sl"
	"github.com/magabrotheeeer/passgen-saas/internal/models"
	"github.com/magabrotheeeer/passgen-saas/internal/rabbitmq"
)

// AccountRepository описывает операции с учётными записями,
// необходимые для применения результата платежа.
type AccountRepository interface {
	// UpgradePlanToPremium переводит план на premium, если он ещё не premium.
	// Возвращает true, если запись была обновлена этим вызовом.
	UpgradePlanToPremium(ctx context.Context, accountUID string) (bool, error)

	// GetAccount возвращает учётную запись по UID.
	GetAccount(ctx context.Context, accountUID string) (*models.Account, error)
}

// AccountCache инвалидирует закэшированные учётные записи.
type AccountCache interface {
	Invalidate(ctx context.Context, key string) error
}

// EventPublisher публикует событие активации плана.
type EventPublisher interface {
	PublishPlanActivated(event rabbitmq.PlanActivatedEvent) error
}

// Service применяет результат платёжной сессии к плану учётной записи.
type Service struct {
	accounts  AccountRepository
	cache     AccountCache
	publisher EventPublisher
	log       *slog.Logger
}

// New создает новый экземпляр Service. Кэш и издатель событий могут быть nil.
func New(accounts AccountRepository, accountCache AccountCache, publisher EventPublisher, log *slog.Logger) *Service {
	return &Service{
		accounts:  accounts,
		cache:     accountCache,
		publisher: publisher,
		log:       log,
	}
}

// ApplyOutcome применяет результат платёжной сессии. Повторный вызов
// с тем же результатом безвреден: апгрейд выполняется условным UPDATE,
// а отказ или отмена никогда не понижают уже выданный premium.
func (s *Service) ApplyOutcome(ctx context.Context, accountUID, checkoutSessionID, status string) error {
	const op = "entitlement.ApplyOutcome"

	if status != models.StatusPaid {
		return nil
	}

	upgraded, err := s.accounts.UpgradePlanToPremium(ctx, accountUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !upgraded {
		// План уже premium — ничего не делаем.
		return nil
	}

	account, err := s.accounts.GetAccount(ctx, accountUID)
	if err != nil {
		s.log.Warn("plan upgraded but account re-read failed", sl.Err(err))
		return nil
	}

	s.log.Info("plan upgraded to premium",
		slog.String("account_uid", accountUID),
		slog.String("email", account.Email),
		slog.String("checkout_session_id", checkoutSessionID))

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cache.AccountKey(account.Email)); err != nil {
			s.log.Warn("account cache invalidation failed", sl.Err(err))
		}
	}

	if s.publisher != nil {
		event := rabbitmq.PlanActivatedEvent{
			AccountUID:        accountUID,
			Email:             account.Email,
			CheckoutSessionID: checkoutSessionID,
			ActivatedAt:       time.Now().UTC(),
		}
		if err := s.publisher.PublishPlanActivated(event); err != nil {
			// Недоступный брокер не должен блокировать уже выполненный апгрейд.
			s.log.Error("failed to publish plan.activated event", sl.Err(err))
		}
	}
	return nil
}
