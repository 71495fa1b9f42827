// Package payment управляет жизненным циклом платёжной сессии:
// создание checkout-сессии у шлюза, верификация её статуса и ленивое
// разрешение симулированных платежей по часам. Переходы статусов идут
// только вперёд и применяются атомарным compare-and-set в хранилище.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/passgen-saas/internal/lib/sl"
	"github.com/magabrotheeeer/passgen-saas/internal/models"
	"github.com/magabrotheeeer/passgen-saas/internal/paymentprovider"
)

// Исходы возврата клиента с checkout-страницы.
const (
	ReturnSuccess = "success"
	ReturnCancel  = "cancel"
)

// PaymentRepository описывает контракт для работы с платёжными сессиями.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment models.Payment) (int, error)
	GetPaymentBySessionID(ctx context.Context, checkoutSessionID string) (*models.Payment, error)

	// TransitionPaymentStatus атомарно переводит сессию из from в to,
	// возвращая true, если переход выполнен этим вызовом.
	TransitionPaymentStatus(ctx context.Context, checkoutSessionID, from, to, failReason string) (bool, error)

	ListPayments(ctx context.Context) ([]*models.Payment, error)
	ListPaymentsByAccount(ctx context.Context, accountUID string) ([]*models.Payment, error)
}

// Entitlements применяет результат платежа к плану учётной записи.
type Entitlements interface {
	ApplyOutcome(ctx context.Context, accountUID, checkoutSessionID, status string) error
}

// PaymentService управляет платёжными сессиями.
type PaymentService struct {
	repo         PaymentRepository
	gateway      paymentprovider.Gateway
	sim          *paymentprovider.Simulator // nil при реальном шлюзе
	entitlements Entitlements
	log          *slog.Logger
	now          func() time.Time // подменяется в тестах
}

// New создает новый экземпляр PaymentService. Если sim не nil,
// верификация идёт по пути симулятора, иначе — через внешний шлюз.
func New(repo PaymentRepository, gateway paymentprovider.Gateway, sim *paymentprovider.Simulator,
	entitlements Entitlements, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:         repo,
		gateway:      gateway,
		sim:          sim,
		entitlements: entitlements,
		log:          log,
		now:          time.Now,
	}
}

// WithClock заменяет источник времени; используется тестами окна созревания.
func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}

// Initiate создает checkout-сессию у шлюза и сохраняет локальную запись
// со статусом created. Ошибки шлюза поднимаются наверх; неуспешная запись
// после успешного создания сессии — тоже ошибка, а не тихая потеря.
func (s *PaymentService) Initiate(ctx context.Context, account *models.Account, quantity int, method string) (string, error) {
	const op = "payment.Initiate"

	if method == "" {
		method = models.MethodCard
	}
	session, err := s.gateway.CreateSession(ctx, account.Email, quantity)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	p := models.Payment{
		AccountUID:        account.UID,
		CheckoutSessionID: session.ID,
		Status:            models.StatusCreated,
		Currency:          "BRL",
		Provider:          s.gateway.Provider(),
		Method:            method,
	}
	if s.sim != nil {
		p.Amount = s.sim.Amount()
		p.Currency = s.sim.Currency()
	}
	if _, err := s.repo.CreatePayment(ctx, p); err != nil {
		// Сессия уже существует у провайдера, но не записана локально.
		s.log.Error("checkout session created upstream but not recorded",
			slog.String("checkout_session_id", session.ID), sl.Err(err))
		return "", fmt.Errorf("%s: session %s created upstream but not recorded: %w", op, session.ID, err)
	}

	s.log.Info("checkout session initiated",
		slog.String("account_uid", account.UID),
		slog.String("checkout_session_id", session.ID),
		slog.String("provider", p.Provider),
		slog.String("method", method))
	return session.RedirectURL, nil
}

// Verify сверяет сессию с авторитетным источником и возвращает признак оплаты.
// Отсутствующая локально сессия — no-op с false. Для оплаченной сессии апгрейд
// плана применяется заново при каждой верификации: переход в paid мог выиграть
// гонку, а апгрейд — сорваться, и тогда повтор доводит план до premium.
// Повторных эффектов нет: терминальный статус неизменяем, апгрейд условный.
func (s *PaymentService) Verify(ctx context.Context, checkoutSessionID string) (bool, error) {
	const op = "payment.Verify"

	p, err := s.repo.GetPaymentBySessionID(ctx, checkoutSessionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if p.IsTerminal() {
		if p.Status != models.StatusPaid {
			return false, nil
		}
		if err := s.entitlements.ApplyOutcome(ctx, p.AccountUID, p.CheckoutSessionID, p.Status); err != nil {
			return true, fmt.Errorf("%s: %w", op, err)
		}
		return true, nil
	}

	if s.sim != nil {
		return s.resolveIfDue(ctx, p)
	}

	state, err := s.gateway.GetSession(ctx, p.CheckoutSessionID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	target := mapGatewayState(state)
	if target == p.Status {
		return false, nil
	}

	applied, err := s.repo.TransitionPaymentStatus(ctx, p.CheckoutSessionID, p.Status, target, "")
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if target != models.StatusPaid {
		return false, nil
	}
	if applied {
		if err := s.entitlements.ApplyOutcome(ctx, p.AccountUID, p.CheckoutSessionID, target); err != nil {
			return true, fmt.Errorf("%s: %w", op, err)
		}
	}
	return true, nil
}

// OnReturn обрабатывает возврат клиента со страницы оплаты:
// успех с идентификатором сессии ведёт к верификации, отмена — no-op.
func (s *PaymentService) OnReturn(ctx context.Context, outcome, checkoutSessionID string) (bool, error) {
	const op = "payment.OnReturn"

	if outcome != ReturnSuccess || checkoutSessionID == "" {
		return false, nil
	}
	isPaid, err := s.Verify(ctx, checkoutSessionID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return isPaid, nil
}

// ListForAccount возвращает платёжные сессии учётной записи,
// предварительно разрешив созревшие симулированные платежи:
// фонового планировщика нет, разрешение происходит на пути чтения.
func (s *PaymentService) ListForAccount(ctx context.Context, accountUID string) ([]*models.Payment, error) {
	const op = "payment.ListForAccount"

	payments, err := s.repo.ListPaymentsByAccount(ctx, accountUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.resolveDue(ctx, payments); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.repo.ListPaymentsByAccount(ctx, accountUID)
}

// ListAll возвращает все платёжные сессии с тем же ленивым разрешением.
func (s *PaymentService) ListAll(ctx context.Context) ([]*models.Payment, error) {
	const op = "payment.ListAll"

	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.resolveDue(ctx, payments); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.repo.ListPayments(ctx)
}

func (s *PaymentService) resolveDue(ctx context.Context, payments []*models.Payment) error {
	if s.sim == nil {
		return nil
	}
	for _, p := range payments {
		if p.IsTerminal() {
			continue
		}
		if _, err := s.resolveIfDue(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// resolveIfDue лениво продвигает симулированную сессию:
// created переводится в pending при первом наблюдении, pending старше окна
// созревания разыгрывается в терминальный исход ровно один раз —
// compare-and-set гарантирует, что из конкурентных вызовов победит один.
func (s *PaymentService) resolveIfDue(ctx context.Context, p *models.Payment) (bool, error) {
	const op = "payment.resolveIfDue"

	switch p.Status {
	case models.StatusCreated:
		applied, err := s.repo.TransitionPaymentStatus(ctx, p.CheckoutSessionID,
			models.StatusCreated, models.StatusPending, "")
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		if applied {
			p.Status = models.StatusPending
		}
		return false, nil

	case models.StatusPending:
		if s.now().Sub(p.CreatedAt) < s.sim.MaturationWindow() {
			return false, nil
		}
		approved, reason := s.sim.Draw(p.Method)
		target := models.StatusDeclined
		if approved {
			target = models.StatusPaid
			reason = ""
		}
		applied, err := s.repo.TransitionPaymentStatus(ctx, p.CheckoutSessionID,
			models.StatusPending, target, reason)
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		if !applied {
			// Конкурентный вызов уже разрешил сессию.
			return false, nil
		}
		p.Status = target
		p.FailReason = reason
		s.log.Info("simulated payment resolved",
			slog.String("checkout_session_id", p.CheckoutSessionID),
			slog.String("status", target),
			slog.String("method", p.Method))
		if target == models.StatusPaid {
			if err := s.entitlements.ApplyOutcome(ctx, p.AccountUID, p.CheckoutSessionID, target); err != nil {
				return true, fmt.Errorf("%s: %w", op, err)
			}
			return true, nil
		}
		return false, nil

	default:
		// processing и unknown симулятор не порождает, терминальные неизменяемы.
		return false, nil
	}
}

// mapGatewayState переводит ответ шлюза в локальный статус:
// complete+paid означает оплату, знакомые статусы берутся как есть,
// всё прочее — unknown и подлежит повторной верификации.
func mapGatewayState(state *paymentprovider.SessionState) string {
	if state.Status == "complete" && state.PaymentStatus == "paid" {
		return models.StatusPaid
	}
	switch state.Status {
	case "open":
		return models.StatusPending
	case "expired":
		return models.StatusCanceled
	case "":
		return models.StatusUnknown
	}
	if _, ok := models.StatusRank(state.Status); ok {
		return state.Status
	}
	return models.StatusUnknown
}
