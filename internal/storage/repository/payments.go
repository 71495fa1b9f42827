package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

// CreatePayment сохраняет новую платёжную сессию и возвращает её ID.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) (int, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (account_uid, checkout_session_id, status, amount,
			      currency, provider, method)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		payment.AccountUID, payment.CheckoutSessionID, payment.Status,
		payment.Amount, payment.Currency, payment.Provider, payment.Method).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPaymentBySessionID возвращает платёжную сессию по внешней ссылке.
func (s *Storage) GetPaymentBySessionID(ctx context.Context, checkoutSessionID string) (*models.Payment, error) {
	const op = "storage.GetPaymentBySessionID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, account_uid, checkout_session_id, status, amount,
			      currency, provider, method, fail_reason, created_at, updated_at
			  FROM payments
			  WHERE checkout_session_id = $1`
	p := &models.Payment{}
	row := s.DB.QueryRowContext(ctx, query, checkoutSessionID)
	if err := row.Scan(&p.ID, &p.AccountUID, &p.CheckoutSessionID, &p.Status,
		&p.Amount, &p.Currency, &p.Provider, &p.Method, &p.FailReason,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// TransitionPaymentStatus атомарно переводит сессию из статуса from в статус to.
// Возвращает true, если переход выполнен этим вызовом: WHERE по текущему
// статусу гарантирует, что из двух конкурентных верификаций победит одна,
// а терминальная сессия не будет изменена повторно.
func (s *Storage) TransitionPaymentStatus(ctx context.Context, checkoutSessionID, from, to, failReason string) (bool, error) {
	const op = "storage.TransitionPaymentStatus"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if !models.CanTransition(from, to) {
		return false, nil
	}

	query := `UPDATE payments
			  SET status = $1,
			      fail_reason = $2,
			      updated_at = NOW()
			  WHERE checkout_session_id = $3 AND status = $4`
	res, err := s.DB.ExecContext(ctx, query, to, failReason, checkoutSessionID, from)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// ListPayments возвращает все платёжные сессии, новые первыми.
func (s *Storage) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	return s.listPayments(ctx, op,
		`SELECT id, account_uid, checkout_session_id, status, amount,
		     currency, provider, method, fail_reason, created_at, updated_at
		 FROM payments
		 ORDER BY created_at DESC`)
}

// ListPaymentsByAccount возвращает платёжные сессии учётной записи.
func (s *Storage) ListPaymentsByAccount(ctx context.Context, accountUID string) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByAccount"
	return s.listPayments(ctx, op,
		`SELECT id, account_uid, checkout_session_id, status, amount,
		     currency, provider, method, fail_reason, created_at, updated_at
		 FROM payments
		 WHERE account_uid = $1
		 ORDER BY created_at DESC`, accountUID)
}

func (s *Storage) listPayments(ctx context.Context, op, query string, args ...any) ([]*models.Payment, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.AccountUID, &p.CheckoutSessionID, &p.Status,
			&p.Amount, &p.Currency, &p.Provider, &p.Method, &p.FailReason,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
