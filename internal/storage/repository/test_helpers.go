package repository

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateAccount создает тестовую учётную запись и возвращает её UID
func (f *TestDataFactory) CreateAccount(t *testing.T, email, name, passwordHash, role, plan string) string {
	uid := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO accounts (uid, email, name, password_hash, role, plan)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uid, email, name, passwordHash, role, plan)
	require.NoError(t, err)
	return uid
}

// CreatePayment создает тестовую платёжную сессию и возвращает её ID
func (f *TestDataFactory) CreatePayment(t *testing.T, accountUID, checkoutSessionID, status, method string, createdAt time.Time) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO payments
		(account_uid, checkout_session_id, status, amount, currency, provider, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		accountUID, checkoutSessionID, status, 1990, "BRL", "simulated", method, createdAt).Scan(&id)
	require.NoError(t, err)
	return id
}

// VerifyAccountPlan проверяет тарифный план учётной записи в БД
func VerifyAccountPlan(t *testing.T, storage *Storage, uid, expectedPlan string) {
	var plan string
	err := storage.DB.QueryRow("SELECT plan FROM accounts WHERE uid = $1", uid).Scan(&plan)
	require.NoError(t, err)
	require.Equal(t, expectedPlan, plan)
}

// VerifyPaymentStatus проверяет статус платёжной сессии в БД
func VerifyPaymentStatus(t *testing.T, storage *Storage, checkoutSessionID, expectedStatus string) {
	var status string
	err := storage.DB.QueryRow("SELECT status FROM payments WHERE checkout_session_id = $1", checkoutSessionID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	var mappedPort nat.Port
	mappedPort, err = pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err, "failed to get mapped port")
	t.Logf("postgres container listening on host port %s", mappedPort.Port())

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to build connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	// Создаем таблицы
	_, err = storage.DB.Exec(`
        DROP TABLE IF EXISTS payments CASCADE;
        DROP TABLE IF EXISTS accounts CASCADE;

        CREATE EXTENSION IF NOT EXISTS "pgcrypto";

        CREATE TABLE accounts (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            email TEXT NOT NULL UNIQUE,
            name TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            plan TEXT NOT NULL DEFAULT 'free',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE payments (
            id SERIAL PRIMARY KEY,
            account_uid UUID NOT NULL REFERENCES accounts(uid) ON DELETE CASCADE,
            checkout_session_id TEXT NOT NULL UNIQUE,
            status TEXT NOT NULL DEFAULT 'created',
            amount BIGINT NOT NULL DEFAULT 0,
            currency TEXT NOT NULL DEFAULT 'BRL',
            provider TEXT NOT NULL DEFAULT '',
            method TEXT NOT NULL DEFAULT '',
            fail_reason TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE INDEX idx_payments_account_uid ON payments(account_uid);
        CREATE INDEX idx_payments_status ON payments(status);
    `)
	require.NoError(t, err, "failed to create tables")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if pgContainer != nil {
			_ = pgContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}
