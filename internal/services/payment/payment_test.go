package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/passgen-saas/internal/models"
	"github.com/magabrotheeeer/passgen-saas/internal/paymentprovider"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreatePayment(ctx context.Context, payment models.Payment) (int, error) {
	args := m.Called(ctx, payment)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetPaymentBySessionID(ctx context.Context, checkoutSessionID string) (*models.Payment, error) {
	args := m.Called(ctx, checkoutSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockRepository) TransitionPaymentStatus(ctx context.Context, checkoutSessionID, from, to, failReason string) (bool, error) {
	args := m.Called(ctx, checkoutSessionID, from, to, failReason)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockRepository) ListPaymentsByAccount(ctx context.Context, accountUID string) ([]*models.Payment, error) {
	args := m.Called(ctx, accountUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

type MockEntitlements struct {
	mock.Mock
}

func (m *MockEntitlements) ApplyOutcome(ctx context.Context, accountUID, checkoutSessionID, status string) error {
	args := m.Called(ctx, accountUID, checkoutSessionID, status)
	return args.Error(0)
}

// fixedOutcomes выдаёт заранее заданный исход вместо случайного розыгрыша.
type fixedOutcomes struct {
	approved bool
	reason   string
}

func (f fixedOutcomes) Draw(_ string) (bool, string) {
	return f.approved, f.reason
}

// fakeGateway отдаёт канонические ответы внешнего шлюза.
type fakeGateway struct {
	state *paymentprovider.SessionState
	err   error
}

func (g *fakeGateway) CreateSession(_ context.Context, _ string, _ int) (*paymentprovider.CheckoutSession, error) {
	return &paymentprovider.CheckoutSession{ID: "cs_test", RedirectURL: "https://pay.example.com/cs_test"}, nil
}

func (g *fakeGateway) GetSession(_ context.Context, _ string) (*paymentprovider.SessionState, error) {
	return g.state, g.err
}

func (g *fakeGateway) Provider() string { return "checkout" }

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newSimulator(outcomes paymentprovider.OutcomeSource) *paymentprovider.Simulator {
	return paymentprovider.NewSimulator("http://localhost:8080", time.Minute, 1990, "BRL", outcomes)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestPaymentService_Initiate(t *testing.T) {
	account := &models.Account{UID: "uid-1", Email: "user@example.com", Plan: models.PlanFree}

	t.Run("simulated session is recorded with amount and currency", func(t *testing.T) {
		repo := new(MockRepository)
		ent := new(MockEntitlements)
		sim := newSimulator(nil)
		service := New(repo, sim, sim, ent, newNoopLogger())

		repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
			return p.AccountUID == "uid-1" &&
				p.Status == models.StatusCreated &&
				p.Provider == "simulated" &&
				p.Method == models.MethodPix &&
				p.Amount == 1990 &&
				p.Currency == "BRL"
		})).Return(1, nil).Once()

		redirectURL, err := service.Initiate(context.Background(), account, 1, models.MethodPix)
		require.NoError(t, err)
		assert.Contains(t, redirectURL, "/api/v1/checkout/return?paid_success=true&session_id=sim_")

		repo.AssertExpectations(t)
	})

	t.Run("empty method defaults to card", func(t *testing.T) {
		repo := new(MockRepository)
		ent := new(MockEntitlements)
		sim := newSimulator(nil)
		service := New(repo, sim, sim, ent, newNoopLogger())

		repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
			return p.Method == models.MethodCard
		})).Return(1, nil).Once()

		_, err := service.Initiate(context.Background(), account, 1, "")
		require.NoError(t, err)

		repo.AssertExpectations(t)
	})

	t.Run("insert failure after upstream create is surfaced", func(t *testing.T) {
		repo := new(MockRepository)
		ent := new(MockEntitlements)
		sim := newSimulator(nil)
		service := New(repo, sim, sim, ent, newNoopLogger())

		repo.On("CreatePayment", mock.Anything, mock.Anything).Return(0, errors.New("db error")).Once()

		_, err := service.Initiate(context.Background(), account, 1, models.MethodCard)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "created upstream but not recorded")

		repo.AssertExpectations(t)
	})
}

func TestPaymentService_Verify_Simulated(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		outcomes   paymentprovider.OutcomeSource
		setupMocks func(*MockRepository, *MockEntitlements)
		wantPaid   bool
	}{
		{
			name: "unknown session is a no-op",
			setupMocks: func(r *MockRepository, _ *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "sim_1").
					Return(nil, models.ErrNotFound).Once()
			},
			wantPaid: false,
		},
		{
			name: "terminal paid session re-applies the conditional upgrade",
			setupMocks: func(r *MockRepository, e *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "sim_1").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "sim_1",
						Status: models.StatusPaid, CreatedAt: now.Add(-time.Hour),
					}, nil).Once()
				e.On("ApplyOutcome", mock.Anything, "uid-1", "sim_1", models.StatusPaid).Return(nil).Once()
			},
			wantPaid: true,
		},
		{
			name: "terminal declined session reports unpaid without side effects",
			setupMocks: func(r *MockRepository, _ *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "sim_1").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "sim_1",
						Status: models.StatusDeclined, CreatedAt: now.Add(-time.Hour),
					}, nil).Once()
			},
			wantPaid: false,
		},
		{
			name: "created session moves to pending on first observation",
			setupMocks: func(r *MockRepository, _ *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "sim_1").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "sim_1",
						Status: models.StatusCreated, CreatedAt: now,
					}, nil).Once()
				r.On("TransitionPaymentStatus", mock.Anything, "sim_1",
					models.StatusCreated, models.StatusPending, "").Return(true, nil).Once()
			},
			wantPaid: false,
		},
		{
			name:     "pending session inside maturation window stays pending",
			outcomes: fixedOutcomes{approved: true},
			setupMocks: func(r *MockRepository, _ *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "sim_1").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "sim_1",
						Status: models.StatusPending, CreatedAt: now.Add(-30 * time.Second),
					}, nil).Once()
			},
			wantPaid: false,
		},
		{
			name:     "matured pending session resolves to paid and applies outcome",
			outcomes: fixedOutcomes{approved: true},
			setupMocks: func(r *MockRepository, e *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "sim_1").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "sim_1", Method: models.MethodCard,
						Status: models.StatusPending, CreatedAt: now.Add(-2 * time.Minute),
					}, nil).Once()
				r.On("TransitionPaymentStatus", mock.Anything, "sim_1",
					models.StatusPending, models.StatusPaid, "").Return(true, nil).Once()
				e.On("ApplyOutcome", mock.Anything, "uid-1", "sim_1", models.StatusPaid).Return(nil).Once()
			},
			wantPaid: true,
		},
		{
			name:     "matured pending session resolves to declined with reason",
			outcomes: fixedOutcomes{approved: false, reason: "insufficient funds"},
			setupMocks: func(r *MockRepository, _ *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "sim_1").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "sim_1", Method: models.MethodCard,
						Status: models.StatusPending, CreatedAt: now.Add(-2 * time.Minute),
					}, nil).Once()
				r.On("TransitionPaymentStatus", mock.Anything, "sim_1",
					models.StatusPending, models.StatusDeclined, "insufficient funds").Return(true, nil).Once()
			},
			wantPaid: false,
		},
		{
			name:     "lost compare-and-set race applies nothing",
			outcomes: fixedOutcomes{approved: true},
			setupMocks: func(r *MockRepository, _ *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "sim_1").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "sim_1", Method: models.MethodCard,
						Status: models.StatusPending, CreatedAt: now.Add(-2 * time.Minute),
					}, nil).Once()
				r.On("TransitionPaymentStatus", mock.Anything, "sim_1",
					models.StatusPending, models.StatusPaid, "").Return(false, nil).Once()
			},
			wantPaid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			ent := new(MockEntitlements)
			sim := newSimulator(tt.outcomes)
			service := New(repo, sim, sim, ent, newNoopLogger()).WithClock(fixedClock(now))

			tt.setupMocks(repo, ent)

			isPaid, err := service.Verify(context.Background(), "sim_1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, isPaid)

			repo.AssertExpectations(t)
			ent.AssertExpectations(t)
		})
	}
}

func TestPaymentService_Verify_Gateway(t *testing.T) {
	tests := []struct {
		name       string
		state      *paymentprovider.SessionState
		setupMocks func(*MockRepository, *MockEntitlements)
		wantPaid   bool
	}{
		{
			name:  "complete and paid upgrades the session",
			state: &paymentprovider.SessionState{Status: "complete", PaymentStatus: "paid"},
			setupMocks: func(r *MockRepository, e *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "cs_test").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "cs_test", Status: models.StatusPending,
					}, nil).Once()
				r.On("TransitionPaymentStatus", mock.Anything, "cs_test",
					models.StatusPending, models.StatusPaid, "").Return(true, nil).Once()
				e.On("ApplyOutcome", mock.Anything, "uid-1", "cs_test", models.StatusPaid).Return(nil).Once()
			},
			wantPaid: true,
		},
		{
			name:  "open session stays pending without a transition",
			state: &paymentprovider.SessionState{Status: "open", PaymentStatus: "unpaid"},
			setupMocks: func(r *MockRepository, _ *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "cs_test").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "cs_test", Status: models.StatusPending,
					}, nil).Once()
			},
			wantPaid: false,
		},
		{
			name:  "expired session is canceled",
			state: &paymentprovider.SessionState{Status: "expired", PaymentStatus: "unpaid"},
			setupMocks: func(r *MockRepository, _ *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "cs_test").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "cs_test", Status: models.StatusPending,
					}, nil).Once()
				r.On("TransitionPaymentStatus", mock.Anything, "cs_test",
					models.StatusPending, models.StatusCanceled, "").Return(true, nil).Once()
			},
			wantPaid: false,
		},
		{
			name:  "unrecognized state moves to unknown and stays verifiable",
			state: &paymentprovider.SessionState{Status: "weird", PaymentStatus: ""},
			setupMocks: func(r *MockRepository, _ *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "cs_test").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "cs_test", Status: models.StatusPending,
					}, nil).Once()
				r.On("TransitionPaymentStatus", mock.Anything, "cs_test",
					models.StatusPending, models.StatusUnknown, "").Return(true, nil).Once()
			},
			wantPaid: false,
		},
		{
			name:  "paid arriving twice upgrades entitlement only for the winner",
			state: &paymentprovider.SessionState{Status: "complete", PaymentStatus: "paid"},
			setupMocks: func(r *MockRepository, _ *MockEntitlements) {
				r.On("GetPaymentBySessionID", mock.Anything, "cs_test").
					Return(&models.Payment{
						AccountUID: "uid-1", CheckoutSessionID: "cs_test", Status: models.StatusPending,
					}, nil).Once()
				r.On("TransitionPaymentStatus", mock.Anything, "cs_test",
					models.StatusPending, models.StatusPaid, "").Return(false, nil).Once()
			},
			wantPaid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			ent := new(MockEntitlements)
			gateway := &fakeGateway{state: tt.state}
			service := New(repo, gateway, nil, ent, newNoopLogger())

			tt.setupMocks(repo, ent)

			isPaid, err := service.Verify(context.Background(), "cs_test")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, isPaid)

			repo.AssertExpectations(t)
			ent.AssertExpectations(t)
		})
	}
}

func TestPaymentService_OnReturn(t *testing.T) {
	t.Run("cancel outcome is a no-op", func(t *testing.T) {
		repo := new(MockRepository)
		ent := new(MockEntitlements)
		sim := newSimulator(nil)
		service := New(repo, sim, sim, ent, newNoopLogger())

		isPaid, err := service.OnReturn(context.Background(), ReturnCancel, "sim_1")
		require.NoError(t, err)
		assert.False(t, isPaid)

		repo.AssertExpectations(t)
	})

	t.Run("success without session id is a no-op", func(t *testing.T) {
		repo := new(MockRepository)
		ent := new(MockEntitlements)
		sim := newSimulator(nil)
		service := New(repo, sim, sim, ent, newNoopLogger())

		isPaid, err := service.OnReturn(context.Background(), ReturnSuccess, "")
		require.NoError(t, err)
		assert.False(t, isPaid)
	})

	t.Run("success triggers verification", func(t *testing.T) {
		repo := new(MockRepository)
		ent := new(MockEntitlements)
		sim := newSimulator(nil)
		service := New(repo, sim, sim, ent, newNoopLogger())

		repo.On("GetPaymentBySessionID", mock.Anything, "sim_1").
			Return(&models.Payment{
				AccountUID: "uid-1", CheckoutSessionID: "sim_1", Status: models.StatusPaid,
			}, nil).Once()
		ent.On("ApplyOutcome", mock.Anything, "uid-1", "sim_1", models.StatusPaid).Return(nil).Once()

		isPaid, err := service.OnReturn(context.Background(), ReturnSuccess, "sim_1")
		require.NoError(t, err)
		assert.True(t, isPaid)

		repo.AssertExpectations(t)
		ent.AssertExpectations(t)
	})
}

// Сорвавшийся после выигранного перехода апгрейд не должен терять premium
// навсегда: следующая верификация оплаченной сессии доводит план.
func TestPaymentService_Verify_RetriesUpgradeAfterFailure(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	repo := new(MockRepository)
	ent := new(MockEntitlements)
	sim := newSimulator(fixedOutcomes{approved: true})
	service := New(repo, sim, sim, ent, newNoopLogger()).WithClock(fixedClock(now))

	repo.On("GetPaymentBySessionID", mock.Anything, "sim_1").
		Return(&models.Payment{
			AccountUID: "uid-1", CheckoutSessionID: "sim_1", Method: models.MethodCard,
			Status: models.StatusPending, CreatedAt: now.Add(-2 * time.Minute),
		}, nil).Once()
	repo.On("TransitionPaymentStatus", mock.Anything, "sim_1",
		models.StatusPending, models.StatusPaid, "").Return(true, nil).Once()
	ent.On("ApplyOutcome", mock.Anything, "uid-1", "sim_1", models.StatusPaid).
		Return(errors.New("connection reset by peer")).Once()

	isPaid, err := service.Verify(context.Background(), "sim_1")
	require.Error(t, err)
	assert.True(t, isPaid)

	repo.On("GetPaymentBySessionID", mock.Anything, "sim_1").
		Return(&models.Payment{
			AccountUID: "uid-1", CheckoutSessionID: "sim_1", Method: models.MethodCard,
			Status: models.StatusPaid, CreatedAt: now.Add(-2 * time.Minute),
		}, nil).Once()
	ent.On("ApplyOutcome", mock.Anything, "uid-1", "sim_1", models.StatusPaid).Return(nil).Once()

	isPaid, err = service.Verify(context.Background(), "sim_1")
	require.NoError(t, err)
	assert.True(t, isPaid)

	ent.AssertNumberOfCalls(t, "ApplyOutcome", 2)
	repo.AssertExpectations(t)
	ent.AssertExpectations(t)
}

func TestPaymentService_ListForAccount_ResolvesDue(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	repo := new(MockRepository)
	ent := new(MockEntitlements)
	sim := newSimulator(fixedOutcomes{approved: true})
	service := New(repo, sim, sim, ent, newNoopLogger()).WithClock(fixedClock(now))

	matured := &models.Payment{
		AccountUID: "uid-1", CheckoutSessionID: "sim_1", Method: models.MethodCard,
		Status: models.StatusPending, CreatedAt: now.Add(-2 * time.Minute),
	}
	terminal := &models.Payment{
		AccountUID: "uid-1", CheckoutSessionID: "sim_2",
		Status: models.StatusDeclined, CreatedAt: now.Add(-time.Hour),
	}

	repo.On("ListPaymentsByAccount", mock.Anything, "uid-1").
		Return([]*models.Payment{matured, terminal}, nil).Once()
	repo.On("TransitionPaymentStatus", mock.Anything, "sim_1",
		models.StatusPending, models.StatusPaid, "").Return(true, nil).Once()
	ent.On("ApplyOutcome", mock.Anything, "uid-1", "sim_1", models.StatusPaid).Return(nil).Once()
	repo.On("ListPaymentsByAccount", mock.Anything, "uid-1").
		Return([]*models.Payment{
			{CheckoutSessionID: "sim_1", Status: models.StatusPaid},
			{CheckoutSessionID: "sim_2", Status: models.StatusDeclined},
		}, nil).Once()

	got, err := service.ListForAccount(context.Background(), "uid-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.StatusPaid, got[0].Status)

	repo.AssertExpectations(t)
	ent.AssertExpectations(t)
}

func TestMapGatewayState(t *testing.T) {
	tests := []struct {
		name  string
		state paymentprovider.SessionState
		want  string
	}{
		{name: "complete paid", state: paymentprovider.SessionState{Status: "complete", PaymentStatus: "paid"}, want: models.StatusPaid},
		{name: "complete unpaid is unknown", state: paymentprovider.SessionState{Status: "complete", PaymentStatus: "unpaid"}, want: models.StatusUnknown},
		{name: "open", state: paymentprovider.SessionState{Status: "open"}, want: models.StatusPending},
		{name: "expired", state: paymentprovider.SessionState{Status: "expired"}, want: models.StatusCanceled},
		{name: "empty status", state: paymentprovider.SessionState{}, want: models.StatusUnknown},
		{name: "known local status passes through", state: paymentprovider.SessionState{Status: "processing"}, want: models.StatusProcessing},
		{name: "unrecognized status", state: paymentprovider.SessionState{Status: "weird"}, want: models.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapGatewayState(&tt.state))
		})
	}
}
