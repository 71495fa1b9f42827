package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/passgen-saas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/password"
	"github.com/magabrotheeeer/passgen-saas/internal/models"
	"github.com/magabrotheeeer/passgen-saas/internal/services/generator"
)

type GeneratorServiceMock struct {
	mock.Mock
}

func (m *GeneratorServiceMock) Generate(account *models.Account, opts password.GenerateOptions, count int) ([]string, error) {
	args := m.Called(account, opts, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type AccountsMock struct {
	mock.Mock
}

func (m *AccountsMock) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestGenerateHandler_ServeHTTP(t *testing.T) {
	claims := &models.Account{UID: "uid-1", Email: "user@example.com", Role: models.RoleUser}
	freeAccount := &models.Account{UID: "uid-1", Email: "user@example.com", Plan: models.PlanFree}

	tests := []struct {
		name           string
		requestBody    any
		withAccount    bool
		setupMocks     func(*GeneratorServiceMock, *AccountsMock)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "successful generation",
			requestBody: Request{Length: 12, UseLower: true, Count: 1},
			withAccount: true,
			setupMocks: func(g *GeneratorServiceMock, a *AccountsMock) {
				a.On("FindByEmail", mock.Anything, "user@example.com").Return(freeAccount, nil).Once()
				g.On("Generate", freeAccount,
					password.GenerateOptions{Length: 12, UseLower: true}, 1).
					Return([]string{"aqzwsxedcrfv"}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "plan limit exceeded",
			requestBody: Request{Length: 13, UseLower: true, Count: 1},
			withAccount: true,
			setupMocks: func(g *GeneratorServiceMock, a *AccountsMock) {
				a.On("FindByEmail", mock.Anything, "user@example.com").Return(freeAccount, nil).Once()
				g.On("Generate", freeAccount,
					password.GenerateOptions{Length: 13, UseLower: true}, 1).
					Return(nil, generator.ErrPlanLimit).Once()
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      "request exceeds plan limits",
		},
		{
			name:           "validation error - length above maximum",
			requestBody:    Request{Length: 100, UseLower: true},
			withAccount:    true,
			setupMocks:     func(_ *GeneratorServiceMock, _ *AccountsMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			withAccount:    true,
			setupMocks:     func(_ *GeneratorServiceMock, _ *AccountsMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "missing account in context",
			requestBody:    Request{Length: 12, UseLower: true},
			withAccount:    false,
			setupMocks:     func(_ *GeneratorServiceMock, _ *AccountsMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generatorMock := new(GeneratorServiceMock)
			accountsMock := new(AccountsMock)
			handler := New(newNoopLogger(), generatorMock, accountsMock)

			tt.setupMocks(generatorMock, accountsMock)

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/passwords/generate", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withAccount {
				ctx = context.WithValue(ctx, middlewarectx.AccountKey, claims)
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			}
			if tt.wantStatusCode == http.StatusOK {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, float64(1), data["count"])
			}

			generatorMock.AssertExpectations(t)
			accountsMock.AssertExpectations(t)
		})
	}
}
