// Package auth содержит логику бизнес-уровня для регистрации и
// аутентификации учётных записей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/passgen-saas/internal/cache"
	"github.com/magabrotheeeer/passgen-saas/internal/config"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/jwt"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/password"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/sl"
	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

// accountCacheTTL — время жизни закэшированной учётной записи.
const accountCacheTTL = 5 * time.Minute

// dummyHash — валидный bcrypt-хэш для выравнивания времени ответа:
// при неизвестном email сравнение всё равно выполняется, чтобы по задержке
// нельзя было отличить несуществующую учётную запись от неверного пароля.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AccountRepository описывает контракт для работы с учётными записями в базе данных.
type AccountRepository interface {
	// CreateAccount сохраняет новую учётную запись и возвращает её UID.
	CreateAccount(ctx context.Context, account models.Account) (string, error)

	// GetAccountByEmail возвращает учётную запись по нормализованному email
	// или models.ErrNotFound.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// AccountCache описывает кэш учётных записей.
type AccountCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	accounts AccountRepository
	cache    AccountCache
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает новый экземпляр AuthService. Кэш может быть nil —
// тогда все чтения идут напрямую в хранилище.
func New(accounts AccountRepository, accountCache AccountCache, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		cache:    accountCache,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает новую учётную запись с хэшированием пароля,
// дефолтной ролью user и планом free. Возвращает models.ErrDuplicateEmail,
// если нормализованный email уже занят.
func (s *AuthService) Register(ctx context.Context, email, name, rawPassword string) (string, error) {
	const op = "auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	account := models.Account{
		Email:        models.NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: hashed,
		Role:         models.RoleUser,
		Plan:         models.PlanFree,
	}
	uid, err := s.accounts.CreateAccount(ctx, account)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль и выдаёт JWT. Неизвестный email и неверный пароль
// неразличимы для вызывающего: оба случая — models.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.Account, error) {
	const op = "auth.Login"

	account, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_ = password.CompareHash(dummyHash, rawPassword)
			return "", nil, models.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(account.PasswordHash, rawPassword); err != nil {
		return "", nil, models.ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(account.Email, account.Role, account.UID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, account, nil
}

// FindByEmail возвращает учётную запись по email, нормализуя его так же,
// как при создании. Чтение идёт через кэш, промах догружается из хранилища.
func (s *AuthService) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "auth.FindByEmail"

	normalized := models.NormalizeEmail(email)
	if s.cache != nil {
		var cached models.Account
		found, err := s.cache.Get(ctx, cache.AccountKey(normalized), &cached)
		if err != nil {
			s.log.Warn("account cache read failed", sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	account, err := s.accounts.GetAccountByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.AccountKey(normalized), account, accountCacheTTL); err != nil {
			s.log.Warn("account cache write failed", sl.Err(err))
		}
	}
	return account, nil
}

// ValidateToken проверяет JWT и возвращает учётную запись из claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.Account, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return &models.Account{
		UID:   claims.AccountUID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

// EnsureAdmin создаёт административную учётную запись из конфигурации,
// если её ещё нет. Пустые реквизиты отключают бутстрап.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminBootstrap) error {
	const op = "auth.EnsureAdmin"

	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}
	normalized := models.NormalizeEmail(cfg.Email)
	if _, err := s.accounts.GetAccountByEmail(ctx, normalized); err == nil {
		return nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(cfg.Password)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.accounts.CreateAccount(ctx, models.Account{
		Email:        normalized,
		Name:         cfg.Name,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
		Plan:         models.PlanPremium,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("bootstrap admin account created", slog.String("email", normalized))
	return nil
}
