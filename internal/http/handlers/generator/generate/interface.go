package generate

import (
	"context"

	"github.com/magabrotheeeer/passgen-saas/internal/lib/password"
	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

type Service interface {
	Generate(account *models.Account, opts password.GenerateOptions, count int) ([]string, error)
}

type Accounts interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}
