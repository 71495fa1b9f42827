package login

import (
	"context"

	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

type Service interface {
	Login(ctx context.Context, email, password string) (string, *models.Account, error)
}
