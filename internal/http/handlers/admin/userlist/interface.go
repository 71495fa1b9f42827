package userlist

import (
	"context"

	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

type Service interface {
	ListUsers(ctx context.Context, actor *models.Account) ([]*models.Account, error)
}
