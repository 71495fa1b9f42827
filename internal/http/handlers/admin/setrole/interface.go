package setrole

import (
	"context"

	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

type Service interface {
	SetRole(ctx context.Context, actor *models.Account, targetEmail string, isAdmin bool) error
}
