package accountremove

import (
	"context"

	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

type Service interface {
	RemoveAccount(ctx context.Context, actor *models.Account, targetEmail string) error
}
