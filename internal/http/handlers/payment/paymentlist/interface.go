package paymentlist

import (
	"context"

	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

type Service interface {
	ListForAccount(ctx context.Context, accountUID string) ([]*models.Payment, error)
}
