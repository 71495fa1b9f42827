package paymentlistall

import (
	"context"

	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

type Service interface {
	ListAll(ctx context.Context) ([]*models.Payment, error)
}
