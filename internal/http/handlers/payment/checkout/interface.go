package checkout

import (
	"context"

	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

type Service interface {
	Initiate(ctx context.Context, account *models.Account, quantity int, method string) (string, error)
}
