package setplan

import (
	"context"

	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

type Service interface {
	SetPlan(ctx context.Context, actor *models.Account, targetEmail, plan string) error
}
