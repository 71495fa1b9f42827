package paymentreturn

import "context"

type Service interface {
	OnReturn(ctx context.Context, outcome, checkoutSessionID string) (bool, error)
}
