package register

import (
	"context"
)

type Service interface {
	Register(ctx context.Context, email, name, password string) (string, error)
}
