package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/passgen-saas/internal/http/response"
)

// AdminMiddleware пропускает только учётные записи с ролью admin.
// Ставится после JWTMiddleware: учётная запись уже лежит в контексте.
func AdminMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminMiddleware"

			account, ok := AccountFromContext(r.Context())
			if !ok {
				log.Error("account not found in context", slog.String("op", op))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			if !account.IsAdmin() {
				log.Warn("admin access denied",
					slog.String("op", op),
					slog.String("email", account.Email))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
