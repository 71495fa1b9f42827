package passgen

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/admin/accountremove"
	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/admin/paymentlistall"
	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/admin/setplan"
	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/admin/setrole"
	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/generator/generate"
	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/health"
	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/payment/checkout"
	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/passgen-saas/internal/http/handlers/payment/paymentreturn"
	"github.com/magabrotheeeer/passgen-saas/internal/http/middlewarectx"
	adminservice "github.com/magabrotheeeer/passgen-saas/internal/services/admin"
	authservice "github.com/magabrotheeeer/passgen-saas/internal/services/auth"
	generatorservice "github.com/magabrotheeeer/passgen-saas/internal/services/generator"
	paymentservice "github.com/magabrotheeeer/passgen-saas/internal/services/payment"
	"github.com/magabrotheeeer/passgen-saas/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	generatorService *generatorservice.GeneratorService,
	paymentService *paymentservice.PaymentService,
	adminService *adminservice.Service,
	db *repository.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		// Возврат с checkout-страницы — голый браузерный редирект без
		// заголовка Authorization; ключом служит идентификатор сессии.
		r.Get("/checkout/return", paymentreturn.New(logger, paymentService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/passwords/generate", generate.New(logger, generatorService, authService).ServeHTTP)
			r.Post("/checkout", checkout.New(logger, paymentService).ServeHTTP)
			r.Get("/payments/list", paymentlist.New(logger, paymentService).ServeHTTP)

			// Привилегированные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(logger))
				r.Post("/admin/role", setrole.New(logger, adminService).ServeHTTP)
				r.Post("/admin/plan", setplan.New(logger, adminService).ServeHTTP)
				r.Get("/admin/users", userlist.New(logger, adminService).ServeHTTP)
				r.Get("/admin/payments", paymentlistall.New(logger, paymentService).ServeHTTP)
				r.Delete("/admin/users/{email}", accountremove.New(logger, adminService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
