// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/crms/internal/app/features/auditlog"
	casesfeature "github.com/dalemusser/crms/internal/app/features/cases"
	dashboardfeature "github.com/dalemusser/crms/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/crms/internal/app/features/errors"
	healthfeature "github.com/dalemusser/crms/internal/app/features/health"
	loginfeature "github.com/dalemusser/crms/internal/app/features/login"
	logoutfeature "github.com/dalemusser/crms/internal/app/features/logout"
	profilefeature "github.com/dalemusser/crms/internal/app/features/profile"
	stationsfeature "github.com/dalemusser/crms/internal/app/features/stations"
	systemusersfeature "github.com/dalemusser/crms/internal/app/features/systemusers"
	"github.com/dalemusser/crms/internal/app/store/audit"
	casestore "github.com/dalemusser/crms/internal/app/store/cases"
	"github.com/dalemusser/crms/internal/app/store/revocations"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/auditlog"
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/app/system/ratelimit"
	"github.com/dalemusser/crms/internal/app/workflow/authn"
	"github.com/dalemusser/crms/internal/app/workflow/casework"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// loginAccountLimit caps attempts per account per five minutes. It stays
// above the lockout threshold so lockout answers first.
const loginAccountLimit = 20

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The router serves:
//   - /health for load balancers (no auth)
//   - /api/auth for login, logout and the caller's own profile
//   - /api/cases, /api/users, /api/stations, /api/dashboard and /api/audit
//
// Everything under /api shares the per-IP rate limit.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	// Revocation and the health cache check only exist when Redis is configured.
	var revoker authn.Revoker
	var cache healthfeature.Pinger
	if deps.Redis != nil {
		rs := revocations.New(deps.Redis, appCfg.RedisPrefix)
		revoker = rs
		cache = rs
	}

	tokens := auth.NewTokenManager(appCfg.JWTSecret, appCfg.JWTExpiry)
	authenticator := authn.New(userstore.New(db), tokens, revoker, auditLogger, logger, authn.Config{
		LockoutThreshold: appCfg.LockoutThreshold,
		LockoutDuration:  appCfg.LockoutDuration,
		BcryptCost:       appCfg.BcryptCost,
	})
	mw := auth.NewMiddleware(authenticator, logger)

	errorsHandler := errorsfeature.NewHandler(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(errorsHandler.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(auditlog.CaptureRequest)

	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, cache, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	apiLimiter := ratelimit.New(appCfg.APIRateLimit, appCfg.APIRateWindow)
	loginLimiter := ratelimit.NewLoginLimiter(appCfg.LoginRateIP, loginAccountLimit)

	r.Route("/api", func(api chi.Router) {
		api.Use(apiLimiter.Middleware)

		// Authentication and the caller's own account
		api.Route("/auth", func(ar chi.Router) {
			loginHandler := loginfeature.NewHandler(authenticator, loginLimiter, auditLogger, logger)
			ar.Mount("/login", loginfeature.Routes(loginHandler))

			logoutHandler := logoutfeature.NewHandler(authenticator, logger)
			ar.Mount("/logout", logoutfeature.Routes(logoutHandler, mw))

			profileHandler := profilefeature.NewHandler(db, authenticator, auditLogger, logger)
			ar.Group(func(pr chi.Router) {
				pr.Use(mw.RequireAuth)
				pr.Mount("/", profilefeature.Routes(profileHandler))
			})
		})

		// Case records
		caseService := casework.New(casestore.New(db), userstore.New(db), auditLogger, logger)
		api.Mount("/cases", casesfeature.Routes(casesfeature.NewHandler(caseService, logger), mw))

		// User and station administration
		usersHandler := systemusersfeature.NewHandler(db, authenticator, auditLogger, logger)
		api.Mount("/users", systemusersfeature.Routes(usersHandler, mw))

		stationsHandler := stationsfeature.NewHandler(db, auditLogger, logger)
		api.Mount("/stations", stationsfeature.Routes(stationsHandler, mw))

		// Reporting
		dashboardHandler := dashboardfeature.NewHandler(db, logger)
		api.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, mw))

		auditHandler := auditlogfeature.NewHandler(db, logger)
		api.Mount("/audit", auditlogfeature.Routes(auditHandler, mw))
	})

	logger.Info("routes ready",
		zap.Bool("token_revocation", deps.Redis != nil),
		zap.Strings("cors_origins", appCfg.CORSOrigins))

	return r, nil
}
