// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	auditfeature "github.com/phearom922/wall-of-fame/internal/app/features/auditlog"
	errorsfeature "github.com/phearom922/wall-of-fame/internal/app/features/errors"
	healthfeature "github.com/phearom922/wall-of-fame/internal/app/features/health"
	loginfeature "github.com/phearom922/wall-of-fame/internal/app/features/login"
	membersfeature "github.com/phearom922/wall-of-fame/internal/app/features/members"
	pinsfeature "github.com/phearom922/wall-of-fame/internal/app/features/pins"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the Wall of Fame API.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed. The router carries CORS and, when enabled, the
// Prometheus middleware, then mounts:
//
//	/health        liveness + database ping
//	/api/auth      admin login
//	/api/members   member listing (public) and management (admin)
//	/api/pins      pin categories (public reads, admin writes)
//	/api/audit     audit trail (admin)
//	/metrics       Prometheus scrape endpoint
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := deps.Services
	if svc == nil || svc.Issuer == nil {
		return nil, fmt.Errorf("build handler: startup did not run")
	}
	db := deps.MongoDatabase

	errLog := errorsfeature.NewErrorLogger(logger)
	requireAdmin := svc.Issuer.RequireAdmin

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if svc.Metrics != nil {
		r.Use(svc.Metrics.Middleware)
		r.Handle("/metrics", svc.Metrics.Handler())
	}

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Locally stored member photos and pin logos
	if appCfg.StorageType == "local" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	loginHandler := loginfeature.NewHandler(db, svc.Issuer, svc.Limiter, errLog, svc.Audit, logger)
	r.Mount("/api/auth", loginfeature.Routes(loginHandler))

	membersHandler := membersfeature.NewHandler(db, svc.Images, appCfg.MaxUploadBytes, errLog, svc.Audit, logger)
	r.Mount("/api/members", membersfeature.Routes(membersHandler, requireAdmin))

	pinsHandler := pinsfeature.NewHandler(db, svc.Images, appCfg.MaxUploadBytes, errLog, svc.Audit, logger)
	r.Mount("/api/pins", pinsfeature.Routes(pinsHandler, requireAdmin))

	auditHandler := auditfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/audit", auditfeature.Routes(auditHandler, requireAdmin))

	return r, nil
}
