// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	adminstore "github.com/phearom922/wall-of-fame/internal/app/store/admins"
	"github.com/phearom922/wall-of-fame/internal/app/store/audit"
	pinstore "github.com/phearom922/wall-of-fame/internal/app/store/pins"
	"github.com/phearom922/wall-of-fame/internal/app/system/auditlog"
	"github.com/phearom922/wall-of-fame/internal/app/system/auth"
	"github.com/phearom922/wall-of-fame/internal/app/system/authutil"
	"github.com/phearom922/wall-of-fame/internal/app/system/imagestore"
	"github.com/phearom922/wall-of-fame/internal/app/system/metrics"
	"github.com/phearom922/wall-of-fame/internal/app/system/rank"
	"github.com/phearom922/wall-of-fame/internal/app/system/ratelimit"
	"github.com/phearom922/wall-of-fame/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Services are the long-lived components shared by the HTTP handlers.
type Services struct {
	Images  imagestore.Store
	Issuer  *auth.Issuer
	Limiter *ratelimit.LoginLimiter
	Audit   *auditlog.Logger
	Metrics *metrics.Metrics // nil when metrics are disabled
}

// Startup seeds bootstrap data and builds the shared services after the
// schema is in place and before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	if appCfg.AdminUsername != "" {
		if err := ensureAdmin(ctx, db, appCfg.AdminUsername, appCfg.AdminPassword, logger); err != nil {
			return err
		}
	}
	if appCfg.SeedDefaultPins {
		if err := seedDefaultPins(ctx, db, logger); err != nil {
			return err
		}
	}

	images, err := buildImageStore(ctx, appCfg)
	if err != nil {
		logger.Error("image storage init failed", zap.String("storage_type", appCfg.StorageType), zap.Error(err))
		return err
	}

	svc := deps.Services
	if svc == nil {
		return fmt.Errorf("startup: services not allocated")
	}
	svc.Images = images
	svc.Issuer = auth.NewIssuer(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.TokenTTL, logger)
	svc.Limiter = ratelimit.NewLoginLimiter()
	svc.Audit = auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	if appCfg.MetricsEnabled {
		svc.Metrics = metrics.New(db)
	}

	logger.Info("startup complete",
		zap.String("storage_type", appCfg.StorageType),
		zap.Duration("token_ttl", appCfg.TokenTTL),
		zap.Bool("metrics", appCfg.MetricsEnabled))
	return nil
}

// ensureAdmin creates the configured admin account when it does not exist.
// An existing account keeps its password.
func ensureAdmin(ctx context.Context, db *mongo.Database, username, password string, logger *zap.Logger) error {
	if err := authutil.ValidatePassword(password); err != nil {
		return fmt.Errorf("admin_password: %w. %s", err, authutil.PasswordRules())
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := adminstore.New(db).EnsureAdmin(ctx, username, hash)
	if err != nil {
		return fmt.Errorf("ensure admin %q: %w", username, err)
	}
	if created {
		logger.Info("created admin account", zap.String("username", username))
	}
	return nil
}

// seedDefaultPins inserts the default tier ladder into an empty pins collection.
func seedDefaultPins(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	seed := make([]models.Pin, 0, len(rank.Defaults))
	for _, t := range rank.Defaults {
		seed = append(seed, models.Pin{Name: t.Name, Rank: t.Rank})
	}
	n, err := pinstore.New(db).SeedIfEmpty(ctx, seed)
	if err != nil {
		return fmt.Errorf("seed default pins: %w", err)
	}
	if n > 0 {
		logger.Info("seeded default pins", zap.Int("count", n))
	}
	return nil
}

func buildImageStore(ctx context.Context, appCfg AppConfig) (imagestore.Store, error) {
	switch appCfg.StorageType {
	case "local":
		return imagestore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL), nil
	case "s3":
		return imagestore.NewS3(ctx, imagestore.S3Config{
			Region:    appCfg.StorageS3Region,
			Bucket:    appCfg.StorageS3Bucket,
			Endpoint:  appCfg.StorageS3Endpoint,
			AccessKey: appCfg.StorageS3AccessKey,
			SecretKey: appCfg.StorageS3SecretKey,
			PublicURL: appCfg.StoragePublicURL,
		})
	case "minio":
		return imagestore.NewMinIO(imagestore.MinIOConfig{
			Endpoint:  appCfg.StorageMinIOEndpoint,
			AccessKey: appCfg.StorageS3AccessKey,
			SecretKey: appCfg.StorageS3SecretKey,
			Bucket:    appCfg.StorageS3Bucket,
			UseTLS:    appCfg.StorageMinIOUseTLS,
			PublicURL: appCfg.StoragePublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage_type %q", appCfg.StorageType)
	}
}
