// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/phearom922/wall-of-fame/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// devJWTSecret is the development default; ValidateConfig refuses it in prod.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// minProdSecretLen is the shortest JWT secret accepted in prod (HS256 key size).
const minProdSecretLen = 32

// appConfigKeys defines the configuration keys for the Wall of Fame API.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: WALLOFFAME_MONGO_URI, WALLOFFAME_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "wall_of_fame", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HS256 signing secret (at least 32 bytes in production)"},
	{Name: "jwt_issuer", Default: "walloffame", Desc: "Issuer claim on admin tokens"},
	{Name: "token_ttl", Default: "24h", Desc: "Admin token lifetime (e.g., 24h, 90m)"},

	// Bootstrap data
	{Name: "admin_username", Default: "", Desc: "Admin account created on startup when missing"},
	{Name: "admin_password", Default: "", Desc: "Password for admin_username"},
	{Name: "seed_default_pins", Default: true, Desc: "Seed the default pin tiers into an empty pins collection"},

	{Name: "cors_allowed_origins", Default: "http://localhost:3000,http://localhost:5174", Desc: "Comma-separated browser origins allowed by CORS"},

	// Image storage
	{Name: "storage_type", Default: "local", Desc: "Image storage backend: 'local', 's3' or 'minio'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded images"},
	{Name: "storage_local_url", Default: "/uploads", Desc: "URL prefix for serving local images"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 or MinIO bucket name"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "S3-compatible endpoint URL (blank for AWS)"},
	{Name: "storage_s3_access_key", Default: "", Desc: "S3 or MinIO access key (blank uses the AWS credential chain)"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "S3 or MinIO secret key"},
	{Name: "storage_public_url", Default: "", Desc: "Public base URL for stored images (CDN or bucket website)"},
	{Name: "storage_minio_endpoint", Default: "", Desc: "MinIO endpoint host[:port]"},
	{Name: "storage_minio_use_tls", Default: true, Desc: "Use TLS when talking to MinIO"},
	{Name: "max_upload_mb", Default: 10, Desc: "Maximum request body size for image uploads, in MB"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics on /metrics"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges, in order of precedence:
// flags > env (WAFFLE_* for core, WALLOFFAME_* for app) > config files > defaults.
// TIMEOUT_* overrides for storage deadlines are applied here too.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "WALLOFFAME", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),
		TokenTTL:  appValues.Duration("token_ttl", 24*time.Hour),

		AdminUsername:   strings.TrimSpace(appValues.String("admin_username")),
		AdminPassword:   appValues.String("admin_password"),
		SeedDefaultPins: appValues.Bool("seed_default_pins"),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),

		StorageType:          strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath:     appValues.String("storage_local_path"),
		StorageLocalURL:      strings.TrimRight(appValues.String("storage_local_url"), "/"),
		StorageS3Region:      appValues.String("storage_s3_region"),
		StorageS3Bucket:      appValues.String("storage_s3_bucket"),
		StorageS3Endpoint:    appValues.String("storage_s3_endpoint"),
		StorageS3AccessKey:   appValues.String("storage_s3_access_key"),
		StorageS3SecretKey:   appValues.String("storage_s3_secret_key"),
		StoragePublicURL:     appValues.String("storage_public_url"),
		StorageMinIOEndpoint: appValues.String("storage_minio_endpoint"),
		StorageMinIOUseTLS:   appValues.Bool("storage_minio_use_tls"),
		MaxUploadBytes:       int64(appValues.Int("max_upload_mb")) << 20,

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		MetricsEnabled: appValues.Bool("metrics_enabled"),
	}

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n), zap.Any("timeouts", timeouts.Current()))
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It checks the MongoDB URI shape before any connection attempt, holds the
// JWT secret to production strength in prod, and makes sure the selected
// image storage backend has what it needs.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database must be set")
	}

	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must be set")
	}
	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.JWTSecret == devJWTSecret {
			return fmt.Errorf("jwt_secret must be changed from the development default in prod")
		}
		if len(appCfg.JWTSecret) < minProdSecretLen {
			return fmt.Errorf("jwt_secret must be at least %d bytes in prod", minProdSecretLen)
		}
	}
	if appCfg.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}

	if (appCfg.AdminUsername == "") != (appCfg.AdminPassword == "") {
		return fmt.Errorf("admin_username and admin_password must be set together")
	}

	if appCfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_mb must be positive")
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" || appCfg.StorageLocalURL == "" {
			return fmt.Errorf("local storage requires storage_local_path and storage_local_url")
		}
		if !strings.HasPrefix(appCfg.StorageLocalURL, "/") {
			return fmt.Errorf("storage_local_url must start with /")
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			return fmt.Errorf("s3 storage requires storage_s3_bucket and storage_s3_region")
		}
		if (appCfg.StorageS3AccessKey == "") != (appCfg.StorageS3SecretKey == "") {
			return fmt.Errorf("storage_s3_access_key and storage_s3_secret_key must be set together")
		}
	case "minio":
		if appCfg.StorageMinIOEndpoint == "" || appCfg.StorageS3Bucket == "" {
			return fmt.Errorf("minio storage requires storage_minio_endpoint and storage_s3_bucket")
		}
		if appCfg.StorageS3AccessKey == "" || appCfg.StorageS3SecretKey == "" {
			return fmt.Errorf("minio storage requires storage_s3_access_key and storage_s3_secret_key")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want local, s3 or minio)", appCfg.StorageType)
	}

	for _, v := range []struct{ key, val string }{
		{"audit_log_auth", appCfg.AuditLogAuth},
		{"audit_log_admin", appCfg.AuditLogAdmin},
	} {
		switch v.val {
		case "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", v.key, v.val)
		}
	}

	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
