// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for the Wall of Fame API.
//
// Values come from WALLOFFAME_* environment variables, config files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig carries the
// framework-level settings: ports, TLS, env and log level.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	// Admin account created on startup when absent. Both blank means no seeding.
	AdminUsername string
	AdminPassword string

	// SeedDefaultPins fills an empty pins collection with the default tiers.
	SeedDefaultPins bool

	// CORSAllowedOrigins is the browser origin allow-list.
	CORSAllowedOrigins []string

	// Image storage: "local", "s3" or "minio"
	StorageType      string
	StorageLocalPath string // directory for local uploads
	StorageLocalURL  string // URL prefix local uploads are served from

	// S3 and MinIO share bucket and credentials
	StorageS3Region      string
	StorageS3Bucket      string
	StorageS3Endpoint    string // S3-compatible endpoint; blank for AWS
	StorageS3AccessKey   string
	StorageS3SecretKey   string
	StoragePublicURL     string // CDN or public bucket URL for returned links
	StorageMinIOEndpoint string // host[:port]
	StorageMinIOUseTLS   bool

	// MaxUploadBytes caps multipart bodies on member and pin writes.
	MaxUploadBytes int64

	// Audit logging: "all" (db+log), "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// MetricsEnabled mounts /metrics and the request instrumentation.
	MetricsEnabled bool
}
