package imagestore

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig configures the MinIO backend. Endpoint is host[:port].
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseTLS    bool
	PublicURL string
}

type MinIO struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinIO(cfg MinIOConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseTLS,
	})
	if err != nil {
		return nil, err
	}
	return &MinIO{client: client, bucket: cfg.Bucket, baseURL: minioBaseURL(cfg)}, nil
}

func minioBaseURL(cfg MinIOConfig) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	scheme := "http://"
	if cfg.UseTLS {
		scheme = "https://"
	}
	return joinURL(scheme+cfg.Endpoint, cfg.Bucket)
}

func (m *MinIO) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return joinURL(m.baseURL, key), nil
}
