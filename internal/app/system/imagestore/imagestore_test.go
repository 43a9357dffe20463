package imagestore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestFolder_ContentType(t *testing.T) {
	tests := []struct {
		folder   Folder
		filename string
		want     string
		wantErr  bool
	}{
		{MemberImages, "photo.JPG", "image/jpeg", false},
		{MemberImages, "photo.png", "image/png", false},
		{MemberImages, "photo.webp", "", true},
		{MemberImages, "photo.svg", "", true},
		{MemberImages, "noext", "", true},
		{PinLogos, "logo.svg", "image/svg+xml", false},
		{PinLogos, "logo.webp", "image/webp", false},
		{PinLogos, "logo.jpeg", "image/jpeg", false},
		{PinLogos, "logo.gif", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.folder.Name+"/"+tt.filename, func(t *testing.T) {
			got, err := tt.folder.ContentType(tt.filename)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedType) {
					t.Errorf("expected ErrUnsupportedType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ContentType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFolder_Key(t *testing.T) {
	now := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	key := PinLogos.Key("../../etc/My Logo!.png", now)

	re := regexp.MustCompile(`^pin-logos/2025/03/[0-9a-f]{8}-My_Logo_\.png$`)
	if !re.MatchString(key) {
		t.Errorf("unexpected key %q", key)
	}
	if PinLogos.Key("a.png", now) == PinLogos.Key("a.png", now) {
		t.Error("expected keys to be unique")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"simple.png", "simple.png"},
		{"with space.jpg", "with_space.jpg"},
		{"dir/sub/file.png", "file.png"},
		{`C:\Users\me\pic.png`, "pic.png"},
		{"", "file"},
		{"..", "file"},
		{"ภาพ.png", "_________.png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	long := strings.Repeat("a", 150) + ".png"
	got := sanitizeFilename(long)
	if len(got) != 100 || !strings.HasSuffix(got, ".png") {
		t.Errorf("long name = %q (len %d)", got, len(got))
	}
}

func TestLocal_Upload(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir, "/files/")
	ctx := context.Background()

	url, err := Upload(ctx, store, MemberImages, "face.png", strings.NewReader("png-bytes"), 9)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.HasPrefix(url, "/files/members/") {
		t.Fatalf("unexpected url %q", url)
	}

	key := strings.TrimPrefix(url, "/files/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("stored content = %q", data)
	}
}

func TestUpload_RejectsTypeBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir, "/files")

	_, err := Upload(context.Background(), store, MemberImages, "face.gif", strings.NewReader("x"), 1)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected nothing written, found %d entries", len(entries))
	}
}

type brokenStore struct{}

func (brokenStore) Put(_ context.Context, _ string, _ io.Reader, _ int64, _ string) (string, error) {
	return "", errors.New("bucket unavailable")
}

func TestUpload_WrapsBackendFailure(t *testing.T) {
	_, err := Upload(context.Background(), brokenStore{}, PinLogos, "logo.png", strings.NewReader("x"), 1)
	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if errors.Is(err, ErrUnsupportedType) {
		t.Error("backend failure must not look like a rejected type")
	}
}

func TestBaseURLs(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"s3 default", s3BaseURL(S3Config{Bucket: "wof", Region: "ap-southeast-1"}), "https://wof.s3.ap-southeast-1.amazonaws.com"},
		{"s3 endpoint", s3BaseURL(S3Config{Bucket: "wof", Endpoint: "https://r2.example.com/"}), "https://r2.example.com/wof"},
		{"s3 public", s3BaseURL(S3Config{Bucket: "wof", PublicURL: "https://cdn.example.com"}), "https://cdn.example.com"},
		{"minio plain", minioBaseURL(MinIOConfig{Endpoint: "localhost:9000", Bucket: "wof"}), "http://localhost:9000/wof"},
		{"minio tls", minioBaseURL(MinIOConfig{Endpoint: "minio.example.com", Bucket: "wof", UseTLS: true}), "https://minio.example.com/wof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestNewMinIO(t *testing.T) {
	m, err := NewMinIO(MinIOConfig{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "wof"})
	if err != nil {
		t.Fatalf("NewMinIO failed: %v", err)
	}
	if m.bucket != "wof" || m.baseURL != "http://localhost:9000/wof" {
		t.Errorf("unexpected client config: %+v", m)
	}
}
