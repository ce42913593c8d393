package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NightSight1044/legalCRM1/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxUploadSize caps a single document upload
const MaxUploadSize = 10 * 1024 * 1024 // 10MB

var allowedUploadExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".txt": true,
	".jpg": true, ".jpeg": true, ".png": true, ".xlsx": true,
}

// BlobStore keeps document bytes outside the database
type BlobStore interface {
	Put(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*BlobRef, error)
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error) // Returns reader, content-type, error
	SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// BlobRef points at stored content
type BlobRef struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// Storage is the global blob store instance
var Storage BlobStore

// InitializeStorage picks R2 when it is configured and reachable, the local
// filesystem otherwise
func InitializeStorage(cfg *config.Config) BlobStore {
	if !cfg.R2Configured() {
		Storage = NewLocalStorage(cfg.UploadDir)
		zap.L().Info("storage ready", zap.String("backend", "local"), zap.String("path", cfg.UploadDir))
		return Storage
	}

	r2, err := NewR2Storage(cfg)
	if err != nil {
		zap.L().Warn("failed to initialize R2 storage, falling back to local", zap.Error(err))
		Storage = NewLocalStorage(cfg.UploadDir)
		return Storage
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := r2.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.R2BucketName)}); err != nil {
		zap.L().Warn("R2 bucket check failed, falling back to local", zap.Error(err))
		Storage = NewLocalStorage(cfg.UploadDir)
		return Storage
	}

	Storage = r2
	zap.L().Info("storage ready", zap.String("backend", "r2"), zap.String("bucket", cfg.R2BucketName))
	return Storage
}

// R2Storage stores blobs in a Cloudflare R2 bucket through the S3 API
type R2Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

// NewR2Storage creates a new R2 storage provider
func NewR2Storage(cfg *config.Config) (*R2Storage, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.R2AccessKeyID,
			cfg.R2SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion("auto"), // R2 uses "auto" region
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.R2BucketName,
		publicURL: cfg.R2PublicURL,
	}, nil
}

// Put uploads content to the bucket
func (r *R2Storage) Put(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*BlobRef, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to R2: %w", err)
	}

	return &BlobRef{
		URL:      r.publicURLFor(key),
		Key:      key,
		Size:     size,
		MimeType: contentType,
	}, nil
}

// Delete removes an object from the bucket
func (r *R2Storage) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

// Get streams an object from the bucket
func (r *R2Storage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object from R2: %w", err)
	}

	contentType := "application/octet-stream"
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	return result.Body, contentType, nil
}

// SignedURL generates a presigned URL for temporary access
func (r *R2Storage) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return req.URL, nil
}

// publicURLFor is empty without a public bucket URL; callers then sign
func (r *R2Storage) publicURLFor(key string) string {
	if r.publicURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(r.publicURL, "/"), key)
}

// LocalStorage stores blobs under a directory on disk
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates a new local storage provider
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

// Put writes content below the base directory
func (l *LocalStorage) Put(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*BlobRef, error) {
	fullPath := filepath.Join(l.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &BlobRef{
		URL:      "/" + filepath.Join(l.baseDir, key),
		Key:      key,
		Size:     written,
		MimeType: contentType,
	}, nil
}

// Delete removes a file; a missing file is not an error
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(l.baseDir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Get opens a stored file, guessing the content type from its extension
func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	file, err := os.Open(filepath.Join(l.baseDir, key))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return file, contentTypeFor(key), nil
}

// SignedURL for local storage is the plain path
func (l *LocalStorage) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "/" + filepath.Join(l.baseDir, key), nil
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".txt":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// ValidateDocumentUpload checks the size and extension of an incoming file
func ValidateDocumentUpload(filename string, size int64) error {
	if size <= 0 {
		return NewValidationError("file", "is empty")
	}
	if size > MaxUploadSize {
		return NewValidationError("file", "exceeds maximum allowed size of 10MB")
	}
	if !allowedUploadExtensions[strings.ToLower(filepath.Ext(filename))] {
		return NewValidationError("file", "type not allowed. Accepted formats: PDF, DOC, DOCX, TXT, JPG, PNG, XLSX")
	}
	return nil
}

// DocumentContentKey builds a unique key for one version of a document
func DocumentContentKey(firmID, documentID, originalFilename string) string {
	filename := fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), strings.ToLower(filepath.Ext(originalFilename)))
	return filepath.ToSlash(filepath.Join("firms", firmID, "documents", documentID, filename))
}
