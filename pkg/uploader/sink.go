package uploader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type DirSink struct {
	dir string
}

var _ Sink = (*DirSink)(nil)

func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &DirSink{dir}, nil
}

func (s *DirSink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	return path, nil
}

type MinioSinkConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Location  string
	Prefix    string
	UseSSL    bool
}

type MinioSink struct {
	config MinioSinkConfig
	client *minio.Client
}

var _ Sink = (*MinioSink)(nil)

// NewMinioSink connects to the object storage and creates the bucket when it is missing.
func NewMinioSink(ctx context.Context, config MinioSinkConfig) (*MinioSink, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", config.Bucket, err)
	}

	if !exists {
		makeBucketOptions := minio.MakeBucketOptions{Region: config.Location}
		if err := client.MakeBucket(ctx, config.Bucket, makeBucketOptions); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", config.Bucket, err)
		}
	}

	return &MinioSink{config, client}, nil
}

func (s *MinioSink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	objectName := s.objectName(name)

	_, err := s.client.PutObject(
		ctx,
		s.config.Bucket,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", err
	}

	return s.objectPath(objectName), nil
}

func (s *MinioSink) objectName(name string) string {
	return s.config.Prefix + path.Base(name)
}

func (s *MinioSink) objectPath(objectName string) string {
	return s.config.Bucket + "/" + objectName
}
