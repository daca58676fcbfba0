// Package storage, S3 uyumlu obje deposu (MinIO) soyutlama katmanıdır.
//
// Chat dosya ekleri veritabanına DEĞİL obje deposuna yazılır — SQLite blob
// saklamak için uygun değildir, DB sadece metadata tutar (media_uploads).
//
// Bu paket dışarıya iki şey sunar:
// 1. ObjectStorage interface — service'ler buna bağımlı olur
// 2. NewClient constructor — main.go'da wire-up için
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// ObjectStorage, obje deposu operasyonları için interface.
// Service katmanı bu interface'e bağımlıdır, concrete MinIO client'a değil.
type ObjectStorage interface {
	// Upload, reader içeriğini verilen key altına yazar.
	Upload(ctx context.Context, key, contentType string, size int64, reader io.Reader) error

	// Download, key altındaki objeyi stream olarak döner.
	// Çağıran taraf ReadCloser'ı kapatmakla yükümlüdür.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete, objeyi depodan siler.
	Delete(ctx context.Context, key string) error
}

// objectAPI, *minio.Client'ın kullandığımız alt kümesi.
// Testlerde gerçek MinIO server yerine fake enjekte edilebilsin diye var.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// minioWrapper, *minio.Client'ı objectAPI'ye uyarlar.
// Tek fark GetObject: *minio.Object somut tipi io.ReadCloser'a daraltılır.
type minioWrapper struct{ c *minio.Client }

func (w minioWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}

func (w minioWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}

func (w minioWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}

func (w minioWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (w minioWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}

// Client, MinIO destekli ObjectStorage implementasyonu.
type Client struct {
	api    objectAPI
	bucket string
}

var _ ObjectStorage = (*Client)(nil)

// NewClient, MinIO client'ı sarar ve bucket'ın varlığını garanti eder.
func NewClient(ctx context.Context, mc *minio.Client, bucket string) (*Client, error) {
	return newClientWithAPI(ctx, minioWrapper{c: mc}, bucket)
}

func newClientWithAPI(ctx context.Context, api objectAPI, bucket string) (*Client, error) {
	c := &Client{api: api, bucket: bucket}

	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return c, nil
}

func (c *Client) Upload(ctx context.Context, key, contentType string, size int64, reader io.Reader) error {
	_, err := c.api.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := c.api.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return obj, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
