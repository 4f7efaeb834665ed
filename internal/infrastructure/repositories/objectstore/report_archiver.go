// Package objectstore archives report files to an S3-compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

const reportContentType = "text/csv"

// ReportArchiver uploads reports with minio-go.
type ReportArchiver struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewReportArchiver creates a ReportArchiver from settings.
func NewReportArchiver(settings entities.ArchiveSettings) (repositories.ReportArchiver, error) {
	if !settings.Enabled() {
		return nil, errors.New("archive endpoint and bucket are required")
	}

	client, err := minio.New(settings.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKey, settings.SecretKey, ""),
		Secure: settings.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return &ReportArchiver{client: client, bucket: settings.Bucket, prefix: settings.Prefix}, nil
}

// Archive uploads the file at reportPath under
// <prefix>/<scan date>/<scan id><ext> and returns the object URL.
func (a *ReportArchiver) Archive(ctx context.Context, scan entities.Scan, reportPath string) (string, error) {
	key := objectKey(a.prefix, scan, reportPath)
	_, err := a.client.FPutObject(ctx, a.bucket, key, reportPath, minio.PutObjectOptions{
		ContentType: reportContentType,
		UserMetadata: map[string]string{
			"scan-id":         scan.ID,
			"scan-started-at": scan.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", key, a.bucket, err)
	}
	return "s3://" + a.bucket + "/" + key, nil
}

func objectKey(prefix string, scan entities.Scan, reportPath string) string {
	ext := filepath.Ext(reportPath)
	if ext == "" {
		ext = ".csv"
	}
	return path.Join(strings.Trim(prefix, "/"), scan.StartedAt.UTC().Format("2006/01/02"), scan.ID+ext)
}
