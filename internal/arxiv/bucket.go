package arxiv

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	// BucketName is the public arXiv bulk data bucket.
	BucketName = "arxiv"

	// ManifestObjectKey is the object key of the bulk source manifest.
	ManifestObjectKey = "src/arXiv_src_manifest.xml"

	// DefaultS3Endpoint is the AWS endpoint hosting the arXiv bucket.
	DefaultS3Endpoint = "s3.amazonaws.com"
)

// BucketConfig configures access to the arXiv S3 bucket. The bucket is
// requester pays, so credentials are required.
type BucketConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Bucket downloads manifest and bulk archive objects from the arXiv S3
// bucket.
type Bucket struct {
	api *minio.Client
}

// NewBucket creates a client for the arXiv S3 bucket.
func NewBucket(cfg BucketConfig) (*Bucket, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultS3Endpoint
	}

	api, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &Bucket{api: api}, nil
}

// FetchManifest downloads arXiv_src_manifest.xml to destPath.
func (b *Bucket) FetchManifest(ctx context.Context, destPath string) error {
	return b.download(ctx, ManifestObjectKey, destPath)
}

// FetchBulkArchive downloads the named bulk archive into destDir. The
// filename must be a bare base name that follows the bulk archive naming
// scheme.
func (b *Bucket) FetchBulkArchive(ctx context.Context, filename string, destDir string) error {
	if filename != filepath.Base(filename) {
		return fmt.Errorf("bulk archive filename %s should be identical to the basename", filename)
	}
	if !IsBulkArchiveFilename(filename) {
		return fmt.Errorf("%w: %s does not match the bulk archive pattern", ErrInvalidName, filename)
	}
	return b.download(ctx, "src/"+filename, filepath.Join(destDir, filename))
}

// download copies one object to a local file. The arXiv bucket is
// requester pays, which needs an explicit request header.
func (b *Bucket) download(ctx context.Context, key string, destPath string) error {
	opts := minio.GetObjectOptions{}
	opts.Set("x-amz-request-payer", "requester")

	obj, err := b.api.GetObject(ctx, BucketName, key, opts)
	if err != nil {
		return fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, obj); err != nil {
		return fmt.Errorf("failed to write file %s: %w", destPath, err)
	}

	return nil
}
