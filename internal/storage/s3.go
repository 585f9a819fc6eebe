package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/filechat/backend/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AWSEndpoint is the global S3 endpoint.
const AWSEndpoint = "s3.amazonaws.com"

// DefaultListPageSize is the single page S3 returns when no limit is given.
const DefaultListPageSize = 1000

// ObjectClient is the subset of *minio.Client used by S3Store.
type ObjectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// S3Options configures the remote bucket.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string // host[:port]; empty means AWS
	UseSSL          bool
	AccessKeyID     string
	SecretAccessKey string
	PageSize        int
}

// NewMinioClient creates a client for AWS S3 or any S3-compatible endpoint.
func NewMinioClient(opts S3Options) (*minio.Client, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = AWSEndpoint
	}
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
}

// S3Store implements Backend on an S3 bucket. Uploads are staged in a local
// directory first and the staged copy is removed only after the transfer
// succeeds; a failed transfer leaves it on disk.
type S3Store struct {
	client   ObjectClient
	staging  *LocalStore
	opts     S3Options
	pageSize int
	logger   *slog.Logger
}

// NewS3Store creates a new S3Store.
func NewS3Store(client ObjectClient, staging *LocalStore, opts S3Options, logger *slog.Logger) *S3Store {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultListPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Store{
		client:   client,
		staging:  staging,
		opts:     opts,
		pageSize: pageSize,
		logger:   logger.With("component", "s3store", "bucket", opts.Bucket),
	}
}

// Kind implements Backend.
func (s *S3Store) Kind() models.BackendKind {
	return models.BackendRemote
}

// EnsureBucket creates the bucket when it does not exist yet. On AWS a
// failed create is only a warning: the bucket may exist under another
// account or the credentials may lack the permission.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.opts.Bucket)
	if err != nil {
		return s.wrap("bucket-exists", s.opts.Bucket, err)
	}
	if exists {
		s.logger.Debug("bucket already exists")
		return nil
	}

	err = s.client.MakeBucket(ctx, s.opts.Bucket, minio.MakeBucketOptions{Region: s.opts.Region})
	if err != nil {
		if s.isAWS() {
			s.logger.Warn("could not create S3 bucket (might exist or no permission)", "error", err)
			return nil
		}
		return s.wrap("make-bucket", s.opts.Bucket, err)
	}
	s.logger.Info("bucket created")
	return nil
}

// Save stages r locally, transfers it to the bucket, then drops the staged
// copy.
func (s *S3Store) Save(ctx context.Context, name string, r io.Reader) (*models.StoredFile, error) {
	staged, err := s.staging.Save(ctx, name, r)
	if err != nil {
		return nil, err
	}

	if _, err := s.client.FPutObject(ctx, s.opts.Bucket, name, staged.Location, minio.PutObjectOptions{}); err != nil {
		// the staged copy stays on disk
		return nil, s.wrap("upload", name, err)
	}

	if err := s.staging.Remove(name); err != nil {
		s.logger.Warn("failed to remove staged copy", "file", name, "error", err)
	}

	return &models.StoredFile{
		Name:     name,
		Location: s.ResolveURL(name),
		Backend:  models.BackendRemote,
	}, nil
}

// List returns the first page of objects in the bucket only.
func (s *S3Store) List(ctx context.Context) ([]*models.StoredFile, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var files []*models.StoredFile
	objects := s.client.ListObjects(ctx, s.opts.Bucket, minio.ListObjectsOptions{
		Recursive: true,
		MaxKeys:   s.pageSize,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, s.wrap("list", s.opts.Bucket, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		files = append(files, &models.StoredFile{
			Name:     obj.Key,
			Location: s.ResolveURL(obj.Key),
			Backend:  models.BackendRemote,
		})
		if len(files) >= s.pageSize {
			break
		}
	}
	return files, nil
}

// Stat issues a HEAD request for name.
func (s *S3Store) Stat(ctx context.Context, name string) (*models.FileMetadata, error) {
	info, err := s.client.StatObject(ctx, s.opts.Bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, s.wrap("stat", name, err)
	}
	return &models.FileMetadata{
		Name:    name,
		Size:    info.Size,
		ModTime: info.LastModified,
	}, nil
}

// ResolveURL returns the public object URL. It is neither checked nor signed.
func (s *S3Store) ResolveURL(name string) string {
	key := url.PathEscape(name)
	if s.isAWS() {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.opts.Bucket, key)
	}
	scheme := "http"
	if s.opts.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.opts.Endpoint, s.opts.Bucket, key)
}

// StagingDir returns the directory used for staged uploads.
func (s *S3Store) StagingDir() string {
	return s.staging.Dir()
}

func (s *S3Store) isAWS() bool {
	return s.opts.Endpoint == "" || s.opts.Endpoint == AWSEndpoint
}

func (s *S3Store) wrap(op, name string, err error) error {
	return &StorageError{Op: op, Name: name, Backend: models.BackendRemote, Err: err}
}
