package helpers

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"shindensen_client/schemas"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const MAX_ATTACHMENT_SIZE = 25 << 20 // 25 mb

// ErrAttachmentTooLarge is returned for files above MAX_ATTACHMENT_SIZE
var ErrAttachmentTooLarge = errors.New("attachment exceeds maximum size")

// Uploader stores attachments in an S3 compatible bucket and hands back the
// payload an outbound message references them by
type Uploader struct {
	client  *minio.Client
	bucket  string
	region  string
	presign time.Duration
}

// NewUploader creates a MinIO backed uploader
func NewUploader(endpoint, user, password, bucket string, secure bool, presign time.Duration) (*Uploader, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(user, password, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "minio client")
	}
	return &Uploader{client: client, bucket: bucket, region: "us-east-1", presign: presign}, nil
}

// EnsureBucket creates the attachment bucket when missing
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return errors.Wrap(err, "minio bucket exists")
	}
	if exists {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{Region: u.region}); err != nil {
		return errors.Wrap(err, "minio make bucket")
	}
	return nil
}

// Upload stores the content of r under a content addressed key and returns
// a presigned reference to it
func (u *Uploader) Upload(ctx context.Context, filename string, r io.Reader, mimeType string) (schemas.FilePayload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MAX_ATTACHMENT_SIZE+1))
	if err != nil {
		return schemas.FilePayload{}, errors.Wrap(err, "read attachment")
	}
	if len(data) > MAX_ATTACHMENT_SIZE {
		return schemas.FilePayload{}, ErrAttachmentTooLarge
	}

	if mimeType == "" {
		mimeType = DetectMimeType(filename, data)
	}
	key := ObjectKey(data, filename)

	_, err = u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: mimeType})
	if err != nil {
		return schemas.FilePayload{}, errors.Wrap(err, "minio put")
	}

	link, err := u.client.PresignedGetObject(ctx, u.bucket, key, u.presign, nil)
	if err != nil {
		return schemas.FilePayload{}, errors.Wrap(err, "minio presign")
	}

	return schemas.FilePayload{
		Type:      FileType(mimeType),
		URL:       link.String(),
		Filename:  filepath.Base(filename),
		MimeType:  schemas.StringPtr(mimeType),
		SizeBytes: int64(len(data)),
	}, nil
}

// ObjectKey names an object by the blake2b digest of its content, keeping the extension
func ObjectKey(data []byte, filename string) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:16]) + strings.ToLower(filepath.Ext(filename))
}

// DetectMimeType guesses from the extension first, then from the content
func DetectMimeType(filename string, data []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}

// FileType maps a mime type onto the attachment kinds the backend knows
func FileType(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	}
	return "file"
}
