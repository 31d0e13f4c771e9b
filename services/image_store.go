package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	UploadDataURI(ctx context.Context, dataURI, keyPrefix string) (string, error)
}

type S3ImageStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3ImageStore(client *s3.Client, bucket, publicURL string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *S3ImageStore) UploadDataURI(ctx context.Context, dataURI, keyPrefix string) (string, error) {
	contentType, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("profile-pictures/%s-%d%s", keyPrefix, time.Now().UnixNano(), extensionFor(contentType))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.publicURL + "/" + key, nil
}

// DecodeDataURI splits "data:<mime>;base64,<payload>" into its content type
// and decoded bytes.
func DecodeDataURI(dataURI string) (string, []byte, error) {
	meta, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("%w: invalid data URI", ErrValidation)
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, fmt.Errorf("%w: unsupported content type %q", ErrValidation, contentType)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to decode image: %v", ErrValidation, err)
	}
	return contentType, data, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	if _, sub, ok := strings.Cut(contentType, "/"); ok {
		return "." + sub
	}
	return ""
}
