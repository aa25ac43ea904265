package utils

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Uploader mirrors generated QR images to a Cloudflare R2 (S3-compatible)
// bucket so printed labels can reference a public URL. Purely optional: the
// local file remains the source of truth.
type R2Uploader struct {
	accountID string
	accessKey string
	secretKey string
	bucket    string
}

// NewR2UploaderFromEnv returns nil when R2 is not configured.
func NewR2UploaderFromEnv() *R2Uploader {
	u := &R2Uploader{
		accountID: os.Getenv("R2_ACCOUNT_ID"),
		accessKey: os.Getenv("R2_ACCESS_KEY_ID"),
		secretKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		bucket:    os.Getenv("R2_BUCKET_NAME"),
	}
	if u.accountID == "" || u.accessKey == "" || u.secretKey == "" || u.bucket == "" {
		return nil
	}
	return u
}

func (u *R2Uploader) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"), // required by the SDK, ignored by R2
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(u.accessKey, u.secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load R2 config: %w", err)
	}
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", u.accountID)
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

// Upload stores the file under objectName in the configured bucket.
func (u *R2Uploader) Upload(objectName, filePath string) error {
	ctx := context.Background()
	client, err := u.client(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(path.Ext(objectName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(objectName),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s to R2: %w", objectName, err)
	}
	return nil
}
