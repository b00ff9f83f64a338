package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/hashicorp/go-hclog"
)

// DefaultRegion is used when no region is given for the report bucket.
const DefaultRegion = "us-east-1"

// Uploader copies reports to an S3 bucket.
type Uploader struct {
	API    s3manageriface.UploaderAPI
	Bucket string
	Prefix string
	Logger hclog.Logger
}

// NewS3Uploader builds an uploader using the default AWS credential chain.
func NewS3Uploader(bucket, region, prefix string, logger hclog.Logger) (*Uploader, error) {
	if region == "" {
		region = DefaultRegion
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &Uploader{
		API:    s3manager.NewUploader(sess),
		Bucket: bucket,
		Prefix: prefix,
		Logger: logger,
	}, nil
}

// Key returns the object key for a local report file.
func (u *Uploader) Key(localPath string) string {
	name := filepath.Base(localPath)
	prefix := strings.Trim(u.Prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Upload sends the file at localPath and returns the object location.
func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open report %q: %w", localPath, err)
	}
	defer f.Close()

	key := u.Key(localPath)
	u.Logger.Info("uploading report", "bucket", u.Bucket, "key", key)

	result, err := u.API.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/sarif+json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report to s3://%s/%s: %w", u.Bucket, key, err)
	}

	u.Logger.Info("uploaded report", "location", result.Location)
	return result.Location, nil
}
