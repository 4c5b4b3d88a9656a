package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	s3Uploader *manager.Uploader
	s3Bucket   string
	s3Region   string
)

var ErrObjectStorageUnavailable = errors.New("object storage is not configured")

// InitializeS3 builds the uploader from the default AWS credential chain.
// S3_BUCKET and S3_REGION select the target; without them uploads fail
// with ErrObjectStorageUnavailable rather than crashing the server.
func InitializeS3() {
	s3Bucket = os.Getenv("S3_BUCKET")
	s3Region = os.Getenv("S3_REGION")
	if s3Bucket == "" || s3Region == "" {
		log.Println("S3_BUCKET/S3_REGION not set, image uploads disabled")
		return
	}

	cfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(s3Region))
	if err != nil {
		log.Println("failed to load AWS config: " + err.Error())
		return
	}

	client := s3.NewFromConfig(cfg)
	s3Uploader = manager.NewUploader(client)
}

// UploadBase64Image decodes a data-URI or raw base64 payload, stores it under
// key and returns the public object URL.
func UploadBase64Image(ctx context.Context, base64ImageSrc, key string) (string, error) {
	if s3Uploader == nil {
		return "", ErrObjectStorageUnavailable
	}
	if base64ImageSrc == "" {
		return "", errors.New("empty image payload")
	}

	payload := base64ImageSrc
	contentType := "image/jpeg"
	if i := strings.Index(base64ImageSrc, ","); i != -1 {
		header := base64ImageSrc[:i]
		payload = base64ImageSrc[i+1:]
		if start := strings.Index(header, ":"); start != -1 {
			if end := strings.Index(header, ";"); end > start {
				contentType = header[start+1 : end]
			}
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("invalid base64 image: %w", err)
	}

	_, err = s3Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s3Bucket, s3Region, url.PathEscape(key)), nil
}
