package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/mpetrenko/accountd/internal/server/config"
)

func newAvatarService() *AvatarService {
	return NewAvatarService(&sc.Config{
		S3Region:       "us-east-1",
		S3AccessKey:    "minioadmin",
		S3SecretKey:    "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "avatars",
	})
}

func TestRandomAvatarKey_Format(t *testing.T) {
	key := RandomAvatarKey()
	if !strings.HasPrefix(key, "avatars/") {
		t.Fatalf("key must be under avatars/: %q", key)
	}
	if parts := strings.Split(key, "/"); len(parts) != 5 {
		t.Fatalf("want avatars/yyyy/m/d/uuid, got %q", key)
	}
}

func TestPresignUpload_ErrorFromConfigLoader(t *testing.T) {
	svc := newAvatarService()

	orig := loadDefaultAWSConfig
	defer func() { loadDefaultAWSConfig = orig }()
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, _, err := svc.PresignUpload(context.Background())
	if err == nil || err.Error() != "load-fail" {
		t.Fatalf("want load-fail, got %v", err)
	}
}

func TestPresignDownload_ErrorFromConfigLoader(t *testing.T) {
	svc := newAvatarService()

	orig := loadDefaultAWSConfig
	defer func() { loadDefaultAWSConfig = orig }()
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := svc.PresignDownload(context.Background(), "any-key")
	if err == nil || err.Error() != "load-fail" {
		t.Fatalf("want load-fail, got %v", err)
	}
}

func TestPresignUpload_PutError(t *testing.T) {
	svc := newAvatarService()

	origPut := presignPutObject
	defer func() { presignPutObject = origPut }()
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("put-fail")
	}

	_, _, err := svc.PresignUpload(context.Background())
	if err == nil || err.Error() != "put-fail" {
		t.Fatalf("want put-fail, got %v", err)
	}
}

func TestPresignUpload_Success(t *testing.T) {
	svc := newAvatarService()

	origPut := presignPutObject
	defer func() { presignPutObject = origPut }()
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if *in.Bucket != "avatars" {
			t.Fatalf("wrong bucket: %q", *in.Bucket)
		}
		return &v4.PresignedHTTPRequest{URL: "http://signed/put/" + *in.Key}, nil
	}

	key, url, err := svc.PresignUpload(context.Background())
	if err != nil {
		t.Fatalf("PresignUpload error: %v", err)
	}
	if key == "" || !strings.HasSuffix(url, key) {
		t.Fatalf("key/url mismatch: key=%q url=%q", key, url)
	}
}

func TestPresignDownload_Success(t *testing.T) {
	svc := newAvatarService()

	origGet := presignGetObject
	defer func() { presignGetObject = origGet }()
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://signed/get/" + *in.Key}, nil
	}

	url, err := svc.PresignDownload(context.Background(), "avatars/2025/1/2/abc")
	if err != nil {
		t.Fatalf("PresignDownload error: %v", err)
	}
	if url != "http://signed/get/avatars/2025/1/2/abc" {
		t.Fatalf("unexpected url: %q", url)
	}
}
