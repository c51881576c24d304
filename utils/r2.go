// utils/r2.go
package utils

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Static catalog assets (achievement icons, package artwork) live in an
// S3-compatible R2 bucket and are served through the CDN URL.

var (
	assetClient  *s3.Client
	assetBucket  string
	assetBaseURL string
)

var (
	ErrStorageNotConfigured = errors.New("asset storage is not configured")
	ErrUnsupportedIconType  = errors.New("unsupported icon file type")
)

// iconContentTypes is the closed set of formats accepted for catalog icons.
// The content type is derived from the extension, never trusted from the
// client headers.
var iconContentTypes = map[string]string{
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// InitAssetStorage wires the bucket client from R2_* env vars. Callers should
// skip it entirely when R2_ACCOUNT_ID is unset; uploads then fail with
// ErrStorageNotConfigured instead of panicking.
func InitAssetStorage() error {
	accountID := os.Getenv("R2_ACCOUNT_ID")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("R2_ACCESS_KEY_SECRET")
	assetBucket = os.Getenv("R2_BUCKET")
	if accountID == "" || accessKeyID == "" || accessKeySecret == "" || assetBucket == "" {
		return errors.New("R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_ACCESS_KEY_SECRET and R2_BUCKET must all be set")
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	assetBaseURL = os.Getenv("ASSET_CDN_URL")
	if assetBaseURL == "" {
		assetBaseURL = endpoint + "/" + assetBucket
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
	)
	if err != nil {
		return fmt.Errorf("load asset storage config: %w", err)
	}

	assetClient = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return nil
}

// AchievementIconKey builds the bucket key for an achievement's icon and
// validates the file type. One icon per achievement: re-uploading replaces
// the object in place.
func AchievementIconKey(achievementID, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := iconContentTypes[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedIconType, ext)
	}
	return path.Join("achievements", "icons", achievementID+ext), nil
}

// UploadAchievementIcon stores the uploaded icon under the achievement's key
// and returns the public URL to persist on the catalog row.
func UploadAchievementIcon(fileHeader *multipart.FileHeader, achievementID string) (string, error) {
	if assetClient == nil {
		return "", ErrStorageNotConfigured
	}

	key, err := AchievementIconKey(achievementID, fileHeader.Filename)
	if err != nil {
		return "", err
	}
	contentType := iconContentTypes[strings.ToLower(filepath.Ext(fileHeader.Filename))]

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open icon upload: %w", err)
	}
	defer file.Close()

	_, err = assetClient.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(assetBucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload icon %s: %w", key, err)
	}

	return assetBaseURL + "/" + key, nil
}
