// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"
)

const maxHeaderImageBytes = 10 * 1024 * 1024

// ObjectPutter is the slice of the S3 API the mirror needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Mirror copies storefront header images into a Cloudflare R2 bucket.
type R2Mirror struct {
	Client     ObjectPutter
	Bucket     string
	CDNBaseURL string
	HTTPClient *http.Client
}

func NewR2Mirror(ctx context.Context, accountID, accessKeyID, accessKeySecret, bucket, cdnBaseURL string) (*R2Mirror, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	if cdnBaseURL == "" {
		cdnBaseURL = endpoint + "/" + bucket
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &R2Mirror{
		Client:     client,
		Bucket:     bucket,
		CDNBaseURL: strings.TrimRight(cdnBaseURL, "/"),
		HTTPClient: NewHTTPClient(30 * time.Second),
	}, nil
}

// MirrorHeaderImage downloads sourceURL and stores it under headers/<appid>-<slug><ext>,
// returning the public URL of the copy.
func (m *R2Mirror) MirrorHeaderImage(ctx context.Context, externalID int, name, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build image request: %w", err)
	}
	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download header image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("header image download returned status %d", resp.StatusCode)
	}

	buf := new(bytes.Buffer)
	n, err := io.Copy(buf, io.LimitReader(resp.Body, maxHeaderImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read header image: %w", err)
	}
	if n > maxHeaderImageBytes {
		return "", fmt.Errorf("header image larger than %d bytes", maxHeaderImageBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(buf.Bytes())
	}

	key := HeaderImageKey(externalID, name, sourceURL)
	_, err = m.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", m.CDNBaseURL, key), nil
}

// HeaderImageKey is the object key for a game's header image.
func HeaderImageKey(externalID int, name, sourceURL string) string {
	ext := path.Ext(strings.SplitN(sourceURL, "?", 2)[0])
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	base := fmt.Sprintf("%d", externalID)
	if s := slug.Make(name); s != "" {
		base += "-" + s
	}
	return "headers/" + base + strings.ToLower(ext)
}
