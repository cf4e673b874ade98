package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPutter struct {
	key         string
	bucket      string
	contentType string
	body        []byte
	err         error
}

func (p *recordingPutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.key = aws.ToString(in.Key)
	p.bucket = aws.ToString(in.Bucket)
	p.contentType = aws.ToString(in.ContentType)
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	p.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestHeaderImageKey(t *testing.T) {
	cases := []struct {
		id     int
		name   string
		source string
		want   string
	}{
		{620, "Portal 2", "https://cdn.example/apps/620/header.jpg?t=1700000000", "headers/620-portal-2.jpg"},
		{730, "Counter-Strike 2", "https://cdn.example/apps/730/header.PNG", "headers/730-counter-strike-2.png"},
		{440, "", "https://cdn.example/apps/440/header", "headers/440.jpg"},
		{570, "Dota 2", "https://cdn.example/apps/570/header.averylongext", "headers/570-dota-2.jpg"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, HeaderImageKey(tc.id, tc.name, tc.source))
		})
	}
}

func TestMirrorHeaderImageUploadsToBucket(t *testing.T) {
	image := []byte("\x89PNG\r\n\x1a\nfake-image-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(image)
	}))
	defer srv.Close()

	putter := &recordingPutter{}
	mirror := &R2Mirror{
		Client:     putter,
		Bucket:     "catalog-assets",
		CDNBaseURL: "https://assets.example.com",
		HTTPClient: NewHTTPClient(2 * time.Second),
	}

	url, err := mirror.MirrorHeaderImage(context.Background(), 620, "Portal 2", srv.URL+"/header.png")
	require.NoError(t, err)

	assert.Equal(t, "https://assets.example.com/headers/620-portal-2.png", url)
	assert.Equal(t, "catalog-assets", putter.bucket)
	assert.Equal(t, "headers/620-portal-2.png", putter.key)
	assert.Equal(t, image, putter.body)
	assert.Equal(t, "image/png", putter.contentType)
}

func TestMirrorHeaderImageFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer srv.Close()

	t.Run("download status", func(t *testing.T) {
		putter := &recordingPutter{}
		mirror := &R2Mirror{Client: putter, Bucket: "b", CDNBaseURL: "https://cdn", HTTPClient: NewHTTPClient(time.Second)}
		_, err := mirror.MirrorHeaderImage(context.Background(), 1, "x", srv.URL+"/missing.jpg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		assert.Empty(t, putter.key)
	})

	t.Run("upload error", func(t *testing.T) {
		putter := &recordingPutter{err: assert.AnError}
		mirror := &R2Mirror{Client: putter, Bucket: "b", CDNBaseURL: "https://cdn", HTTPClient: NewHTTPClient(time.Second)}
		_, err := mirror.MirrorHeaderImage(context.Background(), 1, "x", srv.URL+"/ok.jpg")
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestNewHTTPClientDefaultsTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, NewHTTPClient(0).Timeout)
	assert.Equal(t, 3*time.Second, NewHTTPClient(3*time.Second).Timeout)
}
