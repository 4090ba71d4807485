package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMedia(t *testing.T) *S3Media {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		require.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}

	m, err := NewS3Media(context.Background(), Config{
		Region:       "us-east-1",
		Bucket:       "avatars",
		BaseEndpoint: "http://127.0.0.1:9000",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		URLTTL:       5 * time.Minute,
	})
	require.NoError(t, err)
	return m
}

func TestAvatarUploadURL(t *testing.T) {
	m := newTestMedia(t)

	upload, err := m.AvatarUploadURL(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.Key, "avatars/user-1/"))
	assert.Contains(t, upload.URL, "127.0.0.1:9000/avatars/"+upload.Key)
	assert.Contains(t, upload.URL, "X-Amz-Expires=300")

	_, err = m.AvatarUploadURL(context.Background(), "")
	require.Error(t, err)
}

func TestAvatarURL(t *testing.T) {
	m := newTestMedia(t)

	url, err := m.AvatarURL(context.Background(), "avatars/user-1/a")
	require.NoError(t, err)
	assert.Contains(t, url, "/avatars/avatars/user-1/a")

	_, err = m.AvatarURL(context.Background(), "")
	require.ErrorIs(t, err, ErrKeyRequired)
}

func TestAvatarURLPresignError(t *testing.T) {
	m := newTestMedia(t)
	orig := presignGetObject
	t.Cleanup(func() { presignGetObject = orig })
	boom := errors.New("boom")
	presignGetObject = func(*s3.PresignClient, context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, boom
	}

	_, err := m.AvatarURL(context.Background(), "avatars/user-1/a")
	require.ErrorIs(t, err, boom)
}

func TestNewS3MediaConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Media(context.Background(), Config{Region: "us-east-1", Bucket: "b"})
	require.Error(t, err)
}
