package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileUploader(t *testing.T) {
	dir := t.TempDir()
	u := &FileUploader{Dir: dir}

	require.NoError(t, u.Upload(context.Background(), UploadParams{Name: "batch/1.png", Data: []byte("img")}))

	data, err := os.ReadFile(filepath.Join(dir, "batch", "1.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)
	assert.Equal(t, filepath.Join(dir, "batch", "1.png"), u.URL("batch/1.png"))
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader(t *testing.T) {
	client := &fakeS3{}
	u := &S3Uploader{Client: client, Bucket: "photos", SiteURL: "https://example.com/"}

	err := u.Upload(context.Background(), UploadParams{
		Name:        "abc/1.png",
		Data:        []byte("img"),
		ContentType: "image/png",
		Metadata:    map[string]string{"label": "Corporate"},
	})
	require.NoError(t, err)
	assert.Equal(t, "photos", aws.ToString(client.input.Bucket))
	assert.Equal(t, "abc/1.png", aws.ToString(client.input.Key))
	assert.Equal(t, "image/png", aws.ToString(client.input.ContentType))
	assert.Equal(t, "Corporate", client.input.Metadata["label"])
	assert.Equal(t, []byte("img"), client.body)
	assert.Equal(t, "https://example.com/abc/1.png", u.URL("abc/1.png"))
}

type fakeCloudFront struct {
	input *cloudfront.CreateInvalidationInput
}

func (f *fakeCloudFront) CreateInvalidation(_ context.Context, in *cloudfront.CreateInvalidationInput, _ ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error) {
	f.input = in
	return &cloudfront.CreateInvalidationOutput{}, nil
}

func TestCloudFrontInvalidator(t *testing.T) {
	client := &fakeCloudFront{}
	inv := &CloudFrontInvalidator{
		Client:       client,
		Distribution: "E123",
		now:          func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC) },
	}

	require.NoError(t, inv.Invalidate(context.Background(), []string{"/abc/*"}))
	assert.Equal(t, "E123", aws.ToString(client.input.DistributionId))
	assert.Equal(t, "20240102030405.000000006", aws.ToString(client.input.InvalidationBatch.CallerReference))
	assert.Equal(t, int32(1), aws.ToInt32(client.input.InvalidationBatch.Paths.Quantity))
	assert.Equal(t, []string{"/abc/*"}, client.input.InvalidationBatch.Paths.Items)
}

func TestNopInvalidator(t *testing.T) {
	assert.NoError(t, NopInvalidator{}.Invalidate(context.Background(), []string{"/x"}))
}
