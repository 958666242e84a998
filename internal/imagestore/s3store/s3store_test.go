package s3store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
)

type fakeBucket struct {
	objects      map[string][]byte
	meta         map[string]map[string]string
	contentTypes map[string]string
	failPut      error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}, meta: map[string]map[string]string{}, contentTypes: map[string]string{}}
}

func (f *fakeBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	f.objects[key] = data
	f.meta[key] = in.Metadata
	f.contentTypes[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeBucket) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeBucket) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

var gifData = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")

func TestUpload(t *testing.T) {
	bucket := newFakeBucket()
	store := newStore(bucket, Options{Bucket: "evidence", Region: "us-east-1"})

	url, err := store.Upload(context.Background(), gifData, "receipt.gif")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://evidence.s3.us-east-1.amazonaws.com/"))

	key := strings.TrimPrefix(url, "https://evidence.s3.us-east-1.amazonaws.com/")
	assert.Equal(t, gifData, bucket.objects[key])
	assert.Equal(t, "image/gif", bucket.contentTypes[key])
	assert.Equal(t, "receipt.gif", bucket.meta[key]["original-filename"])
}

func TestUploadErrors(t *testing.T) {
	bucket := newFakeBucket()
	store := newStore(bucket, Options{Bucket: "evidence", Endpoint: "http://localstack:4566/"})

	_, err := store.Upload(context.Background(), []byte("not an image"), "x.txt")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Empty(t, bucket.objects)

	bucket.failPut = errors.New("access denied")
	_, err = store.Upload(context.Background(), gifData, "x.gif")
	assert.ErrorContains(t, err, "access denied")
}

func TestEndpointBaseURL(t *testing.T) {
	store := newStore(newFakeBucket(), Options{Bucket: "evidence", Endpoint: "http://localstack:4566/"})
	url, err := store.Upload(context.Background(), gifData, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localstack:4566/evidence/"))
}

func TestDelete(t *testing.T) {
	bucket := newFakeBucket()
	store := newStore(bucket, Options{Bucket: "evidence", BaseURL: "https://cdn.example.edu"})
	ctx := context.Background()

	url, err := store.Upload(ctx, gifData, "")
	require.NoError(t, err)
	key := strings.TrimPrefix(url, "https://cdn.example.edu/")

	deleted, err := store.Delete(ctx, key)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, key)
	require.NoError(t, err)
	assert.False(t, deleted)
}
