package media

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/youth-club/core/internal/access"
	appcfg "github.com/youth-club/core/internal/config"
	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/apperr"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Put(ctx context.Context, key string, payload []byte, contentType string) error {
	return m.Called(ctx, key, payload, contentType).Error(0)
}

// smallest valid PNG header plus IHDR chunk
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

var member = access.Caller{UserID: "u1", Role: models.RoleMember}

func newService(store ObjectStore, opts appcfg.MediaOptions) *Service {
	s := NewService(store, opts, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestUploadStoresImage(t *testing.T) {
	store := new(mockStore)
	store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "uploads/2026/03/") && strings.HasSuffix(key, ".png")
	}), pngBytes, "image/png").Return(nil).Once()

	svc := newService(store, appcfg.MediaOptions{
		Bucket: "photos", Region: "auto", Prefix: "uploads", MaxSizeMB: 1,
		CustomDomain: "https://cdn.club.example.org",
	})
	asset, err := svc.Upload(context.Background(), member, bytes.NewReader(pngBytes))
	require.NoError(t, err)

	assert.Equal(t, "image/png", asset.ContentType)
	assert.Equal(t, int64(len(pngBytes)), asset.Size)
	assert.Equal(t, "https://cdn.club.example.org/"+asset.Key, asset.URL)
	store.AssertExpectations(t)
}

func TestUploadRejects(t *testing.T) {
	opts := appcfg.MediaOptions{Bucket: "photos", Region: "auto", Prefix: "uploads", MaxSizeMB: 1}

	tests := []struct {
		name   string
		caller access.Caller
		body   []byte
		check  func(error) bool
	}{
		{"anonymous", access.Anonymous(), pngBytes, apperr.IsAuthorization},
		{"empty", member, nil, apperr.IsValidation},
		{"not an image", member, []byte("%PDF-1.7 hello"), apperr.IsValidation},
		{"too large", member, append(append([]byte{}, pngBytes...), make([]byte, 1<<20)...), apperr.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mockStore)
			_, err := newService(store, opts).Upload(context.Background(), tt.caller, bytes.NewReader(tt.body))
			assert.True(t, tt.check(err), "got %v", err)
			store.AssertNotCalled(t, "Put")
		})
	}
}

func TestUploadStoreFailure(t *testing.T) {
	store := new(mockStore)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("503")).Once()

	svc := newService(store, appcfg.MediaOptions{Bucket: "b", Region: "r", Prefix: "p", MaxSizeMB: 1})
	_, err := svc.Upload(context.Background(), member, bytes.NewReader(pngBytes))
	assert.True(t, apperr.IsStore(err))
}

func TestPublicURL(t *testing.T) {
	key := "uploads/2026/03/a b.png"

	assert.Equal(t, "https://photos.s3.eu-west-1.amazonaws.com/uploads/2026/03/a%20b.png",
		publicURL(appcfg.MediaOptions{Bucket: "photos", Region: "eu-west-1"}, key))
	assert.Equal(t, "https://s3.eu-west-1.amazonaws.com/photos/uploads/2026/03/a%20b.png",
		publicURL(appcfg.MediaOptions{Bucket: "photos", Region: "eu-west-1", PathStyle: true}, key))
	assert.Equal(t, "http://minio:9000/photos/uploads/2026/03/a%20b.png",
		publicURL(appcfg.MediaOptions{Bucket: "photos", Region: "us-east-1", Endpoint: "http://minio:9000"}, key))
	assert.Equal(t, "https://img.example.org/uploads/2026/03/a%20b.png",
		publicURL(appcfg.MediaOptions{Bucket: "photos", CustomDomain: "https://img.example.org"}, key))
}

func TestNewS3StoreNeedsCredentials(t *testing.T) {
	_, err := NewS3Store(appcfg.MediaOptions{Bucket: "photos"})
	assert.Error(t, err)
	_, err = NewS3Store(appcfg.MediaOptions{Bucket: "photos", Region: "auto"})
	assert.Error(t, err)

	s, err := NewS3Store(appcfg.MediaOptions{
		Bucket: "photos", Region: "auto", Endpoint: "https://r2.example.com",
		AccessKeyID: "id", SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	assert.NotNil(t, s)
}
